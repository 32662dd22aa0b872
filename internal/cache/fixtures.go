package cache

import "github.com/wednesdev-id/puller-chat-dashboard/internal/models"

// Demo fixtures served when the bridge is disabled by configuration.
// Never mixed with live data: demo mode bypasses the bridge entirely.

func fixtureConversations() []models.Conversation {
	return []models.Conversation{
		{
			ID:          "1",
			Name:        "Sarah Chen",
			Avatar:      "https://images.unsplash.com/photo-1494790108377-be9c29b29330?w=100&h=100&fit=crop&crop=face",
			LastMessage: "That sounds great! Let me know when you're free",
			Time:        "2m",
			Unread:      2,
			IsOnline:    true,
		},
		{
			ID:          "2",
			Name:        "Alex Rivera",
			Avatar:      "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=100&h=100&fit=crop&crop=face",
			LastMessage: "The project files have been updated",
			Time:        "15m",
			Unread:      0,
			IsOnline:    true,
		},
		{
			ID:          "3",
			Name:        "Design Team",
			Avatar:      "https://images.unsplash.com/photo-1522071820081-009f0129c71c?w=100&h=100&fit=crop&crop=face",
			LastMessage: "Emma: New mockups are ready for review",
			Time:        "1h",
			Unread:      5,
			IsOnline:    false,
		},
		{
			ID:          "4",
			Name:        "Jordan Kim",
			Avatar:      "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=100&h=100&fit=crop&crop=face",
			LastMessage: "Thanks for your help yesterday!",
			Time:        "3h",
			Unread:      0,
			IsOnline:    false,
		},
		{
			ID:          "5",
			Name:        "Marcus Johnson",
			Avatar:      "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?w=100&h=100&fit=crop&crop=face",
			LastMessage: "Can we schedule a call for tomorrow?",
			Time:        "5h",
			Unread:      1,
			IsOnline:    true,
		},
		{
			ID:          "6",
			Name:        "Tech Support",
			Avatar:      "https://images.unsplash.com/photo-1560250097-0b93528c311a?w=100&h=100&fit=crop&crop=face",
			LastMessage: "Your ticket has been resolved",
			Time:        "1d",
			Unread:      0,
			IsOnline:    false,
		},
	}
}

func fixtureMessages() map[string][]models.Message {
	return map[string][]models.Message{
		"1": {
			{ID: "1", Content: "Hey! How's the project going?", Time: "10:30 AM", IsSent: false},
			{ID: "2", Content: "It's going well! Just finished the main features", Time: "10:32 AM", IsSent: true, IsRead: true},
			{ID: "3", Content: "That's awesome! Can you share a preview?", Time: "10:33 AM", IsSent: false},
			{ID: "4", Content: "Sure, I'll send it over in a few minutes", Time: "10:35 AM", IsSent: true, IsRead: true},
			{ID: "5", Content: "That sounds great! Let me know when you're free", Time: "10:38 AM", IsSent: false},
		},
		"2": {
			{ID: "1", Content: "Hey Alex, did you get a chance to review the latest updates?", Time: "9:15 AM", IsSent: true, IsRead: true},
			{ID: "2", Content: "Yes! Everything looks good. Nice work on the animations", Time: "9:20 AM", IsSent: false},
			{ID: "3", Content: "The project files have been updated", Time: "9:45 AM", IsSent: false},
		},
		"3": {
			{ID: "1", Content: "Team, the new designs are in!", Time: "8:00 AM", IsSent: false},
			{ID: "2", Content: "Great! I'll review them today", Time: "8:30 AM", IsSent: true, IsRead: true},
			{ID: "3", Content: "Emma: New mockups are ready for review", Time: "9:00 AM", IsSent: false},
		},
	}
}
