package validation

import (
	"strings"
	"testing"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/models"
)

func TestValidateSendMessageRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     *models.SendMessageRequest
		wantErr bool
	}{
		{
			name:    "nil request",
			req:     nil,
			wantErr: true,
		},
		{
			name:    "valid request",
			req:     &models.SendMessageRequest{ConversationID: "123@c.us", Content: "hello"},
			wantErr: false,
		},
		{
			name:    "missing conversation id",
			req:     &models.SendMessageRequest{Content: "hello"},
			wantErr: true,
		},
		{
			name:    "whitespace conversation id",
			req:     &models.SendMessageRequest{ConversationID: "   ", Content: "hello"},
			wantErr: true,
		},
		{
			name:    "missing content",
			req:     &models.SendMessageRequest{ConversationID: "123@c.us"},
			wantErr: true,
		},
		{
			name:    "content too long",
			req:     &models.SendMessageRequest{ConversationID: "123@c.us", Content: strings.Repeat("a", 4097)},
			wantErr: true,
		},
		{
			name:    "content at the limit",
			req:     &models.SendMessageRequest{ConversationID: "123@c.us", Content: strings.Repeat("a", 4096)},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSendMessageRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSendMessageRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeMessage(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"removes null bytes", "hel\x00lo", "hello"},
		{"collapses newline runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"keeps double newlines", "a\n\nb", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.SanitizeMessage(tt.input); got != tt.want {
				t.Errorf("SanitizeMessage(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateLimit(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"empty is zero", "", 0, false},
		{"valid", "50", 50, false},
		{"not a number", "abc", 0, true},
		{"zero", "0", 0, true},
		{"negative", "-1", 0, true},
		{"above maximum", "1001", 0, true},
		{"at maximum", "1000", 1000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateLimit(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateLimit(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateLimit(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateOffset(t *testing.T) {
	v := New()

	if _, err := v.ValidateOffset("-1"); err == nil {
		t.Error("ValidateOffset(-1) error = nil, want error")
	}
	if got, err := v.ValidateOffset("10"); err != nil || got != 10 {
		t.Errorf("ValidateOffset(10) = (%d, %v), want (10, nil)", got, err)
	}
	if got, err := v.ValidateOffset(""); err != nil || got != 0 {
		t.Errorf("ValidateOffset(\"\") = (%d, %v), want (0, nil)", got, err)
	}
}

func TestValidateDate(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"empty passes through", "", "", false},
		{"unix seconds kept as-is", "1700000000", "1700000000", false},
		{"rfc3339 normalized to unix seconds", "2023-11-14T22:13:20Z", "1700000000", false},
		{"free-form date rejected", "last tuesday", "", true},
		{"partial date rejected", "2023-11-14", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateDate(tt.input, "start_date")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateOrder(t *testing.T) {
	v := New()

	for _, valid := range []string{"", "asc", "desc"} {
		if err := v.ValidateOrder(valid); err != nil {
			t.Errorf("ValidateOrder(%q) error = %v, want nil", valid, err)
		}
	}
	if err := v.ValidateOrder("sideways"); err == nil {
		t.Error("ValidateOrder(sideways) error = nil, want error")
	}
}
