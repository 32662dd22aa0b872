package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/errors"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/models"
)

// Validator provides validation methods
type Validator struct{}

// New creates a new validator instance
func New() *Validator {
	return &Validator{}
}

// ValidateSendMessageRequest validates a send message request
func (v *Validator) ValidateSendMessageRequest(req *models.SendMessageRequest) *errors.AppError {
	if req == nil {
		return errors.InvalidRequest("Request body is required")
	}

	if strings.TrimSpace(req.ConversationID) == "" {
		return errors.ValidationError("'conversationId' field is required")
	}

	if strings.TrimSpace(req.Content) == "" {
		return errors.ValidationError("'content' field is required")
	}

	if len(req.Content) > 4096 {
		return errors.ValidationError("Message too long (maximum 4096 characters)")
	}

	return nil
}

// SanitizeMessage sanitizes a message by removing potential harmful content
func (v *Validator) SanitizeMessage(message string) string {
	message = strings.TrimSpace(message)
	message = strings.ReplaceAll(message, "\x00", "")

	// Limit consecutive newlines
	newlineRegex := regexp.MustCompile(`\n{3,}`)
	message = newlineRegex.ReplaceAllString(message, "\n\n")

	return message
}

// ValidateLimit validates a limit query parameter and returns its value
func (v *Validator) ValidateLimit(limit string) (int, *errors.AppError) {
	if limit == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(limit)
	if err != nil {
		return 0, errors.ValidationError("Invalid limit parameter: must be a number")
	}
	if value < 1 || value > 1000 {
		return 0, errors.ValidationError("Invalid limit parameter: must be between 1 and 1000")
	}
	return value, nil
}

// ValidateOffset validates an offset query parameter and returns its value
func (v *Validator) ValidateOffset(offset string) (int, *errors.AppError) {
	if offset == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(offset)
	if err != nil {
		return 0, errors.ValidationError("Invalid offset parameter: must be a number")
	}
	if value < 0 {
		return 0, errors.ValidationError("Invalid offset parameter: must be non-negative")
	}
	return value, nil
}

// ValidateDate validates a date query parameter and normalizes it to
// unix seconds. Accepts unix seconds directly or an RFC3339 timestamp.
func (v *Validator) ValidateDate(value, name string) (string, *errors.AppError) {
	if value == "" {
		return "", nil
	}

	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return value, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return strconv.FormatInt(t.Unix(), 10), nil
	}
	return "", errors.ValidationError("Invalid " + name + " parameter: must be unix seconds or an RFC3339 timestamp")
}

// ValidateOrder validates a sort order query parameter
func (v *Validator) ValidateOrder(order string) *errors.AppError {
	if order == "" || order == "asc" || order == "desc" {
		return nil
	}
	return errors.ValidationError("Invalid order parameter: must be 'asc' or 'desc'")
}
