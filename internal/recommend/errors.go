package recommend

import (
	"errors"

	"bloomery/backend/internal/llm"
)

var (
	ErrNoMessages      = errors.New("at least one message is required")
	ErrLastNotUser     = errors.New("last message must be from the user")
	ErrInvalidRole     = errors.New("message role must be user or assistant")
	ErrEmptyUserPrompt = errors.New("latest user message is empty")
)

// IsValidation reports whether err came from conversation validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNoMessages) ||
		errors.Is(err, ErrLastNotUser) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrEmptyUserPrompt)
}

const (
	MessageCredentials = "AI provider configuration error. Please check your API key."
	MessageQuota       = "AI provider quota exceeded. Please check your billing status."
	MessageRateLimit   = "Rate limit exceeded. Please try again in a moment."
	MessageGeneric     = "Failed to generate bouquet recommendations. Please try again."
)

// Error is a failed generation. Message is safe to show to customers and
// Partial holds whatever text streamed before the failure.
type Error struct {
	Kind    llm.Kind
	Message string
	Partial string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func userMessage(kind llm.Kind) string {
	switch kind {
	case llm.KindCredentials:
		return MessageCredentials
	case llm.KindQuota:
		return MessageQuota
	case llm.KindRateLimit:
		return MessageRateLimit
	default:
		return MessageGeneric
	}
}
