package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
)

type Kind string

const (
	KindCredentials Kind = "credentials"
	KindQuota       Kind = "quota"
	KindRateLimit   Kind = "rate_limit"
	KindTimeout     Kind = "timeout"
	KindUnavailable Kind = "unavailable"
)

// Error is a provider failure with its classification.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("llm %s (%d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the classification of err. Unclassified errors are
// KindUnavailable.
func KindOf(err error) Kind {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnavailable
}

// Classify wraps a raw provider error in *Error. context.Canceled is returned
// unchanged because it means the caller went away, not that the provider failed.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var already *Error
	if errors.As(err, &already) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}

	status := 0
	code := ""
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
		code = strings.ToLower(strings.TrimSpace(apiErr.Code))
	}
	message := strings.ToLower(err.Error())

	kind := KindUnavailable
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindCredentials
	case code == "insufficient_quota" || strings.Contains(message, "insufficient_quota"):
		kind = KindQuota
	case status == http.StatusTooManyRequests:
		if strings.Contains(message, "quota") || strings.Contains(message, "billing") {
			kind = KindQuota
		} else {
			kind = KindRateLimit
		}
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		kind = KindTimeout
	case strings.Contains(message, "api key"):
		kind = KindCredentials
	case strings.Contains(message, "quota") || strings.Contains(message, "billing"):
		kind = KindQuota
	case strings.Contains(message, "rate limit"):
		kind = KindRateLimit
	}
	return &Error{Kind: kind, StatusCode: status, Err: err}
}
