package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	svix "github.com/svix/svix-webhooks/go"
)

const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

// NewSvixVerifier builds a verifier for a "whsec_" signing secret.
func NewSvixVerifier(secret string) (Verifier, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("webhook secret is empty")
	}
	wh, err := svix.NewWebhook(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook secret: %w", err)
	}
	return wh, nil
}

func hasSignatureHeaders(headers http.Header) bool {
	return strings.TrimSpace(headers.Get(HeaderID)) != "" &&
		strings.TrimSpace(headers.Get(HeaderTimestamp)) != "" &&
		strings.TrimSpace(headers.Get(HeaderSignature)) != ""
}
