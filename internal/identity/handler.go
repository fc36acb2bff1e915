package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type UserStore interface {
	UpsertUser(ctx context.Context, user User) error
	// DeleteUser must succeed when no row has the id.
	DeleteUser(ctx context.Context, id string) error
}

// Outcome is the response to send back to the identity provider.
type Outcome struct {
	Status    int
	Message   string
	EventType string
}

func (o Outcome) OK() bool {
	return o.Status >= 200 && o.Status < 300
}

type Handler struct {
	verifier Verifier
	users    UserStore
	logger   *zap.Logger
}

// NewHandler accepts a nil verifier; every delivery is then refused with 500.
func NewHandler(verifier Verifier, users UserStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{verifier: verifier, users: users, logger: logger}
}

// Process verifies one delivery and applies it to the user store. Nothing in
// the payload is read before the signature checks out.
func (h *Handler) Process(ctx context.Context, headers http.Header, body []byte) (out Outcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			h.logger.Error("identity webhook panicked", zap.Any("panic", recovered))
			out = Outcome{Status: http.StatusInternalServerError, Message: "Internal server error", EventType: out.EventType}
		}
	}()

	if h.verifier == nil {
		h.logger.Error("identity webhook secret is not configured")
		return Outcome{Status: http.StatusInternalServerError, Message: "Webhook secret not configured"}
	}
	if h.users == nil {
		h.logger.Error("identity webhook user store is not configured")
		return Outcome{Status: http.StatusInternalServerError, Message: "Database not configured"}
	}
	if !hasSignatureHeaders(headers) {
		h.logger.Warn("identity webhook missing svix headers",
			zap.Bool("svix_id", headers.Get(HeaderID) != ""),
			zap.Bool("svix_timestamp", headers.Get(HeaderTimestamp) != ""),
			zap.Bool("svix_signature", headers.Get(HeaderSignature) != ""),
		)
		return Outcome{Status: http.StatusBadRequest, Message: "Error occurred -- no svix headers"}
	}
	if err := h.verifier.Verify(body, headers); err != nil {
		h.logger.Warn("identity webhook verification failed",
			zap.String("svix_id", headers.Get(HeaderID)),
			zap.Error(err),
		)
		return Outcome{Status: http.StatusBadRequest, Message: "Error occurred"}
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("identity webhook payload is not valid JSON", zap.Error(err))
		return Outcome{Status: http.StatusBadRequest, Message: "Invalid payload"}
	}
	out.EventType = event.Type

	logger := h.logger.With(
		zap.String("svix_id", headers.Get(HeaderID)),
		zap.String("event_type", event.Type),
		zap.String("user_id", event.Data.ID),
	)

	switch event.Type {
	case EventUserCreated, EventUserUpdated:
		if strings.TrimSpace(event.Data.ID) == "" {
			return Outcome{Status: http.StatusBadRequest, Message: "Missing user id", EventType: event.Type}
		}
		if len(event.Data.EmailAddresses) == 0 {
			logger.Warn("identity webhook user has no email addresses")
			return Outcome{Status: http.StatusBadRequest, Message: "No email addresses found", EventType: event.Type}
		}
		email := event.Data.PrimaryEmail()
		if email == "" {
			return Outcome{Status: http.StatusBadRequest, Message: "Primary email address missing", EventType: event.Type}
		}
		user := User{
			ID:        strings.TrimSpace(event.Data.ID),
			Email:     email,
			FirstName: strings.TrimSpace(event.Data.FirstName),
			LastName:  strings.TrimSpace(event.Data.LastName),
			ImageURL:  strings.TrimSpace(event.Data.ImageURL),
		}
		if err := h.users.UpsertUser(ctx, user); err != nil {
			logger.Error("failed to sync user", zap.Error(err))
			return Outcome{Status: http.StatusInternalServerError, Message: "Error syncing user", EventType: event.Type}
		}
		logger.Info("user synced")
	case EventUserDeleted:
		if strings.TrimSpace(event.Data.ID) == "" {
			return Outcome{Status: http.StatusBadRequest, Message: "Missing user id", EventType: event.Type}
		}
		if err := h.users.DeleteUser(ctx, strings.TrimSpace(event.Data.ID)); err != nil {
			logger.Error("failed to delete user", zap.Error(err))
			return Outcome{Status: http.StatusInternalServerError, Message: "Error deleting user", EventType: event.Type}
		}
		logger.Info("user deleted")
	default:
		logger.Info("identity webhook event ignored")
	}

	return Outcome{Status: http.StatusOK, Message: "OK", EventType: event.Type}
}
