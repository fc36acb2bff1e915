package server

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"bloomery/backend/internal/db"
	"bloomery/backend/internal/identity"
	"bloomery/backend/internal/observability"
	"bloomery/backend/internal/store"
)

const clerkUserCreated = `{"type":"user.created","data":{"id":"user_2abc","email_addresses":[{"id":"idn_1","email_address":"rose@example.com"}],"primary_email_address_id":"idn_1","first_name":"Rose","last_name":"Tran","image_url":"https://img.example.com/rose.png"}}`

const clerkUserDeleted = `{"type":"user.deleted","data":{"id":"user_2abc","deleted":true}}`

func TestClerkWebhookStatus(t *testing.T) {
	env := newTestEnv(t)
	rec := performRequest(t, env.router, http.MethodGet, "/api/webhooks/clerk", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeJSONMap(t, rec)
	if body["message"] != "Webhook endpoint is working!" || body["path"] != "/api/webhooks/clerk" {
		t.Fatalf("unexpected status payload %v", body)
	}
}

func TestClerkWebhookSyncsUserThenMeFindsIt(t *testing.T) {
	env := newTestEnv(t)
	body := []byte(clerkUserCreated)

	for i := 0; i < 2; i++ {
		rec := performRequest(t, env.router, http.MethodPost, "/api/webhooks/clerk", "", body, webhookHeaders("msg_"+testID(), body))
		if rec.Code != http.StatusOK {
			t.Fatalf("delivery %d: expected 200, got %d body=%s", i, rec.Code, rec.Body.String())
		}
		if decodeJSONMap(t, rec)["message"] != "OK" {
			t.Fatalf("expected OK message")
		}
	}
	if env.users.count() != 1 {
		t.Fatalf("expected one synced user, got %d", env.users.count())
	}

	token := signToken(t, "user_2abc", nil)
	rec := performRequest(t, env.router, http.MethodGet, "/api/v1/me", token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if decodeJSONMap(t, rec)["email"] != "rose@example.com" {
		t.Fatalf("unexpected /me payload")
	}

	deleted := []byte(clerkUserDeleted)
	rec = performRequest(t, env.router, http.MethodPost, "/api/webhooks/clerk", "", deleted, webhookHeaders("msg_"+testID(), deleted))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", rec.Code)
	}
	if env.users.count() != 0 {
		t.Fatalf("expected user to be removed")
	}

	metrics := performRequest(t, env.router, http.MethodGet, "/metrics", "", nil, nil).Body.String()
	if !strings.Contains(metrics, `bloomery_identity_events_total{outcome="ok",type="user.created"} 2`) {
		t.Fatalf("expected identity event counter, got:\n%s", metrics)
	}
}

func TestClerkWebhookRejectsUnsignedAndTamperedDeliveries(t *testing.T) {
	env := newTestEnv(t)
	body := []byte(clerkUserCreated)

	rec := performRequest(t, env.router, http.MethodPost, "/api/webhooks/clerk", "", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without headers, got %d", rec.Code)
	}
	if detail := responseDetail(t, rec); detail != "Error occurred -- no svix headers" {
		t.Fatalf("unexpected detail %q", detail)
	}

	headers := webhookHeaders("msg_1", body)
	tampered := []byte(strings.Replace(clerkUserCreated, "rose@example.com", "eve@example.com", 1))
	rec = performRequest(t, env.router, http.MethodPost, "/api/webhooks/clerk", "", tampered, headers)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for tampered body, got %d", rec.Code)
	}
	if detail := responseDetail(t, rec); detail != "Error occurred" {
		t.Fatalf("unexpected detail %q", detail)
	}
	if env.users.count() != 0 {
		t.Fatalf("rejected deliveries must not write")
	}
}

func TestClerkWebhookRejectsOversizedBody(t *testing.T) {
	env := newTestEnv(t)
	body := []byte(`{"type":"user.created","data":{"id":"user_big","padding":"` + strings.Repeat("x", maxWebhookBodyBytes) + `"}}`)

	rec := performRequest(t, env.router, http.MethodPost, "/api/webhooks/clerk", "", body, webhookHeaders("msg_big", body))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d body=%s", rec.Code, rec.Body.String())
	}
	if detail := responseDetail(t, rec); detail != "Payload too large" {
		t.Fatalf("unexpected detail %q", detail)
	}
	if env.users.count() != 0 {
		t.Fatalf("oversized deliveries must not write")
	}
}

func TestClerkWebhookWithoutSecretFails(t *testing.T) {
	app := New(baseTestConfig, Deps{Metrics: observability.NewMetrics()})
	body := []byte(clerkUserCreated)
	rec := performRequest(t, app.Router(), http.MethodPost, "/api/webhooks/clerk", "", body, webhookHeaders("msg_1", body))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if detail := responseDetail(t, rec); detail != "Webhook secret not configured" {
		t.Fatalf("unexpected detail %q", detail)
	}
}

func TestClerkWebhookPersistsThroughPostgres(t *testing.T) {
	requireIntegration(t)
	resetDatabase(t)

	users := store.NewUsers(testPool)
	verifier, err := identity.NewSvixVerifier(baseTestConfig.ClerkWebhookSecret)
	if err != nil {
		t.Fatalf("build verifier: %v", err)
	}
	app := New(baseTestConfig, Deps{
		Webhooks: identity.NewHandler(verifier, users, nil),
		Users:    users,
		Shop:     store.NewBouquets(testPool),
	})
	router := app.Router()

	body := []byte(clerkUserCreated)
	rec := performRequest(t, router, http.MethodPost, "/api/webhooks/clerk", "", body, webhookHeaders("msg_"+testID(), body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = performRequest(t, router, http.MethodGet, "/api/v1/me", signToken(t, "user_2abc", nil), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	payload := decodeJSONMap(t, rec)
	if payload["last_name"] != "Tran" {
		t.Fatalf("unexpected user row %v", payload)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.ValidateRuntimeSchema(ctx, testPool); err != nil {
		t.Fatalf("runtime schema: %v", err)
	}
}
