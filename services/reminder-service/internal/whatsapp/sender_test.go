package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookSender_PostsMessage(t *testing.T) {
	var got map[string]string
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("invalid request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewWebhookSender(srv.URL, "secret-token")
	if err := sender.Send(context.Background(), "+15551234567", "Reminder: session with Dana"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if got["to"] != "+15551234567" || got["body"] != "Reminder: session with Dana" {
		t.Fatalf("unexpected payload: %v", got)
	}
	if auth != "Bearer secret-token" {
		t.Fatalf("unexpected auth header: %q", auth)
	}
}

func TestWebhookSender_Non2xxIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewWebhookSender(srv.URL, "")
	if err := sender.Send(context.Background(), "+15551234567", "hello"); err == nil {
		t.Fatalf("expected error on 502 response")
	}
}

func TestWebhookSender_RequiresURL(t *testing.T) {
	sender := NewWebhookSender("", "")
	if err := sender.Send(context.Background(), "+15551234567", "hello"); err == nil {
		t.Fatalf("expected error when url is not configured")
	}
}

func TestNoopSender(t *testing.T) {
	sender := NewNoopSender()
	if err := sender.Send(context.Background(), "+15551234567", "hello"); err != nil {
		t.Fatalf("noop sender must never fail: %v", err)
	}
	if sender.ProviderID() != "whatsapp-noop" {
		t.Fatalf("unexpected provider id: %s", sender.ProviderID())
	}
}
