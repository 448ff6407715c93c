package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"tutorplan/services/schedule-service/internal/storage"
)

// PaymentsHandler records lesson payments coming in from Stripe.
// No JWT auth on the webhook route; signature verification is the auth.
type PaymentsHandler struct {
	repo             *storage.PaymentsRepository
	logger           *slog.Logger
	webhookSecret    string
	webhookTolerance time.Duration
}

func NewPaymentsHandler(repo *storage.PaymentsRepository, logger *slog.Logger, webhookSecret string, webhookTolerance time.Duration) *PaymentsHandler {
	if webhookTolerance <= 0 {
		webhookTolerance = 5 * time.Minute
	}
	return &PaymentsHandler{
		repo:             repo,
		logger:           logger,
		webhookSecret:    webhookSecret,
		webhookTolerance: webhookTolerance,
	}
}

func (h *PaymentsHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if strings.TrimSpace(h.webhookSecret) == "" {
		http.Error(w, "stripe webhook not configured", http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if strings.TrimSpace(sigHeader) == "" {
		http.Error(w, "missing Stripe-Signature header", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1 MiB hard cap
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	evt, err := webhook.ConstructEventWithTolerance(body, sigHeader, h.webhookSecret, h.webhookTolerance)
	if err != nil {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	occurredAt := time.Unix(evt.Created, 0).UTC()
	evtType := string(evt.Type)
	h.logger.Info("payment provider event received",
		"provider", "stripe",
		"provider_event_id", evt.ID,
		"event_type", evtType,
		"occurred_at", occurredAt.Format(time.RFC3339),
	)

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Idempotency: ignore replayed Stripe events.
	if err := h.repo.InsertProviderEvent(ctx, tx, storage.ProviderEvent{
		Provider:        "stripe",
		ProviderEventID: evt.ID,
		EventType:       evtType,
		Payload:         body,
	}); err != nil {
		if errors.Is(err, storage.ErrDuplicateProviderEvent) {
			h.logger.Info("payment provider event duplicate ignored", "provider_event_id", evt.ID, "event_type", evtType)
			_ = tx.Commit(ctx)
			writeJSON(w, http.StatusOK, map[string]any{"status": "duplicate"})
			return
		}
		http.Error(w, "failed to record provider event", http.StatusInternalServerError)
		return
	}

	if evtType == "checkout.session.completed" {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
			h.logger.Error("stripe: invalid checkout session payload", "err", err)
		} else {
			tutorID := strings.TrimSpace(session.Metadata["tutor_id"])
			studentID := strings.TrimSpace(session.Metadata["student_id"])
			if tutorID == "" {
				h.logger.Warn("stripe: missing tutor_id metadata on checkout session")
			} else {
				currency := strings.ToLower(string(session.Currency))
				if currency == "" {
					currency = "usd"
				}
				if _, err := h.repo.InsertPayment(ctx, tx, storage.Payment{
					TutorID:           tutorID,
					StudentID:         studentID,
					AmountCents:       session.AmountTotal,
					Currency:          currency,
					ProviderSessionID: session.ID,
					PaidAt:            occurredAt,
				}); err != nil {
					http.Error(w, "failed to record payment", http.StatusInternalServerError)
					return
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
