package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tutorplan/libs/db"
)

var ErrDuplicateProviderEvent = errors.New("provider event already recorded")

type PaymentsRepository struct {
	pool *db.Pool
}

type ProviderEvent struct {
	Provider        string
	ProviderEventID string
	EventType       string
	Payload         []byte
}

type Payment struct {
	ID                string
	TutorID           string
	StudentID         string
	AmountCents       int64
	Currency          string
	ProviderSessionID string
	PaidAt            time.Time
}

func NewPaymentsRepository(pool *db.Pool) *PaymentsRepository {
	return &PaymentsRepository{pool: pool}
}

func (r *PaymentsRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// InsertProviderEvent records an incoming webhook event exactly once.
// A replayed event trips the unique index and maps to ErrDuplicateProviderEvent.
func (r *PaymentsRepository) InsertProviderEvent(ctx context.Context, tx pgx.Tx, evt ProviderEvent) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO provider_events (provider, provider_event_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
	`, evt.Provider, evt.ProviderEventID, evt.EventType, evt.Payload)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateProviderEvent
		}
		return err
	}
	return nil
}

func (r *PaymentsRepository) InsertPayment(ctx context.Context, tx pgx.Tx, p Payment) (string, error) {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO payments (id, tutor_id, student_id, amount_cents, currency, provider_session_id, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, p.TutorID, nullIfEmpty(p.StudentID), p.AmountCents, p.Currency, nullIfEmpty(p.ProviderSessionID), p.PaidAt)
	if err != nil {
		return "", err
	}
	return id, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
