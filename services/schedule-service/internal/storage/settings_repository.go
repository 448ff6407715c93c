package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"tutorplan/libs/db"
	"tutorplan/services/schedule-service/internal/model"
)

const (
	defaultWorkStart = "08:00"
	defaultWorkEnd   = "22:00"
)

type SettingsRepository struct {
	pool *db.Pool
}

func NewSettingsRepository(pool *db.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the tutor's working hours, falling back to the standard
// 08:00-22:00 window when no row exists yet.
func (r *SettingsRepository) Get(ctx context.Context, tutorID string) (model.Settings, error) {
	var s model.Settings
	err := r.pool.QueryRow(ctx, `
		SELECT tutor_id::text, COALESCE(work_start, ''), COALESCE(work_end, '')
		FROM tutor_settings
		WHERE tutor_id = $1
	`, tutorID).Scan(&s.TutorID, &s.WorkStart, &s.WorkEnd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Settings{TutorID: tutorID, WorkStart: defaultWorkStart, WorkEnd: defaultWorkEnd}, nil
		}
		return model.Settings{}, err
	}
	if s.WorkStart == "" {
		s.WorkStart = defaultWorkStart
	}
	if s.WorkEnd == "" {
		s.WorkEnd = defaultWorkEnd
	}
	return s, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, s model.Settings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tutor_settings (tutor_id, work_start, work_end)
		VALUES ($1, $2, $3)
		ON CONFLICT (tutor_id)
		DO UPDATE SET work_start = EXCLUDED.work_start,
		              work_end = EXCLUDED.work_end,
		              updated_at = now()
	`, s.TutorID, s.WorkStart, s.WorkEnd)
	return err
}
