package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tutorplan/libs/db"
	"tutorplan/services/schedule-service/internal/model"
)

// ScheduleRepository owns students, groups and both session tables.
type ScheduleRepository struct {
	pool *db.Pool
}

// DayRecords is everything the recommendation engine needs about one
// calendar day, loaded in a single round of queries.
type DayRecords struct {
	Students      []model.Student
	Groups        []model.Group
	Sessions      []model.Session
	GroupSessions []model.GroupSession
}

func NewScheduleRepository(pool *db.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

func (r *ScheduleRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *ScheduleRepository) DayRecords(ctx context.Context, tutorID, date string) (DayRecords, error) {
	var recs DayRecords
	var err error

	if recs.Students, err = r.listStudents(ctx, tutorID); err != nil {
		return DayRecords{}, err
	}
	if recs.Groups, err = r.listGroups(ctx, tutorID); err != nil {
		return DayRecords{}, err
	}
	if recs.Sessions, err = r.listSessions(ctx, tutorID, date); err != nil {
		return DayRecords{}, err
	}
	if recs.GroupSessions, err = r.listGroupSessions(ctx, tutorID, date); err != nil {
		return DayRecords{}, err
	}
	return recs, nil
}

func (r *ScheduleRepository) GetStudent(ctx context.Context, tutorID, studentID string) (model.Student, error) {
	var st model.Student
	var lat, lng *float64
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, tutor_id::text, name, COALESCE(phone, ''), default_kind,
			COALESCE(default_time, ''), COALESCE(default_duration_minutes, 0),
			default_lat, default_lng, created_at
		FROM students
		WHERE id = $1 AND tutor_id = $2
	`, studentID, tutorID).Scan(
		&st.ID, &st.TutorID, &st.Name, &st.Phone, &st.DefaultKind,
		&st.DefaultTime, &st.DefaultDuration, &lat, &lng, &st.CreatedAt,
	)
	if err != nil {
		return model.Student{}, err
	}
	st.DefaultLocation = pointFrom(lat, lng)
	return st, nil
}

func (r *ScheduleRepository) CreateSession(ctx context.Context, tx pgx.Tx, s *model.Session) (string, error) {
	id := uuid.NewString()
	var lat, lng *float64
	if s.Location != nil {
		lat, lng = &s.Location.Lat, &s.Location.Lng
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO sessions
			(id, tutor_id, student_id, session_date, start_time, duration_minutes, kind, lat, lng, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, 0), $7, $8, $9, $10)
	`, id, s.TutorID, s.StudentID, s.Date, s.Time, s.Duration, s.Kind, lat, lng, s.Status)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *ScheduleRepository) GetSessionForUpdate(ctx context.Context, tx pgx.Tx, tutorID, sessionID string) (model.Session, error) {
	var s model.Session
	var lat, lng *float64
	err := tx.QueryRow(ctx, `
		SELECT id::text, tutor_id::text, student_id::text, session_date::text,
			COALESCE(start_time, ''), COALESCE(duration_minutes, 0), kind, lat, lng, status, created_at
		FROM sessions
		WHERE id = $1 AND tutor_id = $2
		FOR UPDATE
	`, sessionID, tutorID).Scan(
		&s.ID, &s.TutorID, &s.StudentID, &s.Date, &s.Time, &s.Duration,
		&s.Kind, &lat, &lng, &s.Status, &s.CreatedAt,
	)
	if err != nil {
		return model.Session{}, err
	}
	s.Location = pointFrom(lat, lng)
	return s, nil
}

func (r *ScheduleRepository) SetSessionStatus(ctx context.Context, tx pgx.Tx, tutorID, sessionID, status string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE sessions
		SET status = $3, updated_at = now()
		WHERE id = $1 AND tutor_id = $2
	`, sessionID, tutorID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ScheduleRepository) listStudents(ctx context.Context, tutorID string) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, tutor_id::text, name, COALESCE(phone, ''), default_kind,
			COALESCE(default_time, ''), COALESCE(default_duration_minutes, 0),
			default_lat, default_lng, created_at
		FROM students
		WHERE tutor_id = $1
	`, tutorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var st model.Student
		var lat, lng *float64
		if err := rows.Scan(
			&st.ID, &st.TutorID, &st.Name, &st.Phone, &st.DefaultKind,
			&st.DefaultTime, &st.DefaultDuration, &lat, &lng, &st.CreatedAt,
		); err != nil {
			return nil, err
		}
		st.DefaultLocation = pointFrom(lat, lng)
		students = append(students, st)
	}
	return students, rows.Err()
}

func (r *ScheduleRepository) listGroups(ctx context.Context, tutorID string) ([]model.Group, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, tutor_id::text, name, default_kind,
			COALESCE(default_time, ''), COALESCE(default_duration_minutes, 0),
			default_lat, default_lng, created_at
		FROM groups
		WHERE tutor_id = $1
	`, tutorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		var g model.Group
		var lat, lng *float64
		if err := rows.Scan(
			&g.ID, &g.TutorID, &g.Name, &g.DefaultKind,
			&g.DefaultTime, &g.DefaultDuration, &lat, &lng, &g.CreatedAt,
		); err != nil {
			return nil, err
		}
		g.DefaultLocation = pointFrom(lat, lng)
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *ScheduleRepository) listSessions(ctx context.Context, tutorID, date string) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, tutor_id::text, student_id::text, session_date::text,
			COALESCE(start_time, ''), COALESCE(duration_minutes, 0), kind, lat, lng, status, created_at
		FROM sessions
		WHERE tutor_id = $1 AND session_date = $2
	`, tutorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		var lat, lng *float64
		if err := rows.Scan(
			&s.ID, &s.TutorID, &s.StudentID, &s.Date, &s.Time, &s.Duration,
			&s.Kind, &lat, &lng, &s.Status, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		s.Location = pointFrom(lat, lng)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *ScheduleRepository) listGroupSessions(ctx context.Context, tutorID, date string) ([]model.GroupSession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, tutor_id::text, group_id::text, session_date::text,
			COALESCE(start_time, ''), COALESCE(duration_minutes, 0), status
		FROM group_sessions
		WHERE tutor_id = $1 AND session_date = $2
	`, tutorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.GroupSession
	for rows.Next() {
		var gs model.GroupSession
		if err := rows.Scan(
			&gs.ID, &gs.TutorID, &gs.GroupID, &gs.Date, &gs.Time, &gs.Duration, &gs.Status,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, gs)
	}
	return sessions, rows.Err()
}

func pointFrom(lat, lng *float64) *model.GeoPoint {
	if lat == nil || lng == nil {
		return nil
	}
	return &model.GeoPoint{Lat: *lat, Lng: *lng}
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}
