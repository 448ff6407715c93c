package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"tutorplan/services/schedule-service/internal/model"
	"tutorplan/services/schedule-service/internal/outbox"
	"tutorplan/services/schedule-service/internal/storage"
)

type SessionsHandler struct {
	repo           *storage.ScheduleRepository
	outboxRepo     *outbox.Repository
	logger         *slog.Logger
	reminderOffset time.Duration
}

func NewSessionsHandler(repo *storage.ScheduleRepository, outboxRepo *outbox.Repository, logger *slog.Logger, reminderOffset time.Duration) *SessionsHandler {
	if reminderOffset <= 0 {
		reminderOffset = 24 * time.Hour
	}
	return &SessionsHandler{
		repo:           repo,
		outboxRepo:     outboxRepo,
		logger:         logger,
		reminderOffset: reminderOffset,
	}
}

type createSessionRequest struct {
	StudentID string   `json:"student_id"`
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	Duration  int      `json:"duration_minutes"`
	Kind      string   `json:"kind"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

type sessionActionRequest struct {
	SessionID string `json:"session_id"`
}

type sessionStatusResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tutorID := tutorIDFrom(r)
	if tutorID == "" {
		http.Error(w, "tutor_id required", http.StatusBadRequest)
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	if req.StudentID == "" || req.Date == "" {
		http.Error(w, "student_id and date required", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	if req.Time != "" {
		if _, err := time.Parse("15:04", req.Time); err != nil {
			http.Error(w, "invalid time", http.StatusBadRequest)
			return
		}
	}
	if req.Duration < 0 {
		http.Error(w, "invalid duration_minutes", http.StatusBadRequest)
		return
	}
	kind := model.SessionKind(strings.TrimSpace(req.Kind))
	if kind != "" && kind != model.KindInPerson && kind != model.KindRemote {
		http.Error(w, "invalid kind", http.StatusBadRequest)
		return
	}

	var location *model.GeoPoint
	if req.Lat != nil && req.Lng != nil {
		location = &model.GeoPoint{Lat: *req.Lat, Lng: *req.Lng}
	}

	ctx := r.Context()
	student, err := h.repo.GetStudent(ctx, tutorID, req.StudentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "student not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load student", http.StatusInternalServerError)
		return
	}
	if kind == "" {
		kind = student.DefaultKind
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session := &model.Session{
		TutorID:   tutorID,
		StudentID: req.StudentID,
		Date:      req.Date,
		Time:      req.Time,
		Duration:  req.Duration,
		Kind:      kind,
		Location:  location,
		Status:    model.StatusScheduled,
	}
	id, err := h.repo.CreateSession(ctx, tx, session)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	bookedPayload, err := json.Marshal(map[string]any{
		"session_id":       id,
		"tutor_id":         tutorID,
		"student_id":       req.StudentID,
		"date":             req.Date,
		"time":             req.Time,
		"duration_minutes": req.Duration,
		"kind":             string(kind),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "session",
		AggregateID:   id,
		EventType:     outbox.EventSessionBooked,
		Payload:       bookedPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	h.enqueueReminder(ctx, tx, id, session, student)

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createSessionResponse{SessionID: id})
}

func (h *SessionsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tutorID := tutorIDFrom(r)
	if tutorID == "" {
		http.Error(w, "tutor_id required", http.StatusBadRequest)
		return
	}

	var req sessionActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		http.Error(w, "session_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session, err := h.repo.GetSessionForUpdate(ctx, tx, tutorID, req.SessionID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}

	// Cancelling twice is a no-op, not an error.
	if session.Status == model.StatusCancelled {
		writeStatusResponse(w, session.ID, model.StatusCancelled)
		return
	}
	if session.Status == model.StatusCompleted {
		http.Error(w, "session already completed", http.StatusConflict)
		return
	}

	if err := h.repo.SetSessionStatus(ctx, tx, tutorID, session.ID, model.StatusCancelled); err != nil {
		http.Error(w, "failed to cancel session", http.StatusInternalServerError)
		return
	}

	cancelPayload, err := json.Marshal(map[string]any{
		"session_id": session.ID,
		"tutor_id":   tutorID,
		"student_id": session.StudentID,
		"date":       session.Date,
		"time":       session.Time,
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "session",
		AggregateID:   session.ID,
		EventType:     outbox.EventSessionCancelled,
		Payload:       cancelPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeStatusResponse(w, session.ID, model.StatusCancelled)
}

// Attendance flips a session between scheduled and completed; any other
// state is final and rejected.
func (h *SessionsHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tutorID := tutorIDFrom(r)
	if tutorID == "" {
		http.Error(w, "tutor_id required", http.StatusBadRequest)
		return
	}

	var req sessionActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		http.Error(w, "session_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session, err := h.repo.GetSessionForUpdate(ctx, tx, tutorID, req.SessionID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}

	var next string
	switch session.Status {
	case model.StatusScheduled:
		next = model.StatusCompleted
	case model.StatusCompleted:
		next = model.StatusScheduled
	default:
		http.Error(w, "attendance cannot be changed", http.StatusConflict)
		return
	}

	if err := h.repo.SetSessionStatus(ctx, tx, tutorID, session.ID, next); err != nil {
		http.Error(w, "failed to update session", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeStatusResponse(w, session.ID, next)
}

func (h *SessionsHandler) enqueueReminder(ctx context.Context, tx pgx.Tx, sessionID string, session *model.Session, student model.Student) {
	recipient := strings.TrimSpace(student.Phone)
	if recipient == "" {
		return
	}
	clock := session.Time
	if clock == "" {
		clock = student.DefaultTime
	}
	if clock == "" {
		return
	}
	start, err := time.Parse("2006-01-02 15:04", session.Date+" "+clock)
	if err != nil {
		return
	}
	remindAt := start.Add(-h.reminderOffset)
	if remindAt.Before(time.Now().UTC()) {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"session_id": sessionID,
		"tutor_id":   session.TutorID,
		"recipient":  recipient,
		"remind_at":  remindAt.UTC().Format(time.RFC3339),
		"body":       fmt.Sprintf("Reminder: session with %s on %s at %s", student.Name, session.Date, clock),
	})
	if err != nil {
		h.logger.Error("failed to build reminder payload", "err", err)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "session",
		AggregateID:   sessionID,
		EventType:     outbox.EventReminderRequested,
		Payload:       payload,
	}); err != nil {
		h.logger.Error("failed to enqueue reminder", "err", err)
	}
}

func writeStatusResponse(w http.ResponseWriter, sessionID, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(sessionStatusResponse{SessionID: sessionID, Status: status})
}
