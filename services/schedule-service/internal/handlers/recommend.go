package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"tutorplan/services/schedule-service/internal/cache"
	"tutorplan/services/schedule-service/internal/model"
	"tutorplan/services/schedule-service/internal/recommend"
	"tutorplan/services/schedule-service/internal/settings"
	"tutorplan/services/schedule-service/internal/storage"
)

// SnapshotSource loads a tutor's day records for the engine.
type SnapshotSource interface {
	DayRecords(ctx context.Context, tutorID, date string) (storage.DayRecords, error)
}

// ResponseCache stores marshalled responses keyed by input hash.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

type RecommendHandler struct {
	source   SnapshotSource
	settings settings.Provider
	cache    ResponseCache
	logger   *slog.Logger
}

func NewRecommendHandler(source SnapshotSource, settingsProvider settings.Provider, responseCache ResponseCache, logger *slog.Logger) *RecommendHandler {
	return &RecommendHandler{
		source:   source,
		settings: settingsProvider,
		cache:    responseCache,
		logger:   logger,
	}
}

type slotItem struct {
	Time     string   `json:"time"`
	Score    int      `json:"score"`
	Tier     string   `json:"tier"`
	Priority string   `json:"priority"`
	Period   string   `json:"period"`
	Reasons  []string `json:"reasons"`
	Tags     []string `json:"tags"`
}

type tipItem struct {
	Icon     string `json:"icon"`
	Text     string `json:"text"`
	Severity string `json:"severity"`
}

type recommendResponse struct {
	Slots []slotItem `json:"slots"`
	Tips  []tipItem  `json:"tips"`
}

func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tutorID := tutorIDFrom(r)
	if tutorID == "" {
		http.Error(w, "tutor_id required", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	date := strings.TrimSpace(q.Get("date"))

	duration := 60
	if raw := strings.TrimSpace(q.Get("duration_minutes")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 8*60 {
			http.Error(w, "invalid duration_minutes", http.StatusBadRequest)
			return
		}
		duration = n
	}

	kind := model.SessionKind(strings.TrimSpace(q.Get("kind")))
	if kind != "" && kind != model.KindInPerson && kind != model.KindRemote {
		http.Error(w, "invalid kind", http.StatusBadRequest)
		return
	}

	latRaw := strings.TrimSpace(q.Get("lat"))
	lngRaw := strings.TrimSpace(q.Get("lng"))
	var location *model.GeoPoint
	if latRaw != "" || lngRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lng, lngErr := strconv.ParseFloat(lngRaw, 64)
		if latErr != nil || lngErr != nil {
			http.Error(w, "lat and lng must be provided together as numbers", http.StatusBadRequest)
			return
		}
		location = &model.GeoPoint{Lat: lat, Lng: lng}
	}

	excludeID := strings.TrimSpace(q.Get("exclude_session_id"))

	// A missing date is an empty recommendation, not an error.
	if date == "" {
		writeRecommendResult(w, recommend.Recommend(recommend.Context{}, recommend.Snapshot{}))
		return
	}

	ctx := r.Context()
	cacheKey := cache.Key(tutorID, date, duration, string(kind), latRaw, lngRaw, excludeID)
	if body, ok := h.cache.Get(ctx, cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	hours, err := h.settings.WorkingHours(ctx, tutorID)
	if err != nil {
		h.logger.Warn("working hours lookup failed, using defaults", "err", err)
		hours = model.Settings{}
	}
	workStart, workEnd := 0, 0
	if s, err := recommend.ParseClock(hours.WorkStart); err == nil {
		if e, err := recommend.ParseClock(hours.WorkEnd); err == nil {
			workStart, workEnd = s, e
		}
	}

	recs, err := h.source.DayRecords(ctx, tutorID, date)
	if err != nil {
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}

	result := recommend.Recommend(recommend.Context{
		Date:      date,
		Duration:  duration,
		Kind:      kind,
		Location:  location,
		WorkStart: workStart,
		WorkEnd:   workEnd,
		ExcludeID: excludeID,
	}, recommend.Snapshot{
		Students:      recs.Students,
		Groups:        recs.Groups,
		Sessions:      recs.Sessions,
		GroupSessions: recs.GroupSessions,
	})

	body, err := json.Marshal(toRecommendResponse(result))
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	h.cache.Set(ctx, cacheKey, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func toRecommendResponse(result recommend.Result) recommendResponse {
	resp := recommendResponse{Slots: []slotItem{}, Tips: []tipItem{}}
	for _, s := range result.Slots {
		reasons := s.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		tags := s.Tags
		if tags == nil {
			tags = []string{}
		}
		resp.Slots = append(resp.Slots, slotItem{
			Time:     s.Time,
			Score:    s.Score,
			Tier:     s.Tier,
			Priority: s.Priority,
			Period:   s.Period,
			Reasons:  reasons,
			Tags:     tags,
		})
	}
	for _, t := range result.Tips {
		resp.Tips = append(resp.Tips, tipItem{Icon: t.Icon, Text: t.Text, Severity: t.Severity})
	}
	return resp
}

func writeRecommendResult(w http.ResponseWriter, result recommend.Result) {
	body, err := json.Marshal(toRecommendResponse(result))
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func tutorIDFrom(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Tutor-Id")); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("tutor_id"))
}
