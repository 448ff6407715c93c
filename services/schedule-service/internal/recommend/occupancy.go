package recommend

import (
	"sort"

	"tutorplan/services/schedule-service/internal/model"
)

// defaultDurationMinutes is the global fallback when neither the booking nor
// its owner specifies a duration.
const defaultDurationMinutes = 60

// OccupiedInterval is a booked span on the target day, normalized from either
// an individual or a group booking. Start and End are minutes since midnight.
type OccupiedInterval struct {
	Start    int
	End      int
	Kind     model.SessionKind
	Location *model.GeoPoint
	Label    string
}

// Snapshot is the read-only schedule state for one tutor, already scoped to
// (at least) the target day by the caller.
type Snapshot struct {
	Students      []model.Student
	Groups        []model.Group
	Sessions      []model.Session
	GroupSessions []model.GroupSession
}

// collectOccupied filters the snapshot down to the target date, drops
// cancelled/excused bookings and the optionally excluded booking id, and
// resolves each survivor's effective time, duration, kind and location
// through the override -> owner default -> fixed default chain.
//
// A booking whose time resolves to nothing parseable is skipped: that is an
// upstream data bug and must not sink the whole computation. The result is
// sorted by start ascending.
func collectOccupied(snap Snapshot, date string, excludeID string) []OccupiedInterval {
	students := make(map[string]model.Student, len(snap.Students))
	for _, s := range snap.Students {
		students[s.ID] = s
	}
	groups := make(map[string]model.Group, len(snap.Groups))
	for _, g := range snap.Groups {
		groups[g.ID] = g
	}

	var occupied []OccupiedInterval
	for _, sess := range snap.Sessions {
		if sess.Date != date || skippedStatus(sess.Status) {
			continue
		}
		if excludeID != "" && sess.ID == excludeID {
			continue
		}
		owner := students[sess.StudentID]

		start, ok := resolveStart(sess.Time, owner.DefaultTime)
		if !ok {
			continue
		}
		duration := resolveDuration(sess.Duration, owner.DefaultDuration)
		kind := sess.Kind
		if kind == "" {
			kind = owner.DefaultKind
		}
		location := sess.Location
		if location == nil {
			location = owner.DefaultLocation
		}
		if kind != model.KindInPerson {
			location = nil
		}

		occupied = append(occupied, OccupiedInterval{
			Start:    start,
			End:      start + duration,
			Kind:     kind,
			Location: location,
			Label:    owner.Name,
		})
	}

	for _, gs := range snap.GroupSessions {
		if gs.Date != date || skippedStatus(gs.Status) {
			continue
		}
		if excludeID != "" && gs.ID == excludeID {
			continue
		}
		grp := groups[gs.GroupID]

		start, ok := resolveStart(gs.Time, grp.DefaultTime)
		if !ok {
			continue
		}
		duration := resolveDuration(gs.Duration, grp.DefaultDuration)
		location := grp.DefaultLocation
		if grp.DefaultKind != model.KindInPerson {
			location = nil
		}

		occupied = append(occupied, OccupiedInterval{
			Start:    start,
			End:      start + duration,
			Kind:     grp.DefaultKind,
			Location: location,
			Label:    "Group: " + grp.Name,
		})
	}

	sort.SliceStable(occupied, func(i, j int) bool {
		return occupied[i].Start < occupied[j].Start
	})
	return occupied
}

func skippedStatus(status string) bool {
	return status == model.StatusCancelled || status == model.StatusExcused
}

func resolveStart(override, fallback string) (int, bool) {
	for _, raw := range []string{override, fallback} {
		if raw == "" {
			continue
		}
		if mins, err := ParseClock(raw); err == nil {
			return mins, true
		}
	}
	return 0, false
}

func resolveDuration(override, fallback int) int {
	if override > 0 {
		return override
	}
	if fallback > 0 {
		return fallback
	}
	return defaultDurationMinutes
}
