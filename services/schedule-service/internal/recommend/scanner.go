package recommend

import "tutorplan/services/schedule-service/internal/model"

const (
	// stepMinutes is the scan granularity across the working window.
	stepMinutes = 30
	// minGapMinutes is the breathing room required between any two sessions.
	minGapMinutes = 30
	// travelBufferMinutes replaces minGapMinutes when both the new session
	// and the existing one are in-person: it models physical travel time.
	travelBufferMinutes = 45
)

// bufferFor picks the gap requirement between the new session and an
// occupied interval. The rule is asymmetric on purpose: only an
// in-person/in-person pair gets the stricter travel buffer.
func bufferFor(newKind model.SessionKind, occ OccupiedInterval) int {
	if newKind == model.KindInPerson && occ.Kind == model.KindInPerson {
		return travelBufferMinutes
	}
	return minGapMinutes
}

// conflicts reports whether a candidate [start, start+duration) overlaps the
// occupied interval once the interval is expanded by the applicable buffer.
func conflicts(start, duration int, newKind model.SessionKind, occ OccupiedInterval) bool {
	b := bufferFor(newKind, occ)
	return start < occ.End+b && start+duration+b > occ.Start
}

// scanSlots walks the working window at stepMinutes and returns the start of
// every candidate of the requested duration that clears all occupied
// intervals. A non-positive duration yields no candidates.
func scanSlots(workStart, workEnd, duration int, newKind model.SessionKind, occupied []OccupiedInterval) []int {
	if duration <= 0 {
		return nil
	}
	var starts []int
	for t := workStart; t+duration <= workEnd; t += stepMinutes {
		if conflictsAny(t, duration, newKind, occupied) {
			continue
		}
		starts = append(starts, t)
	}
	return starts
}

func conflictsAny(start, duration int, newKind model.SessionKind, occupied []OccupiedInterval) bool {
	for _, occ := range occupied {
		if conflicts(start, duration, newKind, occ) {
			return true
		}
	}
	return false
}
