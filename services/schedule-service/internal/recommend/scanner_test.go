package recommend

import (
	"testing"

	"tutorplan/services/schedule-service/internal/model"
)

func inPersonIv(start, end int) OccupiedInterval {
	return OccupiedInterval{Start: start, End: end, Kind: model.KindInPerson}
}

func contains(starts []int, want int) bool {
	for _, s := range starts {
		if s == want {
			return true
		}
	}
	return false
}

func TestScanSlots_EmptyDayAlignedToStep(t *testing.T) {
	starts := scanSlots(480, 1320, 60, model.KindRemote, nil)
	if len(starts) == 0 {
		t.Fatalf("empty day should yield candidates")
	}
	if starts[0] != 480 {
		t.Fatalf("first candidate should be the window start, got %d", starts[0])
	}
	last := starts[len(starts)-1]
	if last+60 > 1320 {
		t.Fatalf("candidate %d overruns the working window", last)
	}
	for i := 1; i < len(starts); i++ {
		if starts[i]-starts[i-1] != stepMinutes {
			t.Fatalf("candidates must advance by %d minutes: %v", stepMinutes, starts)
		}
	}
}

func TestScanSlots_NonPositiveAndOversizedDuration(t *testing.T) {
	if got := scanSlots(480, 1320, 0, model.KindRemote, nil); got != nil {
		t.Fatalf("zero duration must yield no candidates, got %v", got)
	}
	if got := scanSlots(480, 1320, -15, model.KindRemote, nil); got != nil {
		t.Fatalf("negative duration must yield no candidates, got %v", got)
	}
	if got := scanSlots(480, 600, 180, model.KindRemote, nil); got != nil {
		t.Fatalf("duration longer than the window must yield no candidates, got %v", got)
	}
}

// Two in-person bookings with a 90-minute gap between them: a 30-minute
// remote session fits exactly (30+30+30) while an in-person one needs
// 45+30+45 and finds nothing in the gap.
func TestScanSlots_BufferAsymmetry(t *testing.T) {
	occupied := []OccupiedInterval{
		inPersonIv(540, 600), // 09:00-10:00
		inPersonIv(690, 780), // 11:30-13:00
	}

	remote := scanSlots(480, 1320, 30, model.KindRemote, occupied)
	if !contains(remote, 630) {
		t.Fatalf("remote candidate at 10:30 should fit the gap, got %v", remote)
	}

	inPerson := scanSlots(480, 1320, 30, model.KindInPerson, occupied)
	for _, s := range inPerson {
		if s >= 600 && s < 690 {
			t.Fatalf("no in-person candidate may start inside the gap, got %d", s)
		}
	}
}

// One in-person booking 10:00-11:00; a new in-person hour must keep a
// 45-minute travel buffer on both sides: only 08:00 survives before it and
// nothing resumes until 12:00 on the half-hour grid.
func TestScanSlots_TravelBufferAroundSingleBooking(t *testing.T) {
	occupied := []OccupiedInterval{inPersonIv(600, 660)}

	starts := scanSlots(480, 1320, 60, model.KindInPerson, occupied)
	if !contains(starts, 480) {
		t.Fatalf("08:00 should be conflict-free, got %v", starts)
	}
	for _, s := range []int{510, 540, 570, 600, 630, 660, 690} {
		if contains(starts, s) {
			t.Fatalf("candidate %s violates the travel buffer", FormatClock(s))
		}
	}
	if !contains(starts, 720) {
		t.Fatalf("12:00 clears the buffer and should be present, got %v", starts)
	}
}

func TestScanSlots_NoFalseConflicts(t *testing.T) {
	occupied := []OccupiedInterval{
		inPersonIv(540, 600),
		{Start: 840, End: 930, Kind: model.KindRemote},
	}
	for _, kind := range []model.SessionKind{model.KindInPerson, model.KindRemote} {
		for _, start := range scanSlots(480, 1320, 45, kind, occupied) {
			for _, occ := range occupied {
				if conflicts(start, 45, kind, occ) {
					t.Fatalf("kind %s: slot %d conflicts with %d-%d", kind, start, occ.Start, occ.End)
				}
			}
		}
	}
}
