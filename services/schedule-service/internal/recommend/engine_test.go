package recommend

import (
	"reflect"
	"testing"

	"tutorplan/services/schedule-service/internal/model"
)

func TestRecommend_EmptyDateReturnsEmptyResult(t *testing.T) {
	res := Recommend(Context{Duration: 60}, Snapshot{})
	if res.Slots == nil || res.Tips == nil {
		t.Fatalf("empty-date result must carry empty, non-nil slices: %+v", res)
	}
	if len(res.Slots) != 0 || len(res.Tips) != 0 {
		t.Fatalf("empty date must yield an empty result, got %+v", res)
	}
}

func TestRecommend_EmptyDayTopSlot(t *testing.T) {
	res := Recommend(Context{Date: testDate, Duration: 60}, Snapshot{})
	if len(res.Slots) != maxSlots {
		t.Fatalf("a free 08:00-22:00 day should fill the shortlist, got %d", len(res.Slots))
	}
	top := res.Slots[0]
	if top.Time != "08:00" || top.Score != 55 {
		t.Fatalf("expected the earliest morning slot on top with score 55, got %+v", top)
	}
	if len(res.Tips) != 1 || res.Tips[0].Severity != SeveritySuccess {
		t.Fatalf("empty day should carry the single success tip, got %+v", res.Tips)
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	snap := snapshotWith([]model.Session{
		{ID: "s-1", StudentID: "st-1", Date: testDate, Time: "09:00", Status: model.StatusScheduled},
		{ID: "s-2", StudentID: "st-2", Date: testDate, Time: "13:00", Status: model.StatusScheduled},
	}, []model.GroupSession{
		{ID: "gs-1", GroupID: "gr-1", Date: testDate, Status: model.StatusScheduled},
	})
	ctx := Context{
		Date:     testDate,
		Duration: 60,
		Kind:     model.KindInPerson,
		Location: &model.GeoPoint{Lat: 32.09, Lng: 34.79},
	}

	first := Recommend(ctx, snap)
	second := Recommend(ctx, snap)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must produce identical output:\n%+v\n%+v", first, second)
	}
}

func TestRecommend_RankingStableAndBounded(t *testing.T) {
	snap := snapshotWith([]model.Session{
		{ID: "s-1", StudentID: "st-1", Date: testDate, Time: "10:00", Status: model.StatusScheduled},
		{ID: "s-2", StudentID: "st-2", Date: testDate, Time: "15:00", Status: model.StatusScheduled},
	}, nil)
	res := Recommend(Context{Date: testDate, Duration: 60, Kind: model.KindRemote}, snap)

	if len(res.Slots) == 0 || len(res.Slots) > maxSlots {
		t.Fatalf("shortlist must hold 1..%d slots, got %d", maxSlots, len(res.Slots))
	}
	for i := 1; i < len(res.Slots); i++ {
		prev, cur := res.Slots[i-1], res.Slots[i]
		if cur.Score > prev.Score {
			t.Fatalf("slots must be sorted by score descending: %+v", res.Slots)
		}
		if cur.Score == prev.Score && cur.Start < prev.Start {
			t.Fatalf("equal scores must keep earlier starts first: %+v", res.Slots)
		}
	}
	for _, slot := range res.Slots {
		if slot.Score < 0 || slot.Score > maxScore {
			t.Fatalf("score out of bounds: %+v", slot)
		}
	}
}

func TestRecommend_SlotsClearOccupiedIntervals(t *testing.T) {
	snap := snapshotWith([]model.Session{
		{ID: "s-1", StudentID: "st-1", Date: testDate, Time: "10:00", Duration: 60, Status: model.StatusScheduled},
	}, nil)
	ctx := Context{Date: testDate, Duration: 60, Kind: model.KindInPerson}

	res := Recommend(ctx, snap)
	occupied := collectOccupied(snap, testDate, "")
	for _, slot := range res.Slots {
		for _, occ := range occupied {
			if conflicts(slot.Start, ctx.Duration, ctx.Kind, occ) {
				t.Fatalf("slot %s conflicts with %d-%d", slot.Time, occ.Start, occ.End)
			}
		}
	}
}

func TestRecommend_ExplicitWorkingHours(t *testing.T) {
	res := Recommend(Context{Date: testDate, Duration: 60, WorkStart: 600, WorkEnd: 720}, Snapshot{})
	if len(res.Slots) != 3 {
		t.Fatalf("10:00-12:00 fits three hour-long starts, got %d", len(res.Slots))
	}
	for _, slot := range res.Slots {
		if slot.Start < 600 || slot.Start+60 > 720 {
			t.Fatalf("slot %s escapes the configured window", slot.Time)
		}
	}
}

func TestRecommend_UnreasonableDurationDegradesSilently(t *testing.T) {
	snap := snapshotWith([]model.Session{
		{ID: "s-1", StudentID: "st-1", Date: testDate, Time: "09:00", Status: model.StatusScheduled},
	}, nil)
	res := Recommend(Context{Date: testDate, Duration: 2000}, snap)
	if len(res.Slots) != 0 {
		t.Fatalf("oversized duration must yield zero candidates, got %d", len(res.Slots))
	}
	if len(res.Tips) == 0 {
		t.Fatalf("tips still apply even when no slot fits")
	}
}

func TestRecommend_ExcludedSessionFreesItsSlot(t *testing.T) {
	snap := snapshotWith([]model.Session{
		{ID: "s-1", StudentID: "st-2", Date: testDate, Time: "10:00", Duration: 60, Status: model.StatusScheduled},
	}, nil)

	blocked := Recommend(Context{Date: testDate, Duration: 60, Kind: model.KindRemote}, snap)
	for _, slot := range blocked.Slots {
		if slot.Time == "10:00" {
			t.Fatalf("10:00 is occupied and must not be recommended")
		}
	}

	moved := Recommend(Context{Date: testDate, Duration: 60, Kind: model.KindRemote, ExcludeID: "s-1"}, snap)
	found := false
	for _, slot := range moved.Slots {
		if slot.Time == "10:00" {
			found = true
		}
	}
	if !found {
		t.Fatalf("excluding the moved session should free its own slot: %+v", moved.Slots)
	}
}
