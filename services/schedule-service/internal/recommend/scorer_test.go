package recommend

import (
	"strings"
	"testing"

	"tutorplan/services/schedule-service/internal/model"
)

func hasReason(slot Slot, fragment string) bool {
	for _, r := range slot.Reasons {
		if strings.Contains(r, fragment) {
			return true
		}
	}
	return false
}

func hasTag(slot Slot, tag string) bool {
	for _, t := range slot.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func TestScoreSlot_EmptyDayBaseline(t *testing.T) {
	ctx := Context{Date: testDate, Duration: 60}
	workload := computeWorkload(nil)

	slot := scoreSlot(480, ctx, nil, workload, map[int]bool{})
	// 40 base + 8 off-peak + 7 quietest period.
	if slot.Score != 55 {
		t.Fatalf("expected 55, got %d (%v)", slot.Score, slot.Reasons)
	}
	if slot.Tier != TierGreen || slot.Priority != PriorityMedium {
		t.Fatalf("55 should be green/medium, got %s/%s", slot.Tier, slot.Priority)
	}
	if slot.Time != "08:00" || slot.Period != PeriodMorning {
		t.Fatalf("unexpected slot presentation: %+v", slot)
	}
	if slot.Reasons[0] != "Time is free" {
		t.Fatalf("base reason must come first, got %v", slot.Reasons)
	}
}

func TestScoreSlot_TypeClusteringThresholds(t *testing.T) {
	ctx := Context{Date: testDate, Duration: 60, Kind: model.KindInPerson}
	strong := []OccupiedInterval{
		inPersonIv(540, 600),
		inPersonIv(720, 780),
		{Start: 900, End: 960, Kind: model.KindRemote},
	}
	slot := scoreSlot(1140, ctx, strong, computeWorkload(strong), map[int]bool{})
	if !hasTag(slot, "same type") {
		t.Fatalf("2/3 same-kind ratio should tag 'same type': %+v", slot)
	}

	weak := []OccupiedInterval{
		inPersonIv(540, 600),
		{Start: 720, End: 780, Kind: model.KindRemote},
		{Start: 900, End: 960, Kind: model.KindRemote},
		{Start: 1020, End: 1080, Kind: model.KindRemote},
	}
	// Ratio 0.25: neither clustering bonus fires.
	slot = scoreSlot(1320, Context{Date: testDate, Duration: 60, Kind: model.KindInPerson}, weak, computeWorkload(weak), map[int]bool{})
	if hasTag(slot, "same type") || hasReason(slot, "session mix") {
		t.Fatalf("ratio below 0.4 must not trigger clustering: %+v", slot)
	}
}

func TestScoreSlot_TravelAwareness(t *testing.T) {
	near := &model.GeoPoint{Lat: 32.08, Lng: 34.78}
	far := &model.GeoPoint{Lat: 31.77, Lng: 35.21}

	occupied := []OccupiedInterval{
		{Start: 540, End: 600, Kind: model.KindInPerson, Location: near, Label: "Dana"},
	}
	workload := computeWorkload(occupied)

	ctxNear := Context{Date: testDate, Duration: 60, Kind: model.KindInPerson, Location: &model.GeoPoint{Lat: 32.09, Lng: 34.79}}
	slot := scoreSlot(720, ctxNear, occupied, workload, map[int]bool{})
	if !hasTag(slot, "nearby") || !hasReason(slot, "Dana") {
		t.Fatalf("close locations should credit the near bonus: %+v", slot)
	}

	ctxFar := Context{Date: testDate, Duration: 60, Kind: model.KindInPerson, Location: far}
	slotFar := scoreSlot(720, ctxFar, occupied, workload, map[int]bool{})
	if !hasReason(slotFar, "Travel needed") {
		t.Fatalf("distant locations should credit the far bonus: %+v", slotFar)
	}
	if slotFar.Score >= slot.Score {
		t.Fatalf("far bonus (%d) must rank below near bonus (%d)", slotFar.Score, slot.Score)
	}

	ctxUnknown := Context{Date: testDate, Duration: 60, Kind: model.KindInPerson}
	slotUnknown := scoreSlot(720, ctxUnknown, occupied, workload, map[int]bool{})
	if !hasReason(slotUnknown, "Pairs with another in-person session") {
		t.Fatalf("unknown location should credit the middle bonus: %+v", slotUnknown)
	}
}

func TestScoreSlot_OnlineDominantPenalty(t *testing.T) {
	occupied := []OccupiedInterval{
		{Start: 540, End: 600, Kind: model.KindRemote},
		{Start: 720, End: 780, Kind: model.KindRemote},
	}
	ctx := Context{Date: testDate, Duration: 60, Kind: model.KindInPerson}
	slot := scoreSlot(900, ctx, occupied, computeWorkload(occupied), map[int]bool{})
	if !hasReason(slot, "Mostly online day") {
		t.Fatalf("in-person request on an online day should be penalized: %+v", slot)
	}

	// A single remote booking is not enough for the penalty.
	one := occupied[:1]
	slot = scoreSlot(900, ctx, one, computeWorkload(one), map[int]bool{})
	if hasReason(slot, "Mostly online day") {
		t.Fatalf("penalty needs at least two occupied intervals: %+v", slot)
	}
}

func TestScoreSlot_RemoteClustering(t *testing.T) {
	occupied := []OccupiedInterval{
		{Start: 540, End: 600, Kind: model.KindRemote},
		{Start: 720, End: 780, Kind: model.KindRemote},
		inPersonIv(900, 960),
	}
	ctx := Context{Date: testDate, Duration: 60, Kind: model.KindRemote}
	slot := scoreSlot(1140, ctx, occupied, computeWorkload(occupied), map[int]bool{})
	if !hasTag(slot, "online day") {
		t.Fatalf("2/3 remote ratio should credit remote clustering: %+v", slot)
	}
}

func TestScoreSlot_AdjacencyFirstMatchOnly(t *testing.T) {
	occupied := []OccupiedInterval{
		{Start: 540, End: 600, Kind: model.KindRemote, Label: "Dana"},
		{Start: 750, End: 810, Kind: model.KindRemote, Label: "Yoav"},
	}
	// 10:30-11:30 sits 30 after Dana and 60 before Yoav... the trailing gap
	// is outside the slack window, so only Dana can match anyway; what must
	// hold is that exactly one bonus and one reason are emitted.
	ctx := Context{Date: testDate, Duration: 60, Kind: model.KindRemote}
	slot := scoreSlot(630, ctx, occupied, computeWorkload(occupied), map[int]bool{})
	if !hasReason(slot, "Right after Dana") {
		t.Fatalf("expected back-to-back with Dana: %+v", slot)
	}

	// Both neighbors qualify: gap 30 after Dana, gap 30 before Yoav at
	// 12:00-13:00 against 13:30. The first interval in start order wins and
	// the walk stops.
	both := []OccupiedInterval{
		{Start: 540, End: 690, Kind: model.KindRemote, Label: "Dana"},
		{Start: 810, End: 870, Kind: model.KindRemote, Label: "Yoav"},
	}
	slot = scoreSlot(720, ctx, both, computeWorkload(both), map[int]bool{})
	if !hasReason(slot, "Right after Dana") {
		t.Fatalf("first match in start order must win: %+v", slot)
	}
	if hasReason(slot, "Yoav") {
		t.Fatalf("second adjacent neighbor must not add a reason: %+v", slot)
	}
	count := 0
	for _, tag := range slot.Tags {
		if tag == "back-to-back" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one back-to-back tag, got %d", count)
	}
}

func TestScoreSlot_PreferredWindowAndInformationalReasons(t *testing.T) {
	occupied := []OccupiedInterval{
		iv(540, 600), iv(660, 720), iv(780, 840), iv(900, 960),
	}
	ctx := Context{Date: testDate, Duration: 60}
	slot := scoreSlot(1230, ctx, occupied, computeWorkload(occupied), map[int]bool{})
	if !hasTag(slot, "prime time") {
		t.Fatalf("20:30 is inside the preferred window: %+v", slot)
	}
	if !hasReason(slot, "Busy day") {
		t.Fatalf("four bookings should add the busy-day note: %+v", slot)
	}
	if !hasReason(slot, "Late slot") {
		t.Fatalf("hour 20 with a full day should add the late note: %+v", slot)
	}

	early := scoreSlot(480, ctx, occupied, computeWorkload(occupied), map[int]bool{})
	if hasTag(early, "prime time") || hasReason(early, "Late slot") {
		t.Fatalf("08:00 is neither prime time nor late: %+v", early)
	}
}

func TestScoreSlot_BoundsAndTiers(t *testing.T) {
	occupied := []OccupiedInterval{
		{Start: 540, End: 600, Kind: model.KindInPerson, Location: &model.GeoPoint{Lat: 32.08, Lng: 34.78}, Label: "Dana"},
		inPersonIv(690, 750),
		inPersonIv(1080, 1140),
	}
	ctx := Context{Date: testDate, Duration: 60, Kind: model.KindInPerson, Location: &model.GeoPoint{Lat: 32.08, Lng: 34.78}}
	workload := computeWorkload(occupied)
	peaks := computePeakHours(occupied)

	for start := 480; start+60 <= 1320; start += stepMinutes {
		slot := scoreSlot(start, ctx, occupied, workload, peaks)
		if slot.Score < 0 || slot.Score > maxScore {
			t.Fatalf("score out of bounds at %s: %d", slot.Time, slot.Score)
		}
		switch {
		case slot.Score >= goldThreshold:
			if slot.Tier != TierGold {
				t.Fatalf("score %d must be gold, got %s", slot.Score, slot.Tier)
			}
		case slot.Score >= greenThreshold:
			if slot.Tier != TierGreen {
				t.Fatalf("score %d must be green, got %s", slot.Score, slot.Tier)
			}
		default:
			if slot.Tier != TierNeutral {
				t.Fatalf("score %d must be neutral, got %s", slot.Score, slot.Tier)
			}
		}
	}
}
