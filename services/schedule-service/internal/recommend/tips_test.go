package recommend

import (
	"strings"
	"testing"

	"tutorplan/services/schedule-service/internal/model"
)

func hasTip(tips []Tip, fragment string) bool {
	for _, tip := range tips {
		if strings.Contains(tip.Text, fragment) {
			return true
		}
	}
	return false
}

func TestMakeTips_EmptyDayShortCircuits(t *testing.T) {
	tips := makeTips(Context{Kind: model.KindInPerson, Location: &model.GeoPoint{Lat: 1, Lng: 1}}, nil)
	if len(tips) != 1 {
		t.Fatalf("empty day must produce exactly one tip, got %d", len(tips))
	}
	if tips[0].Severity != SeveritySuccess || !strings.Contains(tips[0].Text, "completely free") {
		t.Fatalf("unexpected empty-day tip: %+v", tips[0])
	}
}

func TestMakeTips_SessionCountThresholds(t *testing.T) {
	three := []OccupiedInterval{iv(540, 600), iv(720, 780), iv(900, 960)}
	tips := makeTips(Context{}, three)
	if !hasTip(tips, "3 sessions booked") {
		t.Fatalf("three sessions should produce the info count tip: %+v", tips)
	}

	five := append([]OccupiedInterval{}, three...)
	five = append(five, iv(1020, 1080), iv(1200, 1260))
	tips = makeTips(Context{}, five)
	if !hasTip(tips, "5 sessions already booked") {
		t.Fatalf("five sessions should produce the warning tip: %+v", tips)
	}
	for _, tip := range tips {
		if strings.Contains(tip.Text, "sessions booked on this day") {
			t.Fatalf("warning and info count tips are mutually exclusive: %+v", tips)
		}
	}
}

func TestMakeTips_KindClustering(t *testing.T) {
	inPersonDay := []OccupiedInterval{
		{Start: 540, End: 600, Kind: model.KindInPerson},
		{Start: 720, End: 780, Kind: model.KindInPerson},
	}
	tips := makeTips(Context{Kind: model.KindInPerson}, inPersonDay)
	if !hasTip(tips, "In-person day, a new session fits right in") {
		t.Fatalf("in-person request on an in-person day should encourage: %+v", tips)
	}

	tips = makeTips(Context{Kind: model.KindRemote}, inPersonDay)
	if !hasTip(tips, "consider another day for online work") {
		t.Fatalf("remote request on an in-person day should advise: %+v", tips)
	}

	remoteDay := []OccupiedInterval{
		{Start: 540, End: 600, Kind: model.KindRemote},
		{Start: 720, End: 780, Kind: model.KindRemote},
	}
	tips = makeTips(Context{Kind: model.KindInPerson}, remoteDay)
	if !hasTip(tips, "consider another day for in-person work") {
		t.Fatalf("in-person request on an online day should advise: %+v", tips)
	}
}

func TestMakeTips_LocationEcho(t *testing.T) {
	occupied := []OccupiedInterval{iv(540, 600)}
	ctx := Context{Kind: model.KindInPerson, Location: &model.GeoPoint{Lat: 32.0853, Lng: 34.7818}}
	tips := makeTips(ctx, occupied)
	if !hasTip(tips, "32.0853, 34.7818") {
		t.Fatalf("location should be echoed back: %+v", tips)
	}

	// Remote requests never echo a location.
	tips = makeTips(Context{Kind: model.KindRemote, Location: ctx.Location}, occupied)
	if hasTip(tips, "32.0853") {
		t.Fatalf("remote request must not echo a location: %+v", tips)
	}
}

func TestMakeTips_ConsecutiveRun(t *testing.T) {
	// Three sessions chained with gaps under 45 minutes.
	chained := []OccupiedInterval{
		iv(540, 600),  // 09:00-10:00
		iv(630, 690),  // 10:30-11:30, gap 30
		iv(720, 780),  // 12:00-13:00, gap 30
	}
	tips := makeTips(Context{}, chained)
	if !hasTip(tips, "3 consecutive sessions") {
		t.Fatalf("two sub-45 gaps mean a 3-session run: %+v", tips)
	}

	// Widening a single gap to 45 breaks the run.
	relaxed := []OccupiedInterval{
		iv(540, 600),
		iv(645, 705), // gap 45
		iv(735, 795), // gap 30
	}
	tips = makeTips(Context{}, relaxed)
	if hasTip(tips, "consecutive sessions") {
		t.Fatalf("a 45-minute gap must break the run: %+v", tips)
	}
}

func TestMakeTips_FatigueTip(t *testing.T) {
	four := []OccupiedInterval{iv(540, 600), iv(690, 750), iv(840, 900), iv(990, 1050)}
	tips := makeTips(Context{}, four)
	if !hasTip(tips, "schedule breaks") {
		t.Fatalf("four sessions should produce the fatigue tip: %+v", tips)
	}
}
