package recommend

import (
	"sort"

	"tutorplan/services/schedule-service/internal/model"
)

const (
	// Working-hours defaults when settings carry none.
	defaultWorkStart = 8 * 60
	defaultWorkEnd   = 22 * 60
	// maxSlots caps the ranked shortlist.
	maxSlots = 8
)

// Context is the immutable input for one recommendation run.
type Context struct {
	Date      string // "YYYY-MM-DD"; empty yields an empty result
	Duration  int    // requested minutes
	Kind      model.SessionKind
	Location  *model.GeoPoint
	WorkStart int // minutes since midnight; ignored unless WorkEnd > WorkStart
	WorkEnd   int
	ExcludeID string // session being moved, if any
}

// Result is the ranked shortlist plus day-level tips.
type Result struct {
	Slots []Slot
	Tips  []Tip
}

// Recommend is the whole pipeline: occupancy -> analytics -> scan -> score ->
// rank, with tips computed independently from the same occupancy. It is a
// pure function of its inputs; two calls with identical inputs return
// identical results, including reason and tag ordering.
func Recommend(ctx Context, snap Snapshot) Result {
	if ctx.Date == "" {
		return Result{Slots: []Slot{}, Tips: []Tip{}}
	}

	workStart, workEnd := ctx.WorkStart, ctx.WorkEnd
	if workEnd <= workStart {
		workStart, workEnd = defaultWorkStart, defaultWorkEnd
	}

	occupied := collectOccupied(snap, ctx.Date, ctx.ExcludeID)
	workload := computeWorkload(occupied)
	peaks := computePeakHours(occupied)

	slots := []Slot{}
	for _, start := range scanSlots(workStart, workEnd, ctx.Duration, ctx.Kind, occupied) {
		slots = append(slots, scoreSlot(start, ctx, occupied, workload, peaks))
	}

	// Stable sort keeps scan order among equal scores: earlier times first.
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Score > slots[j].Score
	})
	if len(slots) > maxSlots {
		slots = slots[:maxSlots]
	}

	return Result{Slots: slots, Tips: makeTips(ctx, occupied)}
}
