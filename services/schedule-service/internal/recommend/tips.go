package recommend

import (
	"fmt"

	"tutorplan/services/schedule-service/internal/model"
)

// Tip severities.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
)

const (
	heavyDayCount = 5
	fullDayCount  = 3
	// consecutiveGapMinutes is the gap under which two sessions count as one
	// uninterrupted run.
	consecutiveGapMinutes = 45
)

// Tip is a day-level advisory message, independent of any single candidate.
type Tip struct {
	Icon     string
	Text     string
	Severity string
}

// makeTips summarizes the shape of the whole day. Ordering is fixed; an
// empty day short-circuits to a single success tip.
func makeTips(ctx Context, occupied []OccupiedInterval) []Tip {
	if len(occupied) == 0 {
		return []Tip{{Icon: "✨", Text: "The day is completely free, excellent choice", Severity: SeveritySuccess}}
	}

	tips := []Tip{}
	if len(occupied) >= heavyDayCount {
		tips = append(tips, Tip{
			Icon:     "⚠️",
			Text:     fmt.Sprintf("%d sessions already booked, consider another day", len(occupied)),
			Severity: SeverityWarning,
		})
	} else if len(occupied) >= fullDayCount {
		tips = append(tips, Tip{
			Icon:     "📅",
			Text:     fmt.Sprintf("%d sessions booked on this day", len(occupied)),
			Severity: SeverityInfo,
		})
	}

	inPerson, remote := 0, 0
	for _, occ := range occupied {
		switch occ.Kind {
		case model.KindInPerson:
			inPerson++
		case model.KindRemote:
			remote++
		}
	}

	switch ctx.Kind {
	case model.KindInPerson:
		if inPerson >= 2 && remote == 0 {
			tips = append(tips, Tip{Icon: "🚗", Text: "In-person day, a new session fits right in", Severity: SeveritySuccess})
		} else if remote >= 2 && inPerson == 0 {
			tips = append(tips, Tip{Icon: "💻", Text: "Mostly online day, consider another day for in-person work", Severity: SeverityInfo})
		}
		if ctx.Location != nil {
			tips = append(tips, Tip{
				Icon:     "📍",
				Text:     fmt.Sprintf("New session located at %.4f, %.4f", ctx.Location.Lat, ctx.Location.Lng),
				Severity: SeverityInfo,
			})
		}
	case model.KindRemote:
		if remote >= 2 && inPerson == 0 {
			tips = append(tips, Tip{Icon: "💻", Text: "Online day, a new session fits right in", Severity: SeveritySuccess})
		} else if inPerson >= 2 && remote == 0 {
			tips = append(tips, Tip{Icon: "🚗", Text: "In-person day, consider another day for online work", Severity: SeverityInfo})
		}
	}

	if len(occupied) >= busyDayCount {
		tips = append(tips, Tip{Icon: "💤", Text: "Heavy day, schedule breaks between sessions", Severity: SeverityInfo})
	}

	if run := longestRun(occupied); run >= 2 {
		tips = append(tips, Tip{
			Icon:     "🔥",
			Text:     fmt.Sprintf("%d consecutive sessions, plan a break afterward", run+1),
			Severity: SeverityWarning,
		})
	}

	return tips
}

// longestRun walks start-sorted intervals and returns the maximum count of
// consecutive gaps shorter than consecutiveGapMinutes.
func longestRun(occupied []OccupiedInterval) int {
	run, maxRun := 0, 0
	for i := 1; i < len(occupied); i++ {
		gap := occupied[i].Start - occupied[i-1].End
		if gap < consecutiveGapMinutes {
			run++
			if run > maxRun {
				maxRun = run
			}
		} else {
			run = 0
		}
	}
	return maxRun
}
