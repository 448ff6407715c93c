package recommend

import (
	"fmt"

	"tutorplan/services/schedule-service/internal/model"
)

const (
	baseScore = 40

	sameKindStrongRatio = 0.6
	sameKindStrongBonus = 15
	sameKindWeakRatio   = 0.4
	sameKindWeakBonus   = 8

	proximityRadiusKm  = 10.0
	travelNearBonus    = 15
	travelUnknownBonus = 10
	travelFarBonus     = 5
	onlineDayPenalty   = 5
	remoteClusterRatio = 0.6
	remoteClusterBonus = 10

	offPeakBonus  = 8
	workloadBonus = 7
	adjacentBonus = 5
	adjacentSlack = 15

	preferredStartHour   = 14
	preferredEndHour     = 20
	preferredWindowBonus = 5

	busyDayCount = 4
	longDayCount = 3
	lateHour     = 20

	maxScore = 100

	goldThreshold  = 75
	greenThreshold = 50
)

// Slot tiers and their 1:1 priorities.
const (
	TierGold    = "gold"
	TierGreen   = "green"
	TierNeutral = "neutral"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Slot is a scored, conflict-free candidate span.
type Slot struct {
	Start    int    // minutes since midnight
	Time     string // Start formatted as "HH:MM"
	Score    int    // 0-100
	Tier     string
	Priority string
	Period   string
	Reasons  []string
	Tags     []string
}

// scoreSlot rates one conflict-free candidate. Heuristics run in a fixed
// order and reasons are appended in that same order so identical inputs
// always produce identical output.
func scoreSlot(start int, ctx Context, occupied []OccupiedInterval, workload Workload, peaks map[int]bool) Slot {
	score := baseScore
	reasons := []string{"Time is free"}
	var tags []string

	// Type clustering: reward days already dominated by the requested kind.
	if ctx.Kind != "" && len(occupied) > 0 {
		same := 0
		for _, occ := range occupied {
			if occ.Kind == ctx.Kind {
				same++
			}
		}
		ratio := float64(same) / float64(len(occupied))
		if ratio >= sameKindStrongRatio {
			score += sameKindStrongBonus
			reasons = append(reasons, "Groups well with today's session types")
			tags = append(tags, "same type")
		} else if ratio >= sameKindWeakRatio {
			score += sameKindWeakBonus
			reasons = append(reasons, "Fits today's session mix")
		}
	}

	if ctx.Kind == model.KindInPerson {
		score = applyTravelAwareness(score, start, ctx, occupied, &reasons, &tags)
	}

	// Remote clustering mirrors the in-person travel logic for online days.
	if ctx.Kind == model.KindRemote && len(occupied) > 0 {
		remote := 0
		for _, occ := range occupied {
			if occ.Kind == model.KindRemote {
				remote++
			}
		}
		if float64(remote)/float64(len(occupied)) >= remoteClusterRatio {
			score += remoteClusterBonus
			reasons = append(reasons, "Online-heavy day, stays in the flow")
			tags = append(tags, "online day")
		}
	}

	hour := start / 60
	if !peaks[hour] {
		score += offPeakBonus
		reasons = append(reasons, "Outside peak hours")
	} else {
		reasons = append(reasons, "Falls in a busy hour")
	}

	period := PeriodOf(start)
	if period == workload.Quietest {
		score += workloadBonus
		reasons = append(reasons, "Lightest part of the day")
	}

	score = applyAdjacency(score, start, ctx.Duration, occupied, &reasons, &tags)

	if hour >= preferredStartHour && hour <= preferredEndHour {
		score += preferredWindowBonus
		reasons = append(reasons, "Within prime teaching hours")
		tags = append(tags, "prime time")
	}

	// Informational only; no score effect.
	if len(occupied) >= busyDayCount {
		reasons = append(reasons, "Busy day, remember to take breaks")
	}
	if len(occupied) >= longDayCount && hour >= lateHour {
		reasons = append(reasons, "Late slot after a full day")
	}

	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}

	tier, priority := classify(score)
	return Slot{
		Start:    start,
		Time:     FormatClock(start),
		Score:    score,
		Tier:     tier,
		Priority: priority,
		Period:   period,
		Reasons:  reasons,
		Tags:     tags,
	}
}

// applyTravelAwareness rewards in-person candidates that sit a travel buffer
// away from other in-person sessions, scaled by how close the locations are.
// The best neighbor wins; earlier intervals win ties. A day with two or more
// bookings and no in-person neighbor at all gets a flat penalty instead.
func applyTravelAwareness(score, start int, ctx Context, occupied []OccupiedInterval, reasons *[]string, tags *[]string) int {
	end := start + ctx.Duration

	best := 0
	bestReason := ""
	bestTag := ""
	neighbors := 0
	for _, occ := range occupied {
		if occ.Kind != model.KindInPerson {
			continue
		}
		gapBefore := start - occ.End
		gapAfter := occ.Start - end
		if gapBefore < travelBufferMinutes && gapAfter < travelBufferMinutes {
			continue
		}
		neighbors++

		bonus := travelUnknownBonus
		reason := "Pairs with another in-person session"
		tag := ""
		if ctx.Location != nil && occ.Location != nil {
			if DistanceKm(*ctx.Location, *occ.Location) <= proximityRadiusKm {
				bonus = travelNearBonus
				reason = fmt.Sprintf("Close to %s, minimal travel", occ.Label)
				tag = "nearby"
			} else {
				bonus = travelFarBonus
				reason = fmt.Sprintf("Travel needed from %s", occ.Label)
			}
		}
		if bonus > best {
			best = bonus
			bestReason = reason
			bestTag = tag
		}
	}

	if neighbors > 0 {
		*reasons = append(*reasons, bestReason)
		if bestTag != "" {
			*tags = append(*tags, bestTag)
		}
		return score + best
	}
	if len(occupied) >= 2 {
		*reasons = append(*reasons, "Mostly online day, travel may not pay off")
		return score - onlineDayPenalty
	}
	return score
}

// applyAdjacency grants the back-to-back bonus when the candidate sits just a
// minimum gap (plus a little slack) next to an existing booking. Only the
// first matching interval in start order contributes.
func applyAdjacency(score, start, duration int, occupied []OccupiedInterval, reasons *[]string, tags *[]string) int {
	end := start + duration
	for _, occ := range occupied {
		gapBefore := start - occ.End
		if gapBefore >= minGapMinutes && gapBefore <= minGapMinutes+adjacentSlack {
			*reasons = append(*reasons, fmt.Sprintf("Right after %s", occ.Label))
			*tags = append(*tags, "back-to-back")
			return score + adjacentBonus
		}
		gapAfter := occ.Start - end
		if gapAfter >= minGapMinutes && gapAfter <= minGapMinutes+adjacentSlack {
			*reasons = append(*reasons, fmt.Sprintf("Right before %s", occ.Label))
			*tags = append(*tags, "back-to-back")
			return score + adjacentBonus
		}
	}
	return score
}

func classify(score int) (tier, priority string) {
	switch {
	case score >= goldThreshold:
		return TierGold, PriorityHigh
	case score >= greenThreshold:
		return TierGreen, PriorityMedium
	default:
		return TierNeutral, PriorityLow
	}
}
