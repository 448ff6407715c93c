package recommend

// peakHourThreshold is the number of interval starts within one hour bucket
// that marks the hour as peak.
const peakHourThreshold = 2

// Workload counts occupied intervals by the day period their start falls in.
type Workload struct {
	Morning   int
	Afternoon int
	Evening   int
	Quietest  string
}

// computeWorkload buckets interval starts into day periods and picks the
// least-loaded one. Ties resolve in natural scan order: morning, then
// afternoon, then evening.
func computeWorkload(intervals []OccupiedInterval) Workload {
	w := Workload{}
	for _, iv := range intervals {
		switch PeriodOf(iv.Start) {
		case PeriodMorning:
			w.Morning++
		case PeriodAfternoon:
			w.Afternoon++
		default:
			w.Evening++
		}
	}

	w.Quietest = PeriodMorning
	min := w.Morning
	if w.Afternoon < min {
		w.Quietest = PeriodAfternoon
		min = w.Afternoon
	}
	if w.Evening < min {
		w.Quietest = PeriodEvening
	}
	return w
}

// computePeakHours buckets interval starts by hour of day and flags hours
// with two or more bookings. Interval length is deliberately ignored; this
// is a cheap busy-hour approximation.
func computePeakHours(intervals []OccupiedInterval) map[int]bool {
	counts := make(map[int]int, len(intervals))
	for _, iv := range intervals {
		counts[iv.Start/60]++
	}
	peaks := make(map[int]bool)
	for hour, n := range counts {
		if n >= peakHourThreshold {
			peaks[hour] = true
		}
	}
	return peaks
}
