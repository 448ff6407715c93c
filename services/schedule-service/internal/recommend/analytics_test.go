package recommend

import "testing"

func iv(start, end int) OccupiedInterval {
	return OccupiedInterval{Start: start, End: end}
}

func TestComputeWorkload_CountsAndQuietest(t *testing.T) {
	w := computeWorkload([]OccupiedInterval{
		iv(540, 600),   // 09:00 morning
		iv(780, 840),   // 13:00 afternoon
		iv(900, 960),   // 15:00 afternoon
		iv(1080, 1140), // 18:00 evening
	})
	if w.Morning != 1 || w.Afternoon != 2 || w.Evening != 1 {
		t.Fatalf("unexpected counts: %+v", w)
	}
	if w.Quietest != PeriodMorning {
		t.Fatalf("morning wins the tie with evening, got %s", w.Quietest)
	}
}

func TestComputeWorkload_TiePrecedence(t *testing.T) {
	// All periods equal: morning takes precedence, then afternoon.
	w := computeWorkload(nil)
	if w.Quietest != PeriodMorning {
		t.Fatalf("empty day should report morning, got %s", w.Quietest)
	}

	w = computeWorkload([]OccupiedInterval{iv(540, 600)})
	if w.Quietest != PeriodAfternoon {
		t.Fatalf("afternoon should win over evening on a tie, got %s", w.Quietest)
	}
}

func TestComputePeakHours(t *testing.T) {
	peaks := computePeakHours([]OccupiedInterval{
		iv(600, 630),  // 10:00
		iv(630, 660),  // 10:30
		iv(720, 780),  // 12:00
		iv(1439, 1440),
	})
	if !peaks[10] {
		t.Fatalf("hour 10 has two starts and must be peak")
	}
	if peaks[12] {
		t.Fatalf("hour 12 has a single start and must not be peak")
	}
	if len(peaks) != 1 {
		t.Fatalf("expected exactly one peak hour, got %v", peaks)
	}
}
