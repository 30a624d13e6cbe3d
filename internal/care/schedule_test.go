package care

import (
	"testing"
	"time"
)

func TestNextDue_ExactElapsedTime(t *testing.T) {
	last := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	for _, days := range []int{1, 2, 3, 7, 30} {
		got := NextDue(last, days)
		want := last.Add(time.Duration(days) * 24 * time.Hour)
		if !got.Equal(want) {
			t.Errorf("NextDue(%v, %d) = %v, want %v", last, days, got, want)
		}
		if got.Sub(last) != time.Duration(days)*24*time.Hour {
			t.Errorf("NextDue(%v, %d): elapsed = %v, want exactly %d days",
				last, days, got.Sub(last), days)
		}
	}
}

func TestNextDue_ZeroIntervalFallsBack(t *testing.T) {
	last := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got := NextDue(last, 0)
	want := last.Add(DefaultIntervalDays * 24 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("NextDue with 0 days = %v, want default-interval %v", got, want)
	}
}

func TestAdvanceAfter(t *testing.T) {
	last := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name string
		days int
		now  time.Time
		want time.Time
	}{
		{
			name: "not yet due returns first deadline",
			days: 2,
			now:  last.Add(1 * day),
			want: last.Add(2 * day),
		},
		{
			name: "one interval overdue advances one step",
			days: 2,
			now:  last.Add(2*day + time.Hour),
			want: last.Add(4 * day),
		},
		{
			name: "deadline exactly now still moves forward",
			days: 2,
			now:  last.Add(2 * day),
			want: last.Add(4 * day),
		},
		{
			name: "long downtime skips to first future deadline",
			days: 3,
			now:  last.Add(100 * day),
			want: last.Add(102 * day), // 34 intervals of 3 days
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdvanceAfter(last, tt.days, tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("AdvanceAfter(%v, %d, %v) = %v, want %v",
					last, tt.days, tt.now, got, tt.want)
			}
			if !got.After(tt.now) {
				t.Errorf("AdvanceAfter result %v is not strictly after now %v", got, tt.now)
			}
			// Result must stay on the interval grid anchored at lastWatered.
			if got.Sub(last)%(time.Duration(tt.days)*day) != 0 {
				t.Errorf("AdvanceAfter result %v is off the %d-day grid from %v", got, tt.days, last)
			}
		})
	}
}
