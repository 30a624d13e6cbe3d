package care

import "testing"

func TestIntervalDays(t *testing.T) {
	tests := []struct {
		name  string
		water string
		want  int
	}{
		{"single value", "Every 5 days", 5},
		{"range rounds midpoint up", "Every 2-3 days", 3},
		{"range with whole midpoint", "Every 2-4 days", 3},
		{"singular day", "every 1 day", 1},
		{"case insensitive", "EVERY 7 DAYS", 7},
		{"embedded in longer text", "Water thoroughly every 10 days in summer", 10},
		{"empty string defaults", "", DefaultIntervalDays},
		{"unparsable text defaults", "sparingly", DefaultIntervalDays},
		{"vague instruction defaults", "when the soil feels dry", DefaultIntervalDays},
		{"zero interval defaults", "every 0 days", DefaultIntervalDays},
		{"zero upper bound defaults", "every 1-0 days", DefaultIntervalDays},
		{"number without keyword defaults", "3 days", DefaultIntervalDays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntervalDays(tt.water); got != tt.want {
				t.Errorf("IntervalDays(%q) = %d, want %d", tt.water, got, tt.want)
			}
		})
	}
}

// The parser must never return an interval the scheduler can't step by.
func TestIntervalDays_AlwaysPositive(t *testing.T) {
	inputs := []string{"", "every -3 days", "every 0-0 days", "every days", "日本語"}
	for _, in := range inputs {
		if got := IntervalDays(in); got < 1 {
			t.Errorf("IntervalDays(%q) = %d, want >= 1", in, got)
		}
	}
}
