// Package care turns free-text plant-care instructions into a concrete
// watering schedule.
//
// The two functions here are deliberately pure: no clock, no store, no
// logging. Everything that can fail (missing text, nonsense text, zero
// intervals) resolves to a documented default instead of an error, so the
// rest of the system never has to handle a "plant without a schedule".
package care

import (
	"math"
	"regexp"
	"strconv"
)

// DefaultIntervalDays is the re-water interval used when the care text is
// missing or doesn't match a recognised pattern.
const DefaultIntervalDays = 3

// Matches "every N days" or "every N-M days", case-insensitive.
// "day" (singular) is accepted too: "Every 1 day".
var wateringPattern = regexp.MustCompile(`(?i)every\s+(\d+)(?:-(\d+))?\s+days?`)

// IntervalDays extracts a re-water interval in days from a care description
// such as "Every 2-3 days" or "Water every 5 days".
//
// Rules:
//   - single value → that value ("Every 5 days" → 5)
//   - range → midpoint, rounded half away from zero ("Every 2-3 days" → 3)
//   - empty, unparsable, or zero-valued text → DefaultIntervalDays
//
// Total over all inputs; never returns less than 1.
func IntervalDays(water string) int {
	m := wateringPattern.FindStringSubmatch(water)
	if m == nil {
		return DefaultIntervalDays
	}

	lo, err := strconv.Atoi(m[1])
	if err != nil || lo < 1 {
		return DefaultIntervalDays
	}
	if m[2] == "" {
		return lo
	}

	hi, err := strconv.Atoi(m[2])
	if err != nil || hi < 1 {
		return DefaultIntervalDays
	}
	return int(math.Round(float64(lo+hi) / 2))
}
