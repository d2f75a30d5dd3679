// Package playtime turns free-text playtime strings into numeric bounds.
package playtime

import (
	"regexp"
	"strconv"
)

var digitRuns = regexp.MustCompile(`\d+`)

// Playtime 游戏时长解析结果
type Playtime struct {
	Min int
	Max int
	Avg float64
}

// Parse extracts every run of decimal digits from s and reduces them to
// min/max/avg. It tolerates arbitrary text: units, words, multiple ranges.
// "30-60 min" -> {30, 60, 45}; "90 min" -> {90, 90, 90}; no digits -> zeros.
func Parse(s string) Playtime {
	matches := digitRuns.FindAllString(s, -1)
	if len(matches) == 0 {
		return Playtime{}
	}

	numbers := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			// Digit runs longer than an int; treat as absent.
			continue
		}
		numbers = append(numbers, n)
	}
	if len(numbers) == 0 {
		return Playtime{}
	}

	min, max := numbers[0], numbers[0]
	for _, n := range numbers[1:] {
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}

	return Playtime{
		Min: min,
		Max: max,
		Avg: float64(min+max) / 2,
	}
}
