package aggregate

import (
	"sort"

	"github.com/hpungsan/fittrack/internal/tracker"
)

// DayTotal is the summed activity amount of one calendar day.
type DayTotal struct {
	Day   string  `json:"day"`
	Total float64 `json:"total"`
}

// DailySeries groups activities by UTC calendar day (time of day ignored) and
// returns one point per day with at least one activity, oldest first.
// Days without activity are omitted. Daily totals saturate like goal totals.
func DailySeries(activities []tracker.Activity) []DayTotal {
	sums := make(map[string]float64)
	for _, a := range activities {
		d := tracker.Day(a.Date)
		sums[d] = addSaturating(sums[d], a.Amount)
	}

	series := make([]DayTotal, 0, len(sums))
	for day, total := range sums {
		series = append(series, DayTotal{Day: day, Total: total})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Day < series[j].Day })
	return series
}
