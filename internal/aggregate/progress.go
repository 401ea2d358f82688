// Package aggregate maps activities onto goals and buckets them by day.
// Everything here is pure and recomputed from a full snapshot on every call.
package aggregate

import (
	"fmt"
	"math"
	"strings"

	"github.com/hpungsan/fittrack/internal/tracker"
)

// Policy decides which unit-matching activities count toward a goal.
type Policy string

const (
	// PolicyUnit counts every activity whose unit equals the goal's unit.
	// The keyword test is still evaluated and reported, but does not gate.
	PolicyUnit Policy = "unit"

	// PolicyKeyword additionally requires the keyword test to pass.
	PolicyKeyword Policy = "keyword"
)

// ParsePolicy converts a config string into a Policy. Blank means PolicyUnit.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyUnit:
		return PolicyUnit, nil
	case PolicyKeyword:
		return PolicyKeyword, nil
	default:
		return "", fmt.Errorf("unknown match policy %q", s)
	}
}

// Progress is a goal's live completion state.
type Progress struct {
	// Matched are the activities counted toward the goal, in snapshot order.
	Matched []tracker.Activity `json:"matched"`
	// Total is the summed amount of Matched, saturated at math.MaxFloat64.
	Total float64 `json:"total"`
	// Percent is round(Total/Target*100). It is not clamped and can exceed 100.
	Percent int `json:"percent"`
}

// Keyword returns the goal's matching keyword: the first whitespace-delimited
// token of its title, lower-cased. Leading whitespace is skipped, so only a
// blank title yields "" (which matches every activity type).
func Keyword(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// KeywordMatch reports whether the goal keyword appears in the activity type,
// or the activity type appears in the goal title (both case-insensitive).
func KeywordMatch(goal tracker.Goal, a tracker.Activity) bool {
	activityType := strings.ToLower(a.Type)
	if strings.Contains(activityType, Keyword(goal.Title)) {
		return true
	}
	return strings.Contains(strings.ToLower(goal.Title), activityType)
}

// Counts reports whether a contributes to goal under policy.
// Unit comparison is exact and case-sensitive.
func Counts(goal tracker.Goal, a tracker.Activity, policy Policy) bool {
	if a.Unit != goal.Unit {
		return false
	}
	if policy == PolicyKeyword {
		return KeywordMatch(goal, a)
	}
	return true
}

// GoalProgress sums the activities attributed to goal.
func GoalProgress(goal tracker.Goal, activities []tracker.Activity, policy Policy) Progress {
	p := Progress{Matched: []tracker.Activity{}}
	for _, a := range activities {
		if !Counts(goal, a, policy) {
			continue
		}
		p.Matched = append(p.Matched, a)
		p.Total = addSaturating(p.Total, a.Amount)
	}
	p.Percent = Percent(p.Total, goal.Target)
	return p
}

// Percent returns round(total/target*100), or 0 when target is not positive.
// Ratios too large for an int saturate at math.MaxInt.
func Percent(total, target float64) int {
	if !(target > 0) || math.IsNaN(total) {
		return 0
	}
	ratio := math.Round(total / target * 100)
	switch {
	case ratio >= float64(math.MaxInt):
		return math.MaxInt
	case ratio <= 0:
		return 0
	}
	return int(ratio)
}

// addSaturating adds two non-negative amounts, capping at math.MaxFloat64 so
// sums stay finite and JSON-encodable.
func addSaturating(a, b float64) float64 {
	sum := a + b
	if math.IsInf(sum, 1) {
		return math.MaxFloat64
	}
	return sum
}
