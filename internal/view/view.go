// Package view turns a snapshot plus aggregation results into renderer-agnostic
// view models. Nothing is cached: each call works from the full snapshot.
package view

import (
	"sort"
	"strconv"

	"github.com/hpungsan/fittrack/internal/aggregate"
	"github.com/hpungsan/fittrack/internal/tracker"
)

// DefaultRecentLimit is the length of the recent-activities list.
const DefaultRecentLimit = 6

// GoalRow is one goal with its live progress.
type GoalRow struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Current           float64 `json:"current"`
	Target            float64 `json:"target"`
	CurrentOverTarget string  `json:"current_over_target"`
	Unit              string  `json:"unit"`
	// Percent is the raw value shown as text; it may exceed 100.
	Percent int `json:"percent"`
	// BarWidth is Percent clamped to [0,100] for progress bars.
	BarWidth int `json:"bar_width"`
}

// ActivityRow is an activity prepared for lists and tables.
type ActivityRow struct {
	ID     string  `json:"id"`
	Day    string  `json:"day"`
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Chart is the daily-volume series as two equal-length sequences.
type Chart struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Dashboard bundles every projection of one snapshot.
type Dashboard struct {
	Goals        []GoalRow     `json:"goals"`
	Recent       []ActivityRow `json:"recent"`
	Activities   []ActivityRow `json:"activities"`
	Chart        Chart         `json:"chart"`
	SummaryCount int           `json:"summary_count"`
	Policy       string        `json:"policy"`
}

// BuildGoalRow computes the row for a single goal.
func BuildGoalRow(goal tracker.Goal, activities []tracker.Activity, policy aggregate.Policy) GoalRow {
	p := aggregate.GoalProgress(goal, activities, policy)
	return GoalRow{
		ID:                goal.ID,
		Title:             goal.Title,
		Current:           p.Total,
		Target:            goal.Target,
		CurrentOverTarget: FormatAmount(p.Total) + "/" + FormatAmount(goal.Target),
		Unit:              goal.Unit,
		Percent:           p.Percent,
		BarWidth:          clamp(p.Percent, 0, 100),
	}
}

// GoalRows returns one row per goal in insertion order.
func GoalRows(snap tracker.Snapshot, policy aggregate.Policy) []GoalRow {
	rows := make([]GoalRow, 0, len(snap.Goals))
	for _, g := range snap.Goals {
		rows = append(rows, BuildGoalRow(g, snap.Activities, policy))
	}
	return rows
}

// RecentActivities returns the limit newest activities by date.
// A non-positive limit falls back to DefaultRecentLimit.
func RecentActivities(activities []tracker.Activity, limit int) []ActivityRow {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows := ActivityTableRows(activities)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// ActivityTableRows returns every activity, newest date first.
// Activities sharing a date have no guaranteed relative order.
func ActivityTableRows(activities []tracker.Activity) []ActivityRow {
	sorted := make([]tracker.Activity, len(activities))
	copy(sorted, activities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	rows := make([]ActivityRow, 0, len(sorted))
	for _, a := range sorted {
		rows = append(rows, ActivityRow{
			ID:     a.ID,
			Day:    tracker.Day(a.Date),
			Type:   a.Type,
			Amount: a.Amount,
			Unit:   a.Unit,
		})
	}
	return rows
}

// ChartSeries exposes aggregate.DailySeries as labels and values.
func ChartSeries(activities []tracker.Activity) Chart {
	series := aggregate.DailySeries(activities)
	c := Chart{
		Labels: make([]string, 0, len(series)),
		Values: make([]float64, 0, len(series)),
	}
	for _, pt := range series {
		c.Labels = append(c.Labels, pt.Day)
		c.Values = append(c.Values, pt.Total)
	}
	return c
}

// SummaryCount is the total number of activities.
func SummaryCount(activities []tracker.Activity) int {
	return len(activities)
}

// Build computes the full dashboard for snap.
func Build(snap tracker.Snapshot, policy aggregate.Policy, recentLimit int) Dashboard {
	return Dashboard{
		Goals:        GoalRows(snap, policy),
		Recent:       RecentActivities(snap.Activities, recentLimit),
		Activities:   ActivityTableRows(snap.Activities),
		Chart:        ChartSeries(snap.Activities),
		SummaryCount: SummaryCount(snap.Activities),
		Policy:       string(policy),
	}
}

// FormatAmount prints a quantity without trailing zeros ("18", "2.5").
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
