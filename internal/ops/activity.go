package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/errors"
	"github.com/hpungsan/fittrack/internal/tracker"
	"github.com/hpungsan/fittrack/internal/view"
)

// LogActivityInput contains parameters for the LogActivity operation.
type LogActivityInput struct {
	Type   string  // required
	Amount float64 // required, > 0
	Unit   string  // default: "un"
	Date   string  // YYYY-MM-DD or RFC 3339; default: today
}

// LogActivityOutput contains the logged activity.
type LogActivityOutput struct {
	Activity tracker.Activity `json:"activity"`
	Day      string           `json:"day"`
	Counts   SnapshotCounts   `json:"counts"`
}

// LogActivity records an activity.
func LogActivity(ctx context.Context, tr *tracker.Tracker, input LogActivityInput) (*LogActivityOutput, error) {
	if strings.TrimSpace(input.Type) == "" {
		return nil, errors.NewInvalidRequest("type is required")
	}
	if _, err := tracker.ParseDate(input.Date, tr.Now()); err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	a, snap, err := tr.AddActivity(ctx, input.Type, input.Amount, input.Unit, input.Date)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if a == nil {
		return nil, errors.NewInvalidRequest("amount must be a positive number")
	}
	return &LogActivityOutput{
		Activity: *a,
		Day:      tracker.Day(a.Date),
		Counts:   countsOf(snap),
	}, nil
}

// RemoveActivityInput contains parameters for the RemoveActivity operation.
type RemoveActivityInput struct {
	ID string
}

// RemoveActivity deletes an activity. Goals are left untouched.
func RemoveActivity(ctx context.Context, tr *tracker.Tracker, input RemoveActivityInput) (*RemoveOutput, error) {
	id, err := requireID(input.ID, "id")
	if err != nil {
		return nil, err
	}

	removed, snap, err := tr.RemoveActivity(ctx, id)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !removed {
		return nil, errors.NewActivityNotFound(id)
	}
	return &RemoveOutput{Removed: true, ID: id, Counts: countsOf(snap)}, nil
}

// ListActivitiesOutput contains the full activity table.
type ListActivitiesOutput struct {
	Items []view.ActivityRow `json:"items"`
	Total int                `json:"total"`
}

// ListActivities returns every activity, newest date first.
func ListActivities(tr *tracker.Tracker) *ListActivitiesOutput {
	acts := tr.Snapshot().Activities
	return &ListActivitiesOutput{
		Items: view.ActivityTableRows(acts),
		Total: view.SummaryCount(acts),
	}
}

// RecentActivitiesInput contains parameters for the RecentActivities operation.
type RecentActivitiesInput struct {
	Limit int // default: config.RecentLimit
}

// RecentActivitiesOutput contains the newest activities.
type RecentActivitiesOutput struct {
	Items []view.ActivityRow `json:"items"`
	Limit int                `json:"limit"`
	Total int                `json:"total"`
}

// RecentActivities returns the newest activities by date.
func RecentActivities(tr *tracker.Tracker, cfg *config.Config, input RecentActivitiesInput) (*RecentActivitiesOutput, error) {
	limit, err := recentLimitFor(cfg, input.Limit)
	if err != nil {
		return nil, err
	}
	acts := tr.Snapshot().Activities
	return &RecentActivitiesOutput{
		Items: view.RecentActivities(acts, limit),
		Limit: limit,
		Total: view.SummaryCount(acts),
	}, nil
}
