package ops

import (
	"context"

	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/errors"
	"github.com/hpungsan/fittrack/internal/tracker"
	"github.com/hpungsan/fittrack/internal/view"
)

// DashboardInput contains parameters for the Dashboard operation.
type DashboardInput struct {
	Policy      string // optional override of config.MatchPolicy
	RecentLimit int    // default: config.RecentLimit
}

// Dashboard recomputes every projection from the current snapshot.
func Dashboard(tr *tracker.Tracker, cfg *config.Config, input DashboardInput) (*view.Dashboard, error) {
	policy, err := resolvePolicy(cfg, input.Policy)
	if err != nil {
		return nil, err
	}
	limit, err := recentLimitFor(cfg, input.RecentLimit)
	if err != nil {
		return nil, err
	}
	d := view.Build(tr.Snapshot(), policy, limit)
	return &d, nil
}

// Chart returns the daily-volume series.
func Chart(tr *tracker.Tracker) view.Chart {
	return view.ChartSeries(tr.Snapshot().Activities)
}

// ClearInput contains parameters for the Clear operation.
type ClearInput struct {
	// Confirm must be true; surfaces collect it from the user first.
	Confirm bool
}

// ClearOutput reports what was discarded.
type ClearOutput struct {
	Cleared SnapshotCounts `json:"cleared"`
}

// Clear resets the tracker to the empty snapshot.
func Clear(ctx context.Context, tr *tracker.Tracker, input ClearInput) (*ClearOutput, error) {
	if !input.Confirm {
		return nil, errors.NewInvalidRequest("clear requires confirmation")
	}
	cleared, err := tr.ClearAll(ctx)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &ClearOutput{Cleared: countsOf(cleared)}, nil
}

// SampleOutput reports the snapshot size after loading the sample.
type SampleOutput struct {
	Added  SnapshotCounts `json:"added"`
	Counts SnapshotCounts `json:"counts"`
}

// Sample appends the sample goal and activities to the existing data.
func Sample(ctx context.Context, tr *tracker.Tracker) (*SampleOutput, error) {
	snap, err := tr.LoadSample(ctx)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	goals, activities := tracker.SampleSize()
	return &SampleOutput{
		Added:  SnapshotCounts{Goals: goals, Activities: activities},
		Counts: countsOf(snap),
	}, nil
}
