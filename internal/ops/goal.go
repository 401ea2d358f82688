package ops

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/fittrack/internal/aggregate"
	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/errors"
	"github.com/hpungsan/fittrack/internal/tracker"
	"github.com/hpungsan/fittrack/internal/view"
)

// AddGoalInput contains parameters for the AddGoal operation.
type AddGoalInput struct {
	Title  string  // required, trimmed
	Target float64 // required, > 0
	Unit   string  // default: "un"
}

// AddGoalOutput contains the created goal.
type AddGoalOutput struct {
	Goal   tracker.Goal   `json:"goal"`
	Counts SnapshotCounts `json:"counts"`
}

// AddGoal creates a goal.
func AddGoal(ctx context.Context, tr *tracker.Tracker, input AddGoalInput) (*AddGoalOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}

	g, snap, err := tr.AddGoal(ctx, title, input.Target, input.Unit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if g == nil {
		return nil, errors.NewInvalidRequest("target must be a positive number")
	}
	return &AddGoalOutput{Goal: *g, Counts: countsOf(snap)}, nil
}

// RemoveGoalInput contains parameters for the RemoveGoal operation.
type RemoveGoalInput struct {
	ID string
}

// RemoveOutput reports a removal.
type RemoveOutput struct {
	Removed bool           `json:"removed"`
	ID      string         `json:"id"`
	Counts  SnapshotCounts `json:"counts"`
}

// RemoveGoal deletes a goal. Activities are left untouched.
func RemoveGoal(ctx context.Context, tr *tracker.Tracker, input RemoveGoalInput) (*RemoveOutput, error) {
	id, err := requireID(input.ID, "id")
	if err != nil {
		return nil, err
	}

	removed, snap, err := tr.RemoveGoal(ctx, id)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !removed {
		return nil, errors.NewGoalNotFound(id)
	}
	return &RemoveOutput{Removed: true, ID: id, Counts: countsOf(snap)}, nil
}

// RenameGoalInput contains parameters for the RenameGoal operation.
// A nil Title means the caller cancelled the edit.
type RenameGoalInput struct {
	ID    string
	Title *string
}

// RenameGoalOutput contains the renamed goal.
type RenameGoalOutput struct {
	Goal tracker.Goal `json:"goal"`
}

// RenameGoal replaces a goal's title. The empty title is accepted.
func RenameGoal(ctx context.Context, tr *tracker.Tracker, input RenameGoalInput) (*RenameGoalOutput, error) {
	id, err := requireID(input.ID, "id")
	if err != nil {
		return nil, err
	}
	if input.Title == nil {
		return nil, errors.NewInvalidRequest("title is required")
	}
	if utf8.RuneCountInString(*input.Title) > MaxTitleLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}

	ok, snap, err := tr.EditGoalTitle(ctx, id, input.Title)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok {
		return nil, errors.NewGoalNotFound(id)
	}
	g, _ := findGoal(snap, id)
	return &RenameGoalOutput{Goal: g}, nil
}

// ListGoalsInput contains parameters for the ListGoals operation.
type ListGoalsInput struct {
	Policy string // optional override of config.MatchPolicy
}

// ListGoalsOutput contains every goal with its live progress.
type ListGoalsOutput struct {
	Goals  []view.GoalRow `json:"goals"`
	Policy string         `json:"policy"`
}

// ListGoals returns goal rows in insertion order.
func ListGoals(tr *tracker.Tracker, cfg *config.Config, input ListGoalsInput) (*ListGoalsOutput, error) {
	policy, err := resolvePolicy(cfg, input.Policy)
	if err != nil {
		return nil, err
	}
	return &ListGoalsOutput{
		Goals:  view.GoalRows(tr.Snapshot(), policy),
		Policy: string(policy),
	}, nil
}

// GoalProgressInput contains parameters for the GoalProgress operation.
type GoalProgressInput struct {
	ID     string
	Policy string
}

// GoalProgressOutput details one goal's progress, including the activities
// that were counted and how the keyword test judged each of them.
type GoalProgressOutput struct {
	Row     view.GoalRow      `json:"row"`
	Matched []MatchedActivity `json:"matched"`
	Keyword string            `json:"keyword"`
	Policy  string            `json:"policy"`
}

// MatchedActivity is a counted activity plus its keyword test result.
type MatchedActivity struct {
	view.ActivityRow
	KeywordMatch bool `json:"keyword_match"`
}

// GoalProgress computes a single goal's progress.
func GoalProgress(tr *tracker.Tracker, cfg *config.Config, input GoalProgressInput) (*GoalProgressOutput, error) {
	id, err := requireID(input.ID, "id")
	if err != nil {
		return nil, err
	}
	policy, err := resolvePolicy(cfg, input.Policy)
	if err != nil {
		return nil, err
	}

	snap := tr.Snapshot()
	g, ok := findGoal(snap, id)
	if !ok {
		return nil, errors.NewGoalNotFound(id)
	}

	p := aggregate.GoalProgress(g, snap.Activities, policy)
	matchedRows := view.ActivityTableRows(p.Matched)
	matched := make([]MatchedActivity, 0, len(matchedRows))
	byID := make(map[string]tracker.Activity, len(p.Matched))
	for _, a := range p.Matched {
		byID[a.ID] = a
	}
	for _, row := range matchedRows {
		matched = append(matched, MatchedActivity{
			ActivityRow:  row,
			KeywordMatch: aggregate.KeywordMatch(g, byID[row.ID]),
		})
	}

	return &GoalProgressOutput{
		Row:     view.BuildGoalRow(g, snap.Activities, policy),
		Matched: matched,
		Keyword: aggregate.Keyword(g.Title),
		Policy:  string(policy),
	}, nil
}

func findGoal(snap tracker.Snapshot, id string) (tracker.Goal, bool) {
	for _, g := range snap.Goals {
		if g.ID == id {
			return g, true
		}
	}
	return tracker.Goal{}, false
}

func countsOf(snap tracker.Snapshot) SnapshotCounts {
	return SnapshotCounts{Goals: len(snap.Goals), Activities: len(snap.Activities)}
}
