package tracker

import (
	"fmt"
	"math"
	"time"
)

// DefaultUnit is used when a goal or activity is created without a unit.
const DefaultUnit = "un"

// Goal is a target quantity of some unit to be reached through activities.
// Progress is never stored; it is derived by the aggregate package.
type Goal struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Target    float64   `json:"target" yaml:"target"`
	Unit      string    `json:"unit" yaml:"unit"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Activity is a single logged event contributing Amount of Unit on Date.
type Activity struct {
	ID        string    `json:"id" yaml:"id"`
	Type      string    `json:"type" yaml:"type"`
	Amount    float64   `json:"amount" yaml:"amount"`
	Unit      string    `json:"unit" yaml:"unit"`
	Date      time.Time `json:"date" yaml:"date"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Snapshot is the full set of goals and activities, the unit of persistence.
// Both collections keep insertion order; display order is always derived.
type Snapshot struct {
	Goals      []Goal     `json:"goals" yaml:"goals"`
	Activities []Activity `json:"activities" yaml:"activities"`
}

// Empty returns the empty default snapshot.
func Empty() Snapshot {
	return Snapshot{
		Goals:      []Goal{},
		Activities: []Activity{},
	}
}

// Clone returns a deep copy that shares no backing arrays with s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Goals:      make([]Goal, len(s.Goals)),
		Activities: make([]Activity, len(s.Activities)),
	}
	copy(out.Goals, s.Goals)
	copy(out.Activities, s.Activities)
	return out
}

// Validate reports the first structural problem in s: missing or duplicate
// ids, non-positive quantities, or an activity without a type.
// An empty goal title is allowed since renaming to "" is a valid edit.
func (s Snapshot) Validate() error {
	goalIDs := make(map[string]bool, len(s.Goals))
	for i, g := range s.Goals {
		if g.ID == "" {
			return fmt.Errorf("goals[%d]: missing id", i)
		}
		if goalIDs[g.ID] {
			return fmt.Errorf("goals[%d]: duplicate id %q", i, g.ID)
		}
		goalIDs[g.ID] = true
		if !isPositive(g.Target) {
			return fmt.Errorf("goals[%d]: target must be positive, got %v", i, g.Target)
		}
	}

	activityIDs := make(map[string]bool, len(s.Activities))
	for i, a := range s.Activities {
		if a.ID == "" {
			return fmt.Errorf("activities[%d]: missing id", i)
		}
		if activityIDs[a.ID] {
			return fmt.Errorf("activities[%d]: duplicate id %q", i, a.ID)
		}
		activityIDs[a.ID] = true
		if a.Type == "" {
			return fmt.Errorf("activities[%d]: missing type", i)
		}
		if !isPositive(a.Amount) {
			return fmt.Errorf("activities[%d]: amount must be positive, got %v", i, a.Amount)
		}
	}
	return nil
}

// normalized replaces nil collections with empty ones.
func (s Snapshot) normalized() Snapshot {
	if s.Goals == nil {
		s.Goals = []Goal{}
	}
	if s.Activities == nil {
		s.Activities = []Activity{}
	}
	return s
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
