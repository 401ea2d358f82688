package tracker

import (
	"context"
	"fmt"
	"time"
)

// Sample fixture used for onboarding and demos.
const (
	SampleGoalTitle    = "Correr 50 km em 30 dias"
	SampleGoalTarget   = 50
	SampleUnit         = "km"
	SampleActivityType = "Corrida"
)

var sampleActivities = []struct {
	daysAgo int
	amount  float64
}{
	{4, 5},
	{3, 7},
	{1, 6},
}

// SampleSize reports how many goals and activities LoadSample appends.
func SampleSize() (goals, activities int) {
	return 1, len(sampleActivities)
}

// LoadSample appends one sample goal and three sample activities dated 4, 3
// and 1 days before now. Existing data is kept.
func (t *Tracker) LoadSample(ctx context.Context) (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now().UTC()
	next := t.snap.Clone()

	goalID, err := t.newID()
	if err != nil {
		return t.snap.Clone(), fmt.Errorf("generate goal id: %w", err)
	}
	next.Goals = append(next.Goals, Goal{
		ID:        goalID,
		Title:     SampleGoalTitle,
		Target:    SampleGoalTarget,
		Unit:      SampleUnit,
		CreatedAt: now,
	})

	for _, s := range sampleActivities {
		id, err := t.newID()
		if err != nil {
			return t.snap.Clone(), fmt.Errorf("generate activity id: %w", err)
		}
		next.Activities = append(next.Activities, Activity{
			ID:        id,
			Type:      SampleActivityType,
			Amount:    s.amount,
			Unit:      SampleUnit,
			Date:      now.Add(-time.Duration(s.daysAgo) * 24 * time.Hour),
			CreatedAt: now,
		})
	}

	if err := t.commit(ctx, next); err != nil {
		return t.snap.Clone(), err
	}
	t.log.Info("sample data loaded")
	return t.snap.Clone(), nil
}
