package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hpungsan/fittrack/internal/logger"
)

// Persister is the durable key-value slot holding the snapshot.
// Load returns the empty default for missing or unparsable data and only
// fails when the slot itself cannot be read.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Tracker owns the live snapshot and is the only mutation surface.
// Every applied mutation is persisted before it becomes visible; when the save
// fails the previous snapshot stays in place.
// Validation failures and id misses are not errors: they return a nil entity
// (or false) and leave both memory and storage untouched.
type Tracker struct {
	mu    sync.Mutex
	store Persister
	now   func() time.Time
	newID IDFunc
	log   logger.Logger
	snap  Snapshot
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDs overrides the ULID generator.
func WithIDs(f IDFunc) Option {
	return func(t *Tracker) { t.newID = f }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// Open loads the persisted snapshot and returns a Tracker over it.
func Open(ctx context.Context, store Persister, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		store: store,
		now:   time.Now,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.newID == nil {
		t.newID = NewULIDSource(t.now)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	t.snap = snap.normalized()
	t.log.Debug("tracker opened",
		logger.Int("goals", len(t.snap.Goals)),
		logger.Int("activities", len(t.snap.Activities)))
	return t, nil
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap.Clone()
}

// Now returns the tracker's clock reading.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// AddGoal creates a goal. It returns a nil goal when title is blank or target
// is not a positive number.
func (t *Tracker) AddGoal(ctx context.Context, title string, target float64, unit string) (*Goal, Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	title = strings.TrimSpace(title)
	if title == "" || !isPositive(target) {
		return nil, t.snap.Clone(), nil
	}

	id, err := t.newID()
	if err != nil {
		return nil, t.snap.Clone(), fmt.Errorf("generate goal id: %w", err)
	}
	g := Goal{
		ID:        id,
		Title:     title,
		Target:    target,
		Unit:      unitOrDefault(unit),
		CreatedAt: t.now().UTC(),
	}

	next := t.snap.Clone()
	next.Goals = append(next.Goals, g)
	if err := t.commit(ctx, next); err != nil {
		return nil, t.snap.Clone(), err
	}
	t.log.Info("goal added", logger.String("id", g.ID), logger.String("unit", g.Unit))
	return &g, t.snap.Clone(), nil
}

// AddActivity logs an activity. date is normalized with ParseDate; a blank
// date means today. It returns a nil activity when activityType is blank,
// amount is not positive or date cannot be parsed.
func (t *Tracker) AddActivity(ctx context.Context, activityType string, amount float64, unit, date string) (*Activity, Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	activityType = strings.TrimSpace(activityType)
	if activityType == "" || !isPositive(amount) {
		return nil, t.snap.Clone(), nil
	}
	now := t.now()
	when, err := ParseDate(date, now)
	if err != nil {
		t.log.Debug("activity rejected", logger.Error(err))
		return nil, t.snap.Clone(), nil
	}

	id, err := t.newID()
	if err != nil {
		return nil, t.snap.Clone(), fmt.Errorf("generate activity id: %w", err)
	}
	a := Activity{
		ID:        id,
		Type:      activityType,
		Amount:    amount,
		Unit:      unitOrDefault(unit),
		Date:      when,
		CreatedAt: now.UTC(),
	}

	next := t.snap.Clone()
	next.Activities = append(next.Activities, a)
	if err := t.commit(ctx, next); err != nil {
		return nil, t.snap.Clone(), err
	}
	t.log.Info("activity added", logger.String("id", a.ID), logger.String("day", Day(a.Date)))
	return &a, t.snap.Clone(), nil
}

// RemoveGoal deletes a goal by id. Activities are never touched.
func (t *Tracker) RemoveGoal(ctx context.Context, id string) (bool, Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.snap.Clone()
	kept := next.Goals[:0]
	for _, g := range next.Goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(t.snap.Goals) {
		return false, t.snap.Clone(), nil
	}
	next.Goals = kept

	if err := t.commit(ctx, next); err != nil {
		return false, t.snap.Clone(), err
	}
	t.log.Info("goal removed", logger.String("id", id))
	return true, t.snap.Clone(), nil
}

// RemoveActivity deletes an activity by id. Goals are never touched.
func (t *Tracker) RemoveActivity(ctx context.Context, id string) (bool, Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.snap.Clone()
	kept := next.Activities[:0]
	for _, a := range next.Activities {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(t.snap.Activities) {
		return false, t.snap.Clone(), nil
	}
	next.Activities = kept

	if err := t.commit(ctx, next); err != nil {
		return false, t.snap.Clone(), err
	}
	t.log.Info("activity removed", logger.String("id", id))
	return true, t.snap.Clone(), nil
}

// EditGoalTitle replaces a goal's title. A nil title is a no-op; the empty
// string is accepted as a replacement.
func (t *Tracker) EditGoalTitle(ctx context.Context, id string, title *string) (bool, Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if title == nil {
		return false, t.snap.Clone(), nil
	}

	next := t.snap.Clone()
	found := false
	for i := range next.Goals {
		if next.Goals[i].ID == id {
			next.Goals[i].Title = *title
			found = true
			break
		}
	}
	if !found {
		return false, t.snap.Clone(), nil
	}

	if err := t.commit(ctx, next); err != nil {
		return false, t.snap.Clone(), err
	}
	t.log.Info("goal renamed", logger.String("id", id))
	return true, t.snap.Clone(), nil
}

// ClearAll resets to the empty default snapshot and returns the snapshot it
// discarded. On a failed save nothing is discarded and the zero Snapshot is
// returned.
func (t *Tracker) ClearAll(ctx context.Context) (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.snap
	if err := t.commit(ctx, Empty()); err != nil {
		return Snapshot{}, err
	}
	t.log.Info("tracker cleared",
		logger.Int("goals", len(prev.Goals)),
		logger.Int("activities", len(prev.Activities)))
	return prev.Clone(), nil
}

// ReplaceAll swaps in a complete snapshot after validating it.
func (t *Tracker) ReplaceAll(ctx context.Context, snap Snapshot) (Snapshot, error) {
	return t.Update(ctx, func(Snapshot) (Snapshot, error) {
		return snap.Clone(), nil
	})
}

// Update derives the next snapshot from the current one and commits it while
// holding the lock, so no other mutation can land in between. fn receives a
// copy. When fn fails, or its result does not validate, nothing changes and
// the error is returned as is.
func (t *Tracker) Update(ctx context.Context, fn func(current Snapshot) (Snapshot, error)) (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, err := fn(t.snap.Clone())
	if err != nil {
		return t.snap.Clone(), err
	}
	next = next.normalized()
	if err := next.Validate(); err != nil {
		return t.snap.Clone(), err
	}
	if err := t.commit(ctx, next.Clone()); err != nil {
		return t.snap.Clone(), err
	}
	t.log.Info("snapshot replaced",
		logger.Int("goals", len(next.Goals)),
		logger.Int("activities", len(next.Activities)))
	return t.snap.Clone(), nil
}

// commit persists next and, on success, makes it the live snapshot.
// Must be called with t.mu held.
func (t *Tracker) commit(ctx context.Context, next Snapshot) error {
	if err := t.store.Save(ctx, next); err != nil {
		t.log.Error("save failed, keeping previous snapshot", logger.Error(err))
		return fmt.Errorf("save snapshot: %w", err)
	}
	t.snap = next
	return nil
}

func unitOrDefault(unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return DefaultUnit
	}
	return unit
}
