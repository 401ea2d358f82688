// Package storage persists tracker snapshots in a key-value slot.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hpungsan/fittrack/internal/logger"
	"github.com/hpungsan/fittrack/internal/tracker"
)

// SlotKey is the fixed namespace key holding the snapshot.
const SlotKey = "fittrack_data_v1"

// Backend is a durable key-value store.
type Backend interface {
	// Get returns the value under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put overwrites the value under key.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Adapter implements tracker.Persister over a Backend slot.
type Adapter struct {
	backend Backend
	key     string
	log     logger.Logger
}

// NewAdapter returns an Adapter using SlotKey.
func NewAdapter(b Backend, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.Nop()
	}
	return &Adapter{backend: b, key: SlotKey, log: log.With(logger.String("slot", SlotKey))}
}

// Load returns the stored snapshot. Absent, unparsable or structurally
// invalid data yields tracker.Empty(); nothing is partially recovered.
// Only a failure to read the slot is returned as an error.
func (a *Adapter) Load(ctx context.Context) (tracker.Snapshot, error) {
	raw, ok, err := a.backend.Get(ctx, a.key)
	if err != nil {
		return tracker.Snapshot{}, err
	}
	if !ok || len(raw) == 0 {
		a.log.Debug("no stored snapshot, starting empty")
		return tracker.Empty(), nil
	}

	snap, err := Decode(raw)
	if err != nil {
		a.log.Warn("discarding unreadable snapshot", logger.Error(err), logger.Int("bytes", len(raw)))
		return tracker.Empty(), nil
	}
	return snap, nil
}

// Save writes the full snapshot, replacing any previous value.
func (a *Adapter) Save(ctx context.Context, snap tracker.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	return a.backend.Put(ctx, a.key, data)
}

// Close releases the backend.
func (a *Adapter) Close() error {
	return a.backend.Close()
}

// Encode serializes a snapshot as JSON.
func Encode(snap tracker.Snapshot) ([]byte, error) {
	if snap.Goals == nil {
		snap.Goals = []tracker.Goal{}
	}
	if snap.Activities == nil {
		snap.Activities = []tracker.Activity{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses and validates a JSON snapshot.
func Decode(raw []byte) (tracker.Snapshot, error) {
	var snap tracker.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return tracker.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return tracker.Snapshot{}, fmt.Errorf("invalid snapshot: %w", err)
	}
	if snap.Goals == nil {
		snap.Goals = []tracker.Goal{}
	}
	if snap.Activities == nil {
		snap.Activities = []tracker.Activity{}
	}
	return snap, nil
}
