package tracker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 6, 1, 23, 45, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"blank means today", "", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), false},
		{"date only", "2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"minutes", "2024-01-01T08:00", time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), false},
		{"seconds", "2024-01-01T08:00:30", time.Date(2024, 1, 1, 8, 0, 30, 0, time.UTC), false},
		{"rfc3339 with zone", "2024-01-01T08:00:00+02:00", time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC), false},
		{"garbage", "last tuesday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input, now)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
			require.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestDay(t *testing.T) {
	require.Equal(t, "2024-01-01", Day(time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)))
	// 23:30 at UTC-3 is already the next UTC day
	loc := time.FixedZone("BRT", -3*3600)
	require.Equal(t, "2024-01-02", Day(time.Date(2024, 1, 1, 23, 30, 0, 0, loc)))
}

func TestSnapshotJSON_FieldNames(t *testing.T) {
	snap := Snapshot{
		Goals: []Goal{{ID: "g1", Title: "Run", Target: 50, Unit: "km", CreatedAt: fixedNow}},
		Activities: []Activity{{ID: "a1", Type: "Corrida", Amount: 5, Unit: "km",
			Date: fixedNow, CreatedAt: fixedNow}},
	}
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var raw map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	goalKeys := keys(raw["goals"][0])
	require.ElementsMatch(t, []string{"id", "title", "target", "unit", "createdAt"}, goalKeys)
	activityKeys := keys(raw["activities"][0])
	require.ElementsMatch(t, []string{"id", "type", "amount", "unit", "date", "createdAt"}, activityKeys)
}

func TestSnapshotJSON_LegacyProgressIgnored(t *testing.T) {
	legacy := `{"goals":[{"id":"g1","title":"Run","target":50,"unit":"km","progress":0,
		"createdAt":"2024-01-01T00:00:00.000Z"}],"activities":[]}`

	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(legacy), &snap))
	require.Len(t, snap.Goals, 1)
	require.NoError(t, snap.Validate())
}

func TestValidate(t *testing.T) {
	ok := Snapshot{
		Goals:      []Goal{{ID: "g1", Title: "", Target: 1}},
		Activities: []Activity{{ID: "a1", Type: "Run", Amount: 1}},
	}
	require.NoError(t, ok.Validate(), "empty goal title is allowed")

	tests := []struct {
		name string
		snap Snapshot
	}{
		{"goal without id", Snapshot{Goals: []Goal{{Title: "x", Target: 1}}}},
		{"duplicate goal", Snapshot{Goals: []Goal{{ID: "g", Target: 1}, {ID: "g", Target: 1}}}},
		{"zero target", Snapshot{Goals: []Goal{{ID: "g", Target: 0}}}},
		{"activity without type", Snapshot{Activities: []Activity{{ID: "a", Amount: 1}}}},
		{"duplicate activity", Snapshot{Activities: []Activity{
			{ID: "a", Type: "Run", Amount: 1}, {ID: "a", Type: "Run", Amount: 1}}}},
		{"negative amount", Snapshot{Activities: []Activity{{ID: "a", Type: "Run", Amount: -1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.snap.Validate())
		})
	}
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
