package ops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/errors"
	"github.com/hpungsan/fittrack/internal/tracker"
)

// MaxImportBytes bounds the size of an import file.
const MaxImportBytes = 16 << 20

// ImportMode controls how imported records combine with existing ones.
type ImportMode string

const (
	ImportModeReplace ImportMode = "replace" // default: imported snapshot replaces everything
	ImportModeMerge   ImportMode = "merge"   // append records whose ids are not present yet
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: replace
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Mode     ImportMode     `json:"mode"`
	Imported SnapshotCounts `json:"imported"`
	Skipped  SnapshotCounts `json:"skipped"`
	Counts   SnapshotCounts `json:"counts"`
}

// Import loads an export file. The file is validated as a whole; on any
// problem the tracker is left unchanged.
func Import(ctx context.Context, tr *tracker.Tracker, cfg *config.Config, baseDir string, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeReplace
	}
	if input.Mode != ImportModeReplace && input.Mode != ImportModeMerge {
		return nil, errors.NewInvalidRequest("mode must be one of: replace, merge")
	}

	if err := ValidatePath(input.Path, PathCheckRead, cfg, baseDir); err != nil {
		return nil, err
	}
	format, _ := FormatForPath(input.Path)

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := err.(*errors.FitError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImportBytes+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	if len(data) > MaxImportBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("import file exceeds %d bytes", MaxImportBytes))
	}

	doc, err := decodeDocument(data, format)
	if err != nil {
		return nil, err
	}
	incoming := tracker.Snapshot{Goals: doc.Goals, Activities: doc.Activities}

	out := &ImportOutput{Mode: input.Mode}
	snap, err := tr.Update(ctx, func(current tracker.Snapshot) (tracker.Snapshot, error) {
		next := incoming
		imported, skipped := countsOf(incoming), SnapshotCounts{}
		if input.Mode == ImportModeMerge {
			next, imported, skipped = merge(current, incoming)
		}
		if err := next.Validate(); err != nil {
			return next, errors.NewInvalidRequest(fmt.Sprintf("invalid import file: %v", err))
		}
		out.Imported, out.Skipped = imported, skipped
		return next, nil
	})
	if err != nil {
		if _, ok := err.(*errors.FitError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(err)
	}
	out.Counts = countsOf(snap)
	return out, nil
}

func decodeDocument(data []byte, format ExportFormat) (*ExportDocument, error) {
	var doc ExportDocument
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid YAML: %v", err))
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid JSON: %v", err))
		}
	}
	if !doc.FittrackExport {
		return nil, errors.NewInvalidRequest("not a fittrack export (missing _fittrack_export header)")
	}
	if doc.SchemaVersion != ExportSchemaVersion {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unsupported schema_version %q", doc.SchemaVersion))
	}
	return &doc, nil
}

// merge appends incoming records whose ids are not already present.
func merge(current, incoming tracker.Snapshot) (tracker.Snapshot, SnapshotCounts, SnapshotCounts) {
	next := current.Clone()
	var imported, skipped SnapshotCounts

	goalIDs := make(map[string]bool, len(next.Goals))
	for _, g := range next.Goals {
		goalIDs[g.ID] = true
	}
	for _, g := range incoming.Goals {
		if goalIDs[g.ID] {
			skipped.Goals++
			continue
		}
		goalIDs[g.ID] = true
		next.Goals = append(next.Goals, g)
		imported.Goals++
	}

	activityIDs := make(map[string]bool, len(next.Activities))
	for _, a := range next.Activities {
		activityIDs[a.ID] = true
	}
	for _, a := range incoming.Activities {
		if activityIDs[a.ID] {
			skipped.Activities++
			continue
		}
		activityIDs[a.ID] = true
		next.Activities = append(next.Activities, a)
		imported.Activities++
	}

	return next, imported, skipped
}
