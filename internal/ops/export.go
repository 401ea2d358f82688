package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/errors"
	"github.com/hpungsan/fittrack/internal/tracker"
)

// ExportFormat is the on-disk encoding of an export file.
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
)

// ExportSchemaVersion is written into every export document.
const ExportSchemaVersion = "1"

// ExportDocument is the portable form of a snapshot.
type ExportDocument struct {
	FittrackExport bool               `json:"_fittrack_export" yaml:"_fittrack_export"`
	SchemaVersion  string             `json:"schema_version" yaml:"schema_version"`
	ExportedAt     time.Time          `json:"exported_at" yaml:"exported_at"`
	Goals          []tracker.Goal     `json:"goals" yaml:"goals"`
	Activities     []tracker.Activity `json:"activities" yaml:"activities"`
}

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path   string       // optional, default: <base>/exports/fittrack-<timestamp>.<ext>
	Format ExportFormat // optional; inferred from Path, else json
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string         `json:"path"`
	Format     ExportFormat   `json:"format"`
	Counts     SnapshotCounts `json:"counts"`
	ExportedAt time.Time      `json:"exported_at"`
}

// FormatForPath infers the format from a file extension.
func FormatForPath(path string) (ExportFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Export writes the full snapshot to a JSON or YAML file.
func Export(ctx context.Context, tr *tracker.Tracker, cfg *config.Config, baseDir string, input ExportInput) (*ExportOutput, error) {
	now := tr.Now().UTC()

	format := input.Format
	if format != "" && format != FormatJSON && format != FormatYAML {
		return nil, errors.NewInvalidRequest("format must be one of: json, yaml")
	}

	exportPath := input.Path
	if exportPath == "" {
		if format == "" {
			format = FormatJSON
		}
		exportPath = defaultExportPath(baseDir, format, now)
	} else {
		inferred, ok := FormatForPath(exportPath)
		if ok && format == "" {
			format = inferred
		}
		if ok && format != inferred {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("format %s does not match extension of %s", format, exportPath))
		}
	}

	if err := ValidatePath(exportPath, PathCheckWrite, cfg, baseDir); err != nil {
		return nil, err
	}

	snap := tr.Snapshot()
	doc := ExportDocument{
		FittrackExport: true,
		SchemaVersion:  ExportSchemaVersion,
		ExportedAt:     now,
		Goals:          snap.Goals,
		Activities:     snap.Activities,
	}
	data, err := encodeDocument(doc, format)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	select {
	case <-ctx.Done():
		return nil, errors.NewInternal(ctx.Err())
	default:
	}

	if err := writeFileAtomic(exportPath, data); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       exportPath,
		Format:     format,
		Counts:     countsOf(snap),
		ExportedAt: now,
	}, nil
}

func encodeDocument(doc ExportDocument, format ExportFormat) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// writeFileAtomic writes to a temp file beside dest and renames it into
// place, so an existing file survives any failure.
func writeFileAtomic(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := dest + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		if _, ok := err.(*errors.FitError); ok {
			return err
		}
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(dest); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path is a symlink")
	}

	// On Windows os.Rename fails when dest exists; the existing file is kept.
	if err := os.Rename(tempPath, dest); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(dest); statErr == nil {
				return errors.NewConflict("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// defaultExportPath returns <base>/exports/fittrack-<timestamp>.<ext>.
func defaultExportPath(baseDir string, format ExportFormat, now time.Time) string {
	filename := fmt.Sprintf("fittrack-%s.%s", now.Format("2006-01-02T150405"), format)
	return filepath.Join(ExportsDir(baseDir), filename)
}
