// Package ops is the operation layer shared by the CLI, MCP and web surfaces.
// Each operation validates its input, drives the tracker and maps the result
// onto a FitError when the mutation did not apply.
package ops

import (
	"strings"

	"github.com/hpungsan/fittrack/internal/aggregate"
	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/errors"
	"github.com/hpungsan/fittrack/internal/view"
)

// Limits
const (
	MaxRecentLimit = 100
	MaxTitleLength = 200
)

// SnapshotCounts summarizes a snapshot after a mutation.
type SnapshotCounts struct {
	Goals      int `json:"goals"`
	Activities int `json:"activities"`
}

// policyFor resolves the configured match policy. An unreadable value falls
// back to the unit policy since config.Validate already rejects it at load.
func policyFor(cfg *config.Config) aggregate.Policy {
	if cfg == nil {
		return aggregate.PolicyUnit
	}
	p, err := aggregate.ParsePolicy(cfg.MatchPolicy)
	if err != nil {
		return aggregate.PolicyUnit
	}
	return p
}

// resolvePolicy lets a caller override the configured policy per request.
func resolvePolicy(cfg *config.Config, override string) (aggregate.Policy, error) {
	if strings.TrimSpace(override) == "" {
		return policyFor(cfg), nil
	}
	p, err := aggregate.ParsePolicy(override)
	if err != nil {
		return "", errors.NewInvalidRequest("policy must be one of: unit, keyword")
	}
	return p, nil
}

// recentLimitFor returns the requested limit, or the configured one, clamped.
func recentLimitFor(cfg *config.Config, requested int) (int, error) {
	if requested < 0 {
		return 0, errors.NewInvalidRequest("limit must not be negative")
	}
	limit := requested
	if limit == 0 && cfg != nil {
		limit = cfg.RecentLimit
	}
	if limit <= 0 {
		limit = view.DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	return limit, nil
}

func requireID(id, field string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest(field + " is required")
	}
	return id, nil
}
