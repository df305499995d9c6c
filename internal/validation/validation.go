// Package validation enforces the per-task and per-collection invariants
// from the data model: non-negative durations, percent_complete bounds and
// progress-measurement-specific percent sets, rationale weight rules, and
// resource allocation bounds. The schedule engine's UpsertTaskRecord and
// ApplyRationaleTemplate call into this package before an edit becomes
// observable; UpsertTask checks its one applicable rule (non-negative
// duration) itself.
package validation

import (
	"fmt"
	"math"

	"github.com/cpmforge/scheduler/internal/task"
)

// Error names the offending task and the violated rule. It wraps cleanly
// with fmt.Errorf("%w", ...) and is recoverable via errors.As.
type Error struct {
	TaskID  int32
	Message string
}

func (e *Error) Error() string { return e.Message }

func newErr(taskID int32, format string, args ...interface{}) *Error {
	return &Error{TaskID: taskID, Message: fmt.Sprintf(format, args...)}
}

// ValidateTask checks a single task against every invariant in §3 that can
// be determined without looking at the rest of the schedule.
func ValidateTask(t *task.Task) error {
	if t.DurationDays < 0 {
		return newErr(t.ID, "task %d has negative duration %d", t.ID, t.DurationDays)
	}

	if t.PercentComplete != nil {
		pct := *t.PercentComplete
		if math.IsNaN(pct) || math.IsInf(pct, 0) || pct < -task.Epsilon() || pct > 1+task.Epsilon() {
			return newErr(t.ID, "task %d has invalid percent_complete %v (must be between 0 and 1)", t.ID, pct)
		}
		if allowed, closed := task.AllowedPercents(t.ProgressMeasurement); closed {
			if !containsApprox(allowed, pct) {
				return newErr(t.ID, "task %d progress_measurement=%s requires percent_complete of %s (got %v)",
					t.ID, t.ProgressMeasurement, describeAllowed(allowed), pct)
			}
		}
	}

	if t.ProgressMeasurement == task.PreDefinedRationale {
		if err := validateRationale(t); err != nil {
			return err
		}
	}

	for idx, alloc := range t.ResourceAllocations {
		if alloc.ResourceID == "" {
			return newErr(t.ID, "task %d resource allocation #%d requires a non-empty resource_id", t.ID, idx)
		}
		if !finiteNonNegative(alloc.AllocationUnits) {
			return newErr(t.ID, "task %d resource allocation #%d has invalid allocation_units %v", t.ID, idx, alloc.AllocationUnits)
		}
		if alloc.CostRate != nil && !finiteNonNegative(*alloc.CostRate) {
			return newErr(t.ID, "task %d resource allocation #%d has invalid cost_rate %v", t.ID, idx, *alloc.CostRate)
		}
	}

	return nil
}

func validateRationale(t *task.Task) error {
	items := t.PreDefinedRationale
	if len(items) == 0 {
		return newErr(t.ID, "task %d progress_measurement=pre_defined_rationale requires at least one rationale item", t.ID)
	}
	seen := make(map[int32]bool, len(items))
	var total float64
	for _, item := range items {
		if math.IsNaN(item.Weight) || math.IsInf(item.Weight, 0) {
			return newErr(t.ID, "task %d has non-finite rationale weight for '%s'", t.ID, item.Name)
		}
		if item.Weight < 0 {
			return newErr(t.ID, "task %d has negative rationale weight for '%s'", t.ID, item.Name)
		}
		if seen[item.ID] {
			return newErr(t.ID, "task %d has duplicate rationale id %d", t.ID, item.ID)
		}
		seen[item.ID] = true
		total += item.Weight
	}
	if !task.ApproxEqual(total, 1.0) {
		return newErr(t.ID, "task %d rationale weights must sum to 1.0 (got %.4f)", t.ID, total)
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -task.Epsilon()
}

func containsApprox(values []float64, v float64) bool {
	for _, candidate := range values {
		if task.ApproxEqual(candidate, v) {
			return true
		}
	}
	return false
}

func describeAllowed(values []float64) string {
	switch len(values) {
	case 2:
		return "0 or 1"
	case 3:
		return "0, 0.5, or 1"
	default:
		return "0, 0.25, 0.75, or 1"
	}
}

// ValidateTaskCollection enforces every per-task rule plus global
// uniqueness of ids across ts.
func ValidateTaskCollection(ts []*task.Task) error {
	seen := make(map[int32]bool, len(ts))
	for _, t := range ts {
		if seen[t.ID] {
			return newErr(t.ID, "duplicate task id %d", t.ID)
		}
		seen[t.ID] = true
		if err := ValidateTask(t); err != nil {
			return err
		}
	}
	return nil
}
