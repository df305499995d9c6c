package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cpmforge/scheduler/internal/task"
)

func pct(v float64) *float64 { return &v }

func TestValidateTaskRejectsNegativeDuration(t *testing.T) {
	tk := task.New(1, "T1", -1)
	err := ValidateTask(tk)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "negative duration")
}

func TestValidateTaskEnforcesProgressMeasurementSets(t *testing.T) {
	tk := task.New(1, "T1", 5)
	tk.ProgressMeasurement = task.ZeroOneHundred
	tk.PercentComplete = pct(0.3)
	assert.Error(t, ValidateTask(tk))

	tk.PercentComplete = pct(1)
	assert.NoError(t, ValidateTask(tk))

	tk.ProgressMeasurement = task.FiftyFifty
	tk.PercentComplete = pct(0.5)
	assert.NoError(t, ValidateTask(tk))

	tk.ProgressMeasurement = task.TwentyFiveSeventyFive
	tk.PercentComplete = pct(0.25)
	assert.NoError(t, ValidateTask(tk))

	tk.PercentComplete = pct(0.6)
	assert.Error(t, ValidateTask(tk))
}

func TestValidateTaskAllowsAnyPercentForPercentComplete(t *testing.T) {
	tk := task.New(1, "T1", 5)
	tk.ProgressMeasurement = task.PercentComplete
	tk.PercentComplete = pct(0.42)
	assert.NoError(t, ValidateTask(tk))
}

func TestValidateTaskPreDefinedRationale(t *testing.T) {
	tk := task.New(1, "T1", 5)
	tk.ProgressMeasurement = task.PreDefinedRationale

	err := ValidateTask(tk)
	assert.ErrorContains(t, err, "at least one rationale item")

	tk.PreDefinedRationale = []task.RationaleItem{
		{ID: 1, Name: "a", Weight: 0.5},
		{ID: 1, Name: "b", Weight: 0.5},
	}
	assert.ErrorContains(t, ValidateTask(tk), "duplicate rationale id")

	tk.PreDefinedRationale = []task.RationaleItem{
		{ID: 1, Name: "a", Weight: 0.5},
		{ID: 2, Name: "b", Weight: 0.2},
	}
	assert.ErrorContains(t, ValidateTask(tk), "must sum to 1.0")

	tk.PreDefinedRationale = []task.RationaleItem{
		{ID: 1, Name: "a", Weight: 0.5},
		{ID: 2, Name: "b", Weight: 0.5},
	}
	assert.NoError(t, ValidateTask(tk))
}

func TestValidateTaskResourceAllocations(t *testing.T) {
	tk := task.New(1, "T1", 5)
	tk.ResourceAllocations = []task.ResourceAllocation{{ResourceID: "", AllocationUnits: 1}}
	assert.ErrorContains(t, ValidateTask(tk), "non-empty resource_id")

	tk.ResourceAllocations = []task.ResourceAllocation{{ResourceID: "crew-1", AllocationUnits: -1}}
	assert.ErrorContains(t, ValidateTask(tk), "invalid allocation_units")

	negRate := -5.0
	tk.ResourceAllocations = []task.ResourceAllocation{{ResourceID: "crew-1", AllocationUnits: 1, CostRate: &negRate}}
	assert.ErrorContains(t, ValidateTask(tk), "invalid cost_rate")
}

func TestValidateTaskCollectionRejectsDuplicateIDs(t *testing.T) {
	ts := []*task.Task{task.New(1, "A", 1), task.New(1, "B", 2)}
	assert.ErrorContains(t, ValidateTaskCollection(ts), "duplicate task id")
}
