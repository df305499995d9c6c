package task

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsEmptySlicesNonNil(t *testing.T) {
	original := New(1, "Survey", 2)
	clone := original.Clone()

	assert.NotNil(t, clone.Predecessors)
	assert.NotNil(t, clone.Successors)
	assert.NotNil(t, clone.PreDefinedRationale)
	assert.NotNil(t, clone.TaskAttachments)
	assert.NotNil(t, clone.ResourceAllocations)

	data, err := json.Marshal(clone)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"predecessors":[]`)
	assert.Contains(t, string(data), `"successors":[]`)
	assert.Contains(t, string(data), `"pre_defined_rationale":[]`)
	assert.Contains(t, string(data), `"task_attachments":[]`)
	assert.Contains(t, string(data), `"resource_allocations":[]`)
}

func TestCloneOfNilSliceStaysNil(t *testing.T) {
	original := New(1, "Survey", 2)
	original.Predecessors = nil
	clone := original.Clone()
	assert.Nil(t, clone.Predecessors)
}

func TestCloneDoesNotAliasSlices(t *testing.T) {
	original := New(1, "Survey", 2)
	original.Predecessors = []int32{2, 3}
	clone := original.Clone()
	clone.Predecessors[0] = 99
	assert.Equal(t, int32(2), original.Predecessors[0])
}
