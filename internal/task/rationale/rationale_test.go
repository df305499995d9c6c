package rationale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllRegisteredTemplatesApplyWithoutPanicking(t *testing.T) {
	for _, name := range Names() {
		items, err := Apply(name)
		require.NoError(t, err, name)
		require.NotEmpty(t, items, name)

		var total float64
		for _, item := range items {
			total += item.Weight
		}
		assert.InDelta(t, 1.0, total, 1e-9, "%s weights must sum to 1.0", name)
	}
}

func TestNotStartedCompleteWeights(t *testing.T) {
	items, err := Apply("not_started_complete")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0.0, items[0].Weight)
	assert.Equal(t, 1.0, items[1].Weight)
}

func TestApplyUnknownTemplateErrors(t *testing.T) {
	_, err := Apply("does_not_exist")
	assert.Error(t, err)
}
