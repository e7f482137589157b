package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePlan(t *testing.T) {
	out, err := EncodePlan([]Instruction{
		{Name: "init-case", Args: []string{"X"}},
		{Name: "data-dictionary"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"init-case","args":["X"]},{"name":"data-dictionary","args":[]}]`, out)
}

func TestDecodePlan(t *testing.T) {
	t.Run("preserves order and arguments", func(t *testing.T) {
		plan, err := DecodePlan(`[{"name":"init-case","args":["X"]},{"name":"owner","args":["A","10%"]}]`)
		require.NoError(t, err)
		assert.Equal(t, []Instruction{
			{Name: "init-case", Args: []string{"X"}},
			{Name: "owner", Args: []string{"A", "10%"}},
		}, plan)
	})

	t.Run("missing args decode as empty", func(t *testing.T) {
		plan, err := DecodePlan(`[{"name":"data-dictionary"}]`)
		require.NoError(t, err)
		assert.Equal(t, []string{}, plan[0].Args)
	})

	t.Run("empty plan", func(t *testing.T) {
		plan, err := DecodePlan(`[]`)
		require.NoError(t, err)
		assert.Empty(t, plan)
	})

	for _, bad := range []string{"invalid json", `{"name":"x"}`, `null`, `[{"name":1}]`, ``} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := DecodePlan(bad)
			assert.Error(t, err)
		})
	}
}
