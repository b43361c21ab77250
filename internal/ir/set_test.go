package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformSetPreservesOrder(t *testing.T) {
	tf := MustIdentityTransform(
		MustIOSpec("a", "1", "n", "p"),
		MustIOSpec("b", "1", "n", "p"),
	)

	s := NewTransformSet()
	for _, h := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.Add(h, tf))
	}

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, s.Handles())
	assert.Equal(t, 3, s.Len())

	got, ok := s.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, tf, got)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestTransformSetRejectsDuplicates(t *testing.T) {
	tf := MustIdentityTransform(
		MustIOSpec("a", "1", "n", "p"),
		MustIOSpec("b", "1", "n", "p"),
	)
	s := NewTransformSet()
	require.NoError(t, s.Add("h", tf))

	err := s.Add("h", tf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate transform handle")
	assert.Equal(t, 1, s.Len())
}

func TestTransformSetMarshalJSON(t *testing.T) {
	tf := MustIdentityTransform(
		MustIOSpec("a", "1", "n", "p"),
		MustIOSpec("b", "1", "m", "q"),
	)
	s := NewTransformSet()
	require.NoError(t, s.Add("second", tf))
	require.NoError(t, s.Add("first", tf))

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded []struct {
		Handle    string    `json:"handle"`
		Transform Transform `json:"transform"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "second", decoded[0].Handle)
	assert.Equal(t, KindIdentity, decoded[0].Transform.Kind)
	assert.Equal(t, "m", decoded[1].Transform.Outputs[0].Node)
}
