package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestMeanPool(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []float32
	}{
		{name: "rank 1", payload: `[1, 2, 3]`, want: []float32{1, 2, 3}},
		{name: "rank 2", payload: `[[1, 2], [3, 4]]`, want: []float32{2, 3}},
		{name: "rank 2 single token", payload: `[[5, 6]]`, want: []float32{5, 6}},
		{name: "rank 3 single batch", payload: `[[[1, 0], [3, 2]]]`, want: []float32{2, 1}},
		{name: "rank 3 two batches", payload: `[[[0, 0], [2, 2]], [[4, 4], [6, 6]]]`, want: []float32{3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MeanPool(decode(t, tt.payload))
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-6)
		})
	}
}

func TestMeanPool_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "empty", payload: `[]`},
		{name: "object", payload: `{"error": "model loading"}`},
		{name: "strings", payload: `["a", "b"]`},
		{name: "ragged", payload: `[[1, 2], [3]]`},
		{name: "mixed rank", payload: `[[1, 2], 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MeanPool(decode(t, tt.payload))
			assert.ErrorIs(t, err, ErrInvalidFeatures)
		})
	}
}
