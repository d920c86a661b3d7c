package ai

import (
	"errors"
	"fmt"
)

// ErrInvalidFeatures indicates a feature tensor that cannot be pooled to a vector.
var ErrInvalidFeatures = errors.New("invalid feature tensor")

// MeanPool reduces a decoded feature-extraction payload to a single vector.
//
// features is the generic JSON decoding of a rank-1, rank-2 or rank-3 numeric
// array ([]any nesting of float64). A rank-3 tensor [batch][tokens][hidden] is
// averaged over the token axis and then over the batch axis; a rank-2 tensor
// [tokens][hidden] is averaged over the token axis; a rank-1 tensor is returned as is.
func MeanPool(features any) ([]float32, error) {
	rows, err := toMatrix(features)
	if err != nil {
		return nil, err
	}
	return meanRows(rows), nil
}

// toMatrix flattens a tensor to the rows that are averaged.
// Rank-3 input yields one pooled row per batch element.
func toMatrix(features any) ([][]float32, error) {
	outer, ok := features.([]any)
	if !ok || len(outer) == 0 {
		return nil, fmt.Errorf("%w: expected non-empty array", ErrInvalidFeatures)
	}

	switch first := outer[0].(type) {
	case float64:
		vec, err := toVector(outer)
		if err != nil {
			return nil, err
		}
		return [][]float32{vec}, nil
	case []any:
		if len(first) > 0 {
			if _, nested := first[0].([]any); nested {
				// rank 3: pool each batch element over its tokens first
				rows := make([][]float32, 0, len(outer))
				for _, batch := range outer {
					inner, err := toMatrix(batch)
					if err != nil {
						return nil, err
					}
					rows = append(rows, meanRows(inner))
				}
				if err := checkWidths(rows); err != nil {
					return nil, err
				}
				return rows, nil
			}
		}
		rows := make([][]float32, 0, len(outer))
		for _, row := range outer {
			vals, ok := row.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: mixed rank", ErrInvalidFeatures)
			}
			vec, err := toVector(vals)
			if err != nil {
				return nil, err
			}
			rows = append(rows, vec)
		}
		if err := checkWidths(rows); err != nil {
			return nil, err
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: unexpected element %T", ErrInvalidFeatures, first)
	}
}

func toVector(vals []any) ([]float32, error) {
	if len(vals) == 0 {
		return nil, fmt.Errorf("%w: empty vector", ErrInvalidFeatures)
	}
	vec := make([]float32, len(vals))
	for i, v := range vals {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: non-numeric element %T", ErrInvalidFeatures, v)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}

func checkWidths(rows [][]float32) error {
	for _, row := range rows[1:] {
		if len(row) != len(rows[0]) {
			return fmt.Errorf("%w: ragged rows", ErrInvalidFeatures)
		}
	}
	return nil
}

// meanRows averages equal-width rows column-wise.
func meanRows(rows [][]float32) []float32 {
	if len(rows) == 1 {
		return rows[0]
	}
	sums := make([]float64, len(rows[0]))
	for _, row := range rows {
		for i, v := range row {
			sums[i] += float64(v)
		}
	}
	out := make([]float32, len(sums))
	n := float64(len(rows))
	for i, s := range sums {
		out[i] = float32(s / n)
	}
	return out
}
