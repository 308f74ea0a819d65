package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Validate_Comparison(t *testing.T) {
	tests := []struct {
		name    string
		filter  *Filter
		wantErr bool
	}{
		{
			name:   "simple equality",
			filter: &Filter{Field: "meta.type", Operator: OpEqual, Value: "article"},
		},
		{
			name:   "in operator with list",
			filter: &Filter{Field: "meta.genre", Operator: OpIn, Value: []any{"economy", "politics"}},
		},
		{
			name:    "unknown operator",
			filter:  &Filter{Field: "meta.type", Operator: "~=", Value: "x"},
			wantErr: true,
		},
		{
			name:    "missing field",
			filter:  &Filter{Operator: OpEqual, Value: "x"},
			wantErr: true,
		},
		{
			name: "comparison with conditions",
			filter: &Filter{
				Field: "meta.type", Operator: OpEqual, Value: "x",
				Conditions: []*Filter{{Field: "a", Operator: OpEqual, Value: 1}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFilter_Validate_Logic(t *testing.T) {
	// Given: a nested logic filter mirroring the pipeline contract docs
	filter := &Filter{
		Operator: OpAnd,
		Conditions: []*Filter{
			{Field: "meta.type", Operator: OpEqual, Value: "article"},
			{Field: "meta.date", Operator: OpGreaterOrEqual, Value: 1420066800},
			{
				Operator: OpOr,
				Conditions: []*Filter{
					{Field: "meta.genre", Operator: OpIn, Value: []any{"economy", "politics"}},
					{Field: "meta.publisher", Operator: OpEqual, Value: "nytimes"},
				},
			},
		},
	}

	assert.NoError(t, filter.Validate())
}

func TestFilter_Validate_LogicWithoutConditions(t *testing.T) {
	filter := &Filter{Operator: OpAnd}
	assert.Error(t, filter.Validate())
}

func TestFilter_Validate_NilMatchesAll(t *testing.T) {
	var filter *Filter
	assert.NoError(t, filter.Validate())
}

func TestFilter_JSONShape(t *testing.T) {
	// Filters travel as nested dictionaries; the wire shape must match the
	// host contract exactly.
	filter := &Filter{
		Operator: OpNot,
		Conditions: []*Filter{
			{Field: "meta.rating", Operator: OpLess, Value: 3},
		},
	}

	data, err := json.Marshal(filter)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"operator":"NOT","conditions":[{"field":"meta.rating","operator":"<","value":3}]}`,
		string(data))
}
