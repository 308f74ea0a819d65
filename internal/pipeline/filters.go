package pipeline

import (
	"fmt"

	"github.com/lexstore/lexstore/internal/errors"
)

// Comparison operators accepted in filter leaves.
const (
	OpEqual          = "=="
	OpNotEqual       = "!="
	OpGreater        = ">"
	OpGreaterOrEqual = ">="
	OpLess           = "<"
	OpLessOrEqual    = "<="
	OpIn             = "in"
	OpNotIn          = "not in"
)

// Logic operators accepted in filter branches.
const (
	OpNot = "NOT"
	OpOr  = "OR"
	OpAnd = "AND"
)

// Filter is a node in the document filter tree. A node is either a
// comparison (Field, Operator, Value) or a logic node (Operator, Conditions).
//
// A simple filter:
//
//	{"field": "meta.type", "operator": "==", "value": "article"}
//
// A logic filter:
//
//	{"operator": "AND", "conditions": [...]}
type Filter struct {
	Field      string    `json:"field,omitempty"`
	Operator   string    `json:"operator"`
	Value      any       `json:"value,omitempty"`
	Conditions []*Filter `json:"conditions,omitempty"`
}

// IsLogic reports whether the node is a logic node.
func (f *Filter) IsLogic() bool {
	switch f.Operator {
	case OpNot, OpOr, OpAnd:
		return true
	}
	return false
}

// Validate checks the structural well-formedness of the filter tree.
// It does not evaluate the filter against any documents.
func (f *Filter) Validate() error {
	if f == nil {
		return nil
	}

	if f.IsLogic() {
		if len(f.Conditions) == 0 {
			return errors.New(errors.ErrCodeInvalidFilter,
				fmt.Sprintf("logic filter %q requires at least one condition", f.Operator), nil)
		}
		if f.Field != "" || f.Value != nil {
			return errors.New(errors.ErrCodeInvalidFilter,
				"logic filter must not carry field or value", nil)
		}
		for _, c := range f.Conditions {
			if c == nil {
				return errors.New(errors.ErrCodeInvalidFilter,
					"filter condition must not be nil", nil)
			}
			if err := c.Validate(); err != nil {
				return err
			}
		}
		return nil
	}

	switch f.Operator {
	case OpEqual, OpNotEqual, OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual, OpIn, OpNotIn:
	default:
		return errors.New(errors.ErrCodeInvalidFilter,
			fmt.Sprintf("unknown filter operator %q", f.Operator), nil)
	}

	if f.Field == "" {
		return errors.New(errors.ErrCodeInvalidFilter,
			"comparison filter requires a field", nil)
	}
	if len(f.Conditions) > 0 {
		return errors.New(errors.ErrCodeInvalidFilter,
			"comparison filter must not carry conditions", nil)
	}
	return nil
}
