package filter

import (
	"encoding/json"
	"fmt"
)

// MaxConditions is the maximum number of conditions per filter.
const MaxConditions = 32

// OperatorAnd is the default combining operator.
const OperatorAnd = "AND"

// Filter is an ordered set of conditions joined by a single operator.
// A filter built without an explicit operator omits it on the wire and the
// API applies AND.
type Filter struct {
	operator   string
	conditions []Condition
}

// New validates and creates a Filter with an explicit operator.
// An empty operator defaults to AND.
func New(operator string, conditions ...Condition) (Filter, error) {
	if operator == "" {
		operator = OperatorAnd
	}
	if operator != OperatorAnd && operator != "OR" {
		return Filter{}, fmt.Errorf("unsupported filter operator %q", operator)
	}
	if err := checkLen(conditions); err != nil {
		return Filter{}, err
	}
	return Filter{operator: operator, conditions: conditions}, nil
}

// NewImplicit creates a Filter that renders only its conditions.
func NewImplicit(conditions ...Condition) (Filter, error) {
	if err := checkLen(conditions); err != nil {
		return Filter{}, err
	}
	return Filter{conditions: conditions}, nil
}

func checkLen(conditions []Condition) error {
	if len(conditions) > MaxConditions {
		return fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	return nil
}

// Operator returns the combining operator.
func (f Filter) Operator() string {
	if f.operator == "" {
		return OperatorAnd
	}
	return f.operator
}

// HasExplicitOperator reports whether the operator is sent on the wire.
func (f Filter) HasExplicitOperator() bool { return f.operator != "" }

// Conditions returns the conditions in insertion order.
func (f Filter) Conditions() []Condition { return f.conditions }

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool { return len(f.conditions) == 0 }

// MarshalJSON renders the ReliefWeb filter object. Conditions is always an array.
func (f Filter) MarshalJSON() ([]byte, error) {
	conds := f.conditions
	if conds == nil {
		conds = []Condition{}
	}
	return json.Marshal(struct {
		Operator   string      `json:"operator,omitempty"`
		Conditions []Condition `json:"conditions"`
	}{f.operator, conds})
}

// Condition is a single filter clause: a field with either a scalar value or a range.
type Condition struct {
	field     string
	value     string
	rangeExpr *Range
}

// NewValue creates a scalar match condition.
func NewValue(field, value string) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	return Condition{field: field, value: value}, nil
}

// NewRange creates a from/to range condition.
func NewRange(field string, r Range) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	return Condition{field: field, rangeExpr: &r}, nil
}

// Field returns the field name.
func (c Condition) Field() string { return c.field }

// Value returns the scalar value (empty for range conditions).
func (c Condition) Value() string { return c.value }

// Range returns the range expression (nil for scalar conditions).
func (c Condition) Range() *Range { return c.rangeExpr }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// MarshalJSON renders {"field": ..., "value": scalar-or-range}.
func (c Condition) MarshalJSON() ([]byte, error) {
	var value any = c.value
	if c.rangeExpr != nil {
		value = c.rangeExpr
	}
	return json.Marshal(struct {
		Field string `json:"field"`
		Value any    `json:"value"`
	}{c.field, value})
}

// Range is an inclusive from/to interval. Bounds are passed through verbatim.
type Range struct {
	From string `json:"from"`
	To   string `json:"to"`
}
