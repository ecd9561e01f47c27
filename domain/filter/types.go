package filter

// Operator identifies a filter predicate
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpContains     Operator = "contains"
	OpStartsWith   Operator = "startsWith"
	OpEndsWith     Operator = "endsWith"
	OpBetween      Operator = "between"
	OpIsTrue       Operator = "==true"
	OpIsFalse      Operator = "==false"
)

// Condition is a single column/operator/value predicate.
// Value2 is only read by the between operator.
type Condition struct {
	Column   string      `json:"column" db:"column_name"`
	Operator Operator    `json:"operator" db:"operator"`
	Value    interface{} `json:"value"`
	Value2   interface{} `json:"value2,omitempty"`
}

// OperatorOption is an entry of the operator menu offered for a column type
type OperatorOption struct {
	Label string   `json:"label"`
	Value Operator `json:"value"`
}

// Known reports whether the operator is one the evaluator understands
func (o Operator) Known() bool {
	switch o {
	case OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual,
		OpContains, OpStartsWith, OpEndsWith, OpBetween, OpIsTrue, OpIsFalse:
		return true
	}
	return false
}
