package aggregation

import (
	"fmt"
	"strings"
)

// Function is a reducer applied to each group's numeric values
type Function string

const (
	FuncSum     Function = "sum"
	FuncCount   Function = "count"
	FuncAverage Function = "average"
	FuncMin     Function = "min"
	FuncMax     Function = "max"
)

// Functions lists the supported reducers in menu order
var Functions = []Function{FuncSum, FuncCount, FuncAverage, FuncMin, FuncMax}

// Label returns the display label of the function
func (f Function) Label() string {
	switch f {
	case FuncCount:
		return "Count"
	case FuncAverage:
		return "Average"
	case FuncMin:
		return "Min"
	case FuncMax:
		return "Max"
	default:
		return "Sum"
	}
}

// ParseFunction validates a user-supplied function name
func ParseFunction(s string) (Function, error) {
	f := Function(strings.ToLower(strings.TrimSpace(s)))
	if f == "avg" || f == "mean" {
		return FuncAverage, nil
	}
	for _, known := range Functions {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported aggregation function: %q", s)
}

// Spec selects the grouping column, the value column and the reducer
type Spec struct {
	GroupColumn string   `json:"groupColumn"`
	ValueColumn string   `json:"valueColumn"`
	Function    Function `json:"function"`
}

// Group is one aggregated bucket
type Group struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Result is an insertion-ordered map from group key to aggregated value
type Result struct {
	Groups []Group `json:"groups"`
	index  map[string]int
}

// NewResult builds a result from groups, keeping their order
func NewResult(groups []Group) Result {
	r := Result{Groups: make([]Group, 0, len(groups)), index: make(map[string]int, len(groups))}
	for _, g := range groups {
		r.Set(g.Key, g.Value)
	}
	return r
}

// Set stores a value, appending the key on first encounter
func (r *Result) Set(key string, value float64) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[key]; ok {
		r.Groups[i].Value = value
		return
	}
	r.index[key] = len(r.Groups)
	r.Groups = append(r.Groups, Group{Key: key, Value: value})
}

// Get returns the value of a group
func (r Result) Get(key string) (float64, bool) {
	if r.index == nil {
		for _, g := range r.Groups {
			if g.Key == key {
				return g.Value, true
			}
		}
		return 0, false
	}
	i, ok := r.index[key]
	if !ok {
		return 0, false
	}
	return r.Groups[i].Value, true
}

// Len returns the number of groups
func (r Result) Len() int {
	return len(r.Groups)
}

// Keys returns group keys in order
func (r Result) Keys() []string {
	keys := make([]string, len(r.Groups))
	for i, g := range r.Groups {
		keys[i] = g.Key
	}
	return keys
}

// Values returns group values in order
func (r Result) Values() []float64 {
	values := make([]float64, len(r.Groups))
	for i, g := range r.Groups {
		values[i] = g.Value
	}
	return values
}

// Map returns the result as a plain map
func (r Result) Map() map[string]float64 {
	m := make(map[string]float64, len(r.Groups))
	for _, g := range r.Groups {
		m[g.Key] = g.Value
	}
	return m
}
