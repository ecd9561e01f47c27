// Package coercer normalizes raw cell values into typed values.
//
// Numeric interpretations are always tried before dates: a bare "2024" is a
// number, never a year.
package coercer

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind is the coerced category of a raw value
type Kind string

const (
	KindMissing Kind = "missing"
	KindEmpty   Kind = "empty"
	KindNumber  Kind = "number"
	KindDate    Kind = "date"
	KindBoolean Kind = "boolean"
	KindString  Kind = "string"
)

// Value is the result of coercing one raw cell
type Value struct {
	Kind      Kind
	Number    float64
	Time      time.Time
	Bool      bool
	Str       string
	IsInteger bool
}

// IsPresent reports whether the value is neither missing nor empty
func (v Value) IsPresent() bool {
	return v.Kind != KindMissing && v.Kind != KindEmpty
}

// Equal compares two coerced values: same kind and same payload
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindMissing, KindEmpty:
		return true
	case KindNumber:
		return v.Number == other.Number
	case KindDate:
		return v.Time.Equal(other.Time)
	case KindBoolean:
		return v.Bool == other.Bool
	default:
		return v.Str == other.Str
	}
}

var (
	integerPattern = regexp.MustCompile(`^-?\d+$`)
	decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	leadingDecimal = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
	nonNumericRune = regexp.MustCompile(`[^\d.\-]`)
)

// DateLayouts are the locale-free layouts accepted as calendar dates, tried in order
var DateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	time.RFC1123,
}

// Coerce converts a raw value using the integer, number, date, string precedence
func Coerce(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return Value{Kind: KindMissing}
	case bool:
		return Value{Kind: KindBoolean, Bool: v, Str: strconv.FormatBool(v)}
	case time.Time:
		return Value{Kind: KindDate, Time: v, Str: v.Format(time.RFC3339)}
	case string:
		return coerceString(v)
	case json.Number:
		return coerceString(v.String())
	}

	if f, integral, ok := toFloat(raw); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{Kind: KindString, Str: String(raw)}
		}
		return Value{Kind: KindNumber, Number: f, IsInteger: integral || f == math.Trunc(f), Str: String(raw)}
	}

	return coerceString(fmt.Sprint(raw))
}

func coerceString(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{Kind: KindEmpty, Str: s}
	}

	if integerPattern.MatchString(trimmed) {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			// leading-zero digits such as "007" are numbers but never integers
			return Value{Kind: KindNumber, Number: f, IsInteger: !hasLeadingZero(trimmed), Str: trimmed}
		}
	}

	if n, ok := tryParseNumeric(trimmed); ok {
		return Value{Kind: KindNumber, Number: n, Str: trimmed}
	}

	if t, ok := tryParseTimestamp(trimmed); ok {
		return Value{Kind: KindDate, Time: t, Str: trimmed}
	}

	return Value{Kind: KindString, Str: trimmed}
}

func hasLeadingZero(digits string) bool {
	digits = strings.TrimPrefix(digits, "-")
	return len(digits) > 1 && digits[0] == '0'
}

func tryParseNumeric(s string) (float64, bool) {
	if !decimalPattern.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseDecimal parses a strict decimal literal such as "12", "-0.5" or "1e3"
func ParseDecimal(s string) (float64, bool) {
	return tryParseNumeric(strings.TrimSpace(s))
}

func tryParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate returns the instant of a raw value that coerces to a date
func ParseDate(raw interface{}) (time.Time, bool) {
	v := Coerce(raw)
	if v.Kind != KindDate {
		return time.Time{}, false
	}
	return v.Time, true
}

// ParseNumeric is the lenient number parser used for aggregation values.
// Strict numbers pass as-is; other strings are stripped down to digits, dots
// and minus signs and their longest leading decimal prefix is used, so
// "$1,200" reads as 1200.
func ParseNumeric(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case nil, bool, time.Time:
		return 0, false
	case string:
		return parseLenient(v)
	case json.Number:
		return parseLenient(v.String())
	}

	f, _, ok := toFloat(raw)
	if !ok {
		return parseLenient(fmt.Sprint(raw))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseLenient(s string) (float64, bool) {
	trimmed := strings.TrimSpace(s)
	if f, ok := tryParseNumeric(trimmed); ok {
		return f, true
	}

	stripped := nonNumericRune.ReplaceAllString(trimmed, "")
	prefix := leadingDecimal.FindString(stripped)
	if prefix == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String is the canonical text form of a raw value
func String(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case json.Number:
		return v.String()
	case float64:
		return formatFloat(v, 64)
	case float32:
		return formatFloat(float64(v), 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(raw)
	}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// toFloat widens any Go numeric type; integral reports an integer-typed source
func toFloat(raw interface{}) (float64, bool, bool) {
	switch v := raw.(type) {
	case float64:
		return v, false, true
	case float32:
		return float64(v), false, true
	case int:
		return float64(v), true, true
	case int64:
		return float64(v), true, true
	case int32:
		return float64(v), true, true
	case int16:
		return float64(v), true, true
	case int8:
		return float64(v), true, true
	case uint:
		return float64(v), true, true
	case uint64:
		return float64(v), true, true
	case uint32:
		return float64(v), true, true
	case uint16:
		return float64(v), true, true
	case uint8:
		return float64(v), true, true
	}
	return 0, false, false
}
