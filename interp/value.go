package interp

import (
	"math"
	"strconv"
	"strings"
)

// Value is the dynamic value of an expression: a string or a number.
type Value struct {
	isString bool
	str      string
	num      float64
}

func StringValue(s string) Value {
	return Value{isString: true, str: s}
}

func NumberValue(f float64) Value {
	return Value{num: f}
}

func boolValue(b bool) Value {

	if b {
		return NumberValue(1)
	}

	return NumberValue(0)
}

func (v Value) IsString() bool {
	return v.isString
}

//
// Accessors that enforce the operand shape an operator requires
//

func (v Value) Number() (float64, error) {

	if v.isString {
		return 0, newError(TypeMismatch)
	}

	return v.num, nil
}

func (v Value) Str() (string, error) {

	if !v.isString {
		return "", newError(TypeMismatch)
	}

	return v.str, nil
}

// Bool is BASIC truth: a non-empty string, or a non-zero number.
func (v Value) Bool() bool {

	if v.isString {
		return v.str != ""
	}

	return v.num != 0
}

// String is the value's natural textual form, as PRINT shows it.
func (v Value) String() string {

	if v.isString {
		return v.str
	}

	return formatNumber(v.num)
}

func formatNumber(f float64) string {

	switch {
	case math.IsInf(f, 1):
		return "inf"

	case math.IsInf(f, -1):
		return "-inf"

	case math.IsNaN(f):
		return "NaN"
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

//
// Variable, array and function types are never declared.  A name
// ending in '$' holds strings, anything else holds numbers
//

func isStringName(name string) bool {
	return strings.HasSuffix(name, "$")
}

func zeroValueFor(name string) Value {

	if isStringName(name) {
		return StringValue("")
	}

	return NumberValue(0)
}

// checkAssignable fails TypeMismatch unless v fits a slot called name.
func checkAssignable(name string, v Value) error {

	if isStringName(name) != v.isString {
		return newError(TypeMismatch)
	}

	return nil
}
