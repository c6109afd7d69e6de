package interp

import (
	"math"
	"strconv"
	"strings"
)

//
// Builtin functions.  Each entry gives the accepted argument count and
// the implementation, which receives already evaluated arguments
//

type builtin struct {
	minArgs int
	maxArgs int
	fn      func(in *Interpreter, args []Value) (Value, error)
}

var builtins = map[string]builtin{
	"ABS":    {1, 1, numeric(math.Abs)},
	"ATN":    {1, 1, numeric(math.Atan)},
	"COS":    {1, 1, numeric(math.Cos)},
	"SIN":    {1, 1, numeric(math.Sin)},
	"TAN":    {1, 1, numeric(math.Tan)},
	"EXP":    {1, 1, numeric(math.Exp)},
	"INT":    {1, 1, numeric(math.Floor)},
	"SGN":    {1, 1, numeric(sign)},
	"LOG":    {1, 1, fnLog},
	"SQR":    {1, 1, fnSqr},
	"RND":    {1, 1, fnRnd},
	"LEN":    {1, 1, fnLen},
	"ASC":    {1, 1, fnAsc},
	"CHR$":   {1, 1, fnChr},
	"STR$":   {1, 1, fnStr},
	"VAL":    {1, 1, fnVal},
	"LEFT$":  {2, 2, fnLeft},
	"RIGHT$": {2, 2, fnRight},
	"MID$":   {2, 3, fnMid},
}

// BuiltinNames lists the builtin functions, for help screens.
func BuiltinNames() []string {

	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}

	return names
}

func numeric(f func(float64) float64) func(*Interpreter, []Value) (Value, error) {

	return func(_ *Interpreter, args []Value) (Value, error) {
		x, err := args[0].Number()
		if err != nil {
			return Value{}, err
		}
		return NumberValue(f(x)), nil
	}
}

func sign(x float64) float64 {

	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}

	return 0
}

func fnLog(_ *Interpreter, args []Value) (Value, error) {

	x, err := args[0].Number()
	if err != nil {
		return Value{}, err
	}

	if x <= 0 {
		return Value{}, newError(IllegalQuantity)
	}

	return NumberValue(math.Log(x)), nil
}

func fnSqr(_ *Interpreter, args []Value) (Value, error) {

	x, err := args[0].Number()
	if err != nil {
		return Value{}, err
	}

	if x < 0 {
		return Value{}, newError(IllegalQuantity)
	}

	return NumberValue(math.Sqrt(x)), nil
}

//
// RND(x): a positive argument draws the next number in [0,1), zero
// repeats the last one drawn.  Reseeding with a negative argument is
// not supported
//

func fnRnd(in *Interpreter, args []Value) (Value, error) {

	x, err := args[0].Number()
	if err != nil {
		return Value{}, err
	}

	switch {
	case x < 0:
		return Value{}, newError(Unimplemented)

	case x > 0:
		in.lastRandom = in.rng.Float64()
	}

	return NumberValue(in.lastRandom), nil
}

func fnLen(_ *Interpreter, args []Value) (Value, error) {

	s, err := args[0].Str()
	if err != nil {
		return Value{}, err
	}

	return NumberValue(float64(len(s))), nil
}

func fnAsc(_ *Interpreter, args []Value) (Value, error) {

	s, err := args[0].Str()
	if err != nil {
		return Value{}, err
	}

	if s == "" {
		return Value{}, newError(IllegalQuantity)
	}

	return NumberValue(float64(s[0])), nil
}

func fnChr(_ *Interpreter, args []Value) (Value, error) {

	x, err := args[0].Number()
	if err != nil {
		return Value{}, err
	}

	x = math.Floor(x)
	if x < 0 || x > 255 || math.IsNaN(x) {
		return Value{}, newError(IllegalQuantity)
	}

	return StringValue(string([]byte{byte(x)})), nil
}

func fnStr(_ *Interpreter, args []Value) (Value, error) {

	x, err := args[0].Number()
	if err != nil {
		return Value{}, err
	}

	return StringValue(formatNumber(x)), nil
}

//
// VAL reads the longest numeric prefix of its argument, after leading
// blanks.  No number at all is 0
//

func fnVal(_ *Interpreter, args []Value) (Value, error) {

	s, err := args[0].Str()
	if err != nil {
		return Value{}, err
	}

	s = strings.TrimLeft(s, " \t")

	end := 0
	for end < len(s) && strings.IndexByte("0123456789.+-eE", s[end]) >= 0 {
		end++
	}

	for ; end > 0; end-- {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return NumberValue(f), nil
		}
	}

	return NumberValue(0), nil
}

// stringAndCount unpacks the (string, count) argument pair shared by
// LEFT$, RIGHT$ and MID$.
func stringAndCount(args []Value, i int) (string, int, error) {

	s, err := args[0].Str()
	if err != nil {
		return "", 0, err
	}

	n, err := args[i].Number()
	if err != nil {
		return "", 0, err
	}

	n = math.Floor(n)
	if n < 0 || math.IsNaN(n) {
		return "", 0, newError(IllegalQuantity)
	}

	if n > float64(len(s)) {
		return s, len(s), nil
	}

	return s, int(n), nil
}

func fnLeft(_ *Interpreter, args []Value) (Value, error) {

	s, n, err := stringAndCount(args, 1)
	if err != nil {
		return Value{}, err
	}

	return StringValue(s[:n]), nil
}

func fnRight(_ *Interpreter, args []Value) (Value, error) {

	s, n, err := stringAndCount(args, 1)
	if err != nil {
		return Value{}, err
	}

	return StringValue(s[len(s)-n:]), nil
}

// MID$(s, start [, count]); start counts from 1.
func fnMid(_ *Interpreter, args []Value) (Value, error) {

	s, start, err := stringAndCount(args, 1)
	if err != nil {
		return Value{}, err
	}

	f, _ := args[1].Number()
	if f < 1 {
		return Value{}, newError(IllegalQuantity)
	}

	if int(math.Floor(f)) > len(s) {
		return StringValue(""), nil
	}

	rest := s[start-1:]

	if len(args) < 3 {
		return StringValue(rest), nil
	}

	_, n, err := stringAndCount([]Value{StringValue(rest), args[2]}, 1)
	if err != nil {
		return Value{}, err
	}

	return StringValue(rest[:n]), nil
}
