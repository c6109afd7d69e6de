package interp

import (
	"math"
)

//
// Expression evaluation.  There is no syntax tree: each function
// below consumes exactly the tokens of its production from the
// program's current line and hands back the resulting Value.
// Precedence, lowest first:
//
//	OR
//	AND
//	= < > <= >= <>   (chainable, each yields 1 or 0)
//	+ -
//	* /
//	^
//	unary + - NOT
//	literal, (expr), variable, array element, function call
//

func (in *Interpreter) evalExpr() (Value, error) {
	return in.evalOr()
}

func (in *Interpreter) evalNumber() (float64, error) {

	v, err := in.evalExpr()
	if err != nil {
		return 0, err
	}

	return v.Number()
}

func numberPair(left, right Value) (float64, float64, error) {

	l, err := left.Number()
	if err != nil {
		return 0, 0, err
	}

	r, err := right.Number()
	if err != nil {
		return 0, 0, err
	}

	return l, r, nil
}

func (in *Interpreter) evalOr() (Value, error) {

	left, err := in.evalAnd()
	if err != nil {
		return left, err
	}

	for in.program.Accept(TokOr) {
		right, err := in.evalAnd()
		if err != nil {
			return right, err
		}

		l, r, err := numberPair(left, right)
		if err != nil {
			return left, err
		}

		left = boolValue(l != 0 || r != 0)
	}

	return left, nil
}

func (in *Interpreter) evalAnd() (Value, error) {

	left, err := in.evalComparison()
	if err != nil {
		return left, err
	}

	for in.program.Accept(TokAnd) {
		right, err := in.evalComparison()
		if err != nil {
			return right, err
		}

		l, r, err := numberPair(left, right)
		if err != nil {
			return left, err
		}

		left = boolValue(l != 0 && r != 0)
	}

	return left, nil
}

func isComparison(k TokenKind) bool {

	switch k {
	case TokEqual, TokLess, TokGreater, TokLessEqual, TokGreaterEqual, TokNotEqual:
		return true
	}

	return false
}

func (in *Interpreter) evalComparison() (Value, error) {

	left, err := in.evalAdditive()
	if err != nil {
		return left, err
	}

	for isComparison(in.program.PeekKind()) {
		op, _ := in.program.Next()

		right, err := in.evalAdditive()
		if err != nil {
			return right, err
		}

		left, err = compare(op.Kind, left, right)
		if err != nil {
			return left, err
		}
	}

	return left, nil
}

//
// Both sides must be strings, or both numbers
//

func compare(op TokenKind, left, right Value) (Value, error) {

	var c int

	if left.isString != right.isString {
		return Value{}, newError(TypeMismatch)
	}

	if left.isString {
		switch {
		case left.str < right.str:
			c = -1
		case left.str > right.str:
			c = 1
		}
	} else {
		switch {
		case left.num < right.num:
			c = -1
		case left.num > right.num:
			c = 1
		}
	}

	switch op {
	case TokEqual:
		return boolValue(c == 0), nil
	case TokLess:
		return boolValue(c < 0), nil
	case TokGreater:
		return boolValue(c > 0), nil
	case TokLessEqual:
		return boolValue(c <= 0), nil
	case TokGreaterEqual:
		return boolValue(c >= 0), nil
	case TokNotEqual:
		return boolValue(c != 0), nil
	}

	return Value{}, unexpectedToken(op)
}

func (in *Interpreter) evalAdditive() (Value, error) {

	left, err := in.evalMultiplicative()
	if err != nil {
		return left, err
	}

	for {
		op := in.program.PeekKind()
		if op != TokPlus && op != TokMinus {
			return left, nil
		}

		in.program.Next()

		right, err := in.evalMultiplicative()
		if err != nil {
			return right, err
		}

		//
		// '+' also concatenates strings
		//

		if op == TokPlus && left.isString && right.isString {
			left = StringValue(left.str + right.str)
			continue
		}

		l, r, err := numberPair(left, right)
		if err != nil {
			return left, err
		}

		if op == TokPlus {
			left = NumberValue(l + r)
		} else {
			left = NumberValue(l - r)
		}
	}
}

func (in *Interpreter) evalMultiplicative() (Value, error) {

	left, err := in.evalExponent()
	if err != nil {
		return left, err
	}

	for {
		op := in.program.PeekKind()
		if op != TokStar && op != TokSlash {
			return left, nil
		}

		in.program.Next()

		right, err := in.evalExponent()
		if err != nil {
			return right, err
		}

		l, r, err := numberPair(left, right)
		if err != nil {
			return left, err
		}

		if op == TokStar {
			left = NumberValue(l * r)
			continue
		}

		if r == 0 {
			return left, newError(DivisionByZero)
		}

		left = NumberValue(l / r)
	}
}

func (in *Interpreter) evalExponent() (Value, error) {

	left, err := in.evalUnary()
	if err != nil {
		return left, err
	}

	for in.program.Accept(TokCaret) {
		right, err := in.evalUnary()
		if err != nil {
			return right, err
		}

		l, r, err := numberPair(left, right)
		if err != nil {
			return left, err
		}

		left = NumberValue(math.Pow(l, r))
	}

	return left, nil
}

func (in *Interpreter) evalUnary() (Value, error) {

	op := in.program.PeekKind()

	switch op {
	case TokPlus, TokMinus, TokNot:
		in.program.Next()

	default:
		return in.evalPrimary()
	}

	v, err := in.evalUnary()
	if err != nil {
		return v, err
	}

	f, err := v.Number()
	if err != nil {
		return v, err
	}

	switch op {
	case TokMinus:
		return NumberValue(-f), nil

	case TokNot:
		return boolValue(f == 0), nil
	}

	return v, nil
}

func (in *Interpreter) evalPrimary() (Value, error) {

	tok, err := in.program.TryNext()
	if err != nil {
		return Value{}, err
	}

	switch tok.Kind {
	case TokNumber:
		return NumberValue(tok.num), nil

	case TokString:
		return StringValue(tok.Text()), nil

	case TokLParen:
		v, err := in.evalExpr()
		if err != nil {
			return v, err
		}
		return v, in.program.Expect(TokRParen)

	case TokSymbol:
		name := tok.Text()
		if in.program.Accept(TokLParen) {
			return in.evalCall(name)
		}
		return in.lookupVariable(name), nil
	}

	return Value{}, unexpectedToken(tok.Kind)
}

//
// A symbol followed by '(' is a builtin function, a user function, or
// an array element, tried in that order.  The '(' has been consumed
//

func (in *Interpreter) evalCall(name string) (Value, error) {

	if b, ok := builtins[name]; ok {
		args, err := in.evalArgList()
		if err != nil {
			return Value{}, err
		}
		if len(args) < b.minArgs || len(args) > b.maxArgs {
			return Value{}, syntaxError(UnexpectedToken)
		}
		return b.fn(in, args)
	}

	if def, ok := in.functions[name]; ok {
		return in.callFunction(name, def)
	}

	index, err := in.evalIndexList()
	if err != nil {
		return Value{}, err
	}

	arr, err := in.arrayFor(name, len(index))
	if err != nil {
		return Value{}, err
	}

	return arr.Get(index)
}

// evalArgList parses 'expr {, expr} )', the '(' already consumed.
func (in *Interpreter) evalArgList() ([]Value, error) {

	var args []Value

	for {
		v, err := in.evalExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, v)

		if in.program.Accept(TokComma) {
			continue
		}

		return args, in.program.Expect(TokRParen)
	}
}

func (in *Interpreter) evalIndexList() ([]int, error) {

	args, err := in.evalArgList()
	if err != nil {
		return nil, err
	}

	index := make([]int, len(args))

	for i, v := range args {
		if index[i], err = subscriptIndex(v); err != nil {
			return nil, err
		}
	}

	return index, nil
}

//
// Call a DEF FN function.  Arguments are evaluated left to right in
// the caller's context, bound by parameter name into a new frame, and
// the body is evaluated where it was defined
//

func (in *Interpreter) callFunction(name string, def FunctionDefinition) (Value, error) {

	params := make(map[string]Value, len(def.Params))

	for i, p := range def.Params {
		if i > 0 {
			if err := in.program.Expect(TokComma); err != nil {
				return Value{}, err
			}
		}

		v, err := in.evalExpr()
		if err != nil {
			return Value{}, err
		}

		if err := checkAssignable(p, v); err != nil {
			return Value{}, err
		}

		params[p] = v
	}

	if err := in.program.Expect(TokRParen); err != nil {
		return Value{}, err
	}

	if err := in.program.PushFunctionFrame(params, def.Body); err != nil {
		return Value{}, err
	}

	v, err := in.evalExpr()
	if err == nil && !in.program.AtStatementEnd() {
		err = unexpectedToken(in.program.PeekKind())
	}

	if err == nil {
		err = checkAssignable(name, v)
	}

	if perr := in.program.PopFunctionFrame(); err == nil {
		err = perr
	}

	return v, err
}

//
// Variables: function parameters anywhere on the call stack win over
// globals.  An unset variable reads as 0 or ""
//

func (in *Interpreter) lookupVariable(name string) Value {

	if v, ok := in.program.LookupParam(name); ok {
		return v
	}

	if v, ok := in.variables[name]; ok {
		return v
	}

	return zeroValueFor(name)
}

// arrayFor finds array name, creating it with the default size on
// every axis if this is its first use.
func (in *Interpreter) arrayFor(name string, dims int) (*ValueArray, error) {

	if arr, ok := in.arrays[name]; ok {
		return arr, nil
	}

	sizes := make([]int, dims)
	for i := range sizes {
		sizes[i] = maxImplicitSubscript + 1
	}

	arr, err := newValueArray(name, sizes, in.opts.MaxArrayElements)
	if err != nil {
		return nil, err
	}

	in.arrays[name] = arr

	return arr, nil
}

//
// An assignment target: a scalar, or an array element with its
// subscripts already evaluated
//

type lvalue struct {
	name    string
	index   []int
	isArray bool
}

func (in *Interpreter) parseLvalue() (lvalue, error) {

	var lv lvalue

	tok, err := in.program.TryNext()
	if err != nil {
		return lv, err
	}

	if tok.Kind != TokSymbol {
		return lv, unexpectedToken(tok.Kind)
	}

	lv.name = tok.Text()

	if in.program.Accept(TokLParen) {
		lv.isArray = true
		if lv.index, err = in.evalIndexList(); err != nil {
			return lv, err
		}
	}

	return lv, nil
}

func (in *Interpreter) assign(lv lvalue, v Value) error {

	if err := checkAssignable(lv.name, v); err != nil {
		return err
	}

	if !lv.isArray {
		in.variables[lv.name] = v
		return nil
	}

	arr, err := in.arrayFor(lv.name, len(lv.index))
	if err != nil {
		return err
	}

	return arr.Set(lv.index, v)
}

//
// Line numbers come from literals or expressions, and must be
// non-negative integers
//

func lineNumber(f float64) (uint64, error) {

	if f < 0 || f != math.Floor(f) || f > math.MaxInt64 {
		return 0, newError(IllegalQuantity)
	}

	return uint64(f), nil
}
