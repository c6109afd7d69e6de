package interp

import (
	"errors"
	"fmt"
	"strconv"
)

//
// Error kinds.  The message text for each lives in errorMap, and
// is what a user sees (followed by the line number, if any)
//

type ErrorKind int

const (
	Syntax ErrorKind = iota + 1
	TypeMismatch
	DataTypeMismatch
	UndefinedStatement
	OutOfMemory
	OutOfData
	ReturnWithoutGosub
	NextWithoutFor
	BadSubscript
	IllegalQuantity
	Unimplemented
	DivisionByZero
	RedimensionedArray
	CannotContinue
	IllegalDirect
	Internal
)

var errorMap = map[ErrorKind]string{
	Syntax:             "SYNTAX ERROR",
	TypeMismatch:       "TYPE MISMATCH",
	DataTypeMismatch:   "DATA TYPE MISMATCH",
	UndefinedStatement: "UNDEF'D STATEMENT",
	OutOfMemory:        "OUT OF MEMORY",
	OutOfData:          "OUT OF DATA",
	ReturnWithoutGosub: "RETURN WITHOUT GOSUB",
	NextWithoutFor:     "NEXT WITHOUT FOR",
	BadSubscript:       "BAD SUBSCRIPT",
	IllegalQuantity:    "ILLEGAL QUANTITY",
	Unimplemented:      "UNIMPLEMENTED",
	DivisionByZero:     "DIVISION BY ZERO",
	RedimensionedArray: "REDIM'D ARRAY",
	CannotContinue:     "CAN'T CONTINUE",
	IllegalDirect:      "ILLEGAL DIRECT",
	Internal:           "INTERNAL ERROR",
}

func (k ErrorKind) String() string {

	if msg, ok := errorMap[k]; ok {
		return msg
	}

	return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
}

//
// Refinements of Syntax and OutOfMemory
//

type Detail int

const (
	NoDetail Detail = iota
	Tokenization
	UnexpectedToken
	ExpectedToken
	UnexpectedEndOfInput
	StackOverflow
	ArrayTooLarge
)

// Span is a half-open byte range within a source line.
type Span struct {
	Start int
	End   int
}

// Error is a BASIC runtime or syntax error.  Line is attached at the
// step boundary; tokenizer errors also carry the offending Span.
type Error struct {
	Kind    ErrorKind
	Detail  Detail
	Message string
	Token   TokenKind
	Span    Span
	Line    ProgramLine
}

func (e *Error) Error() string {

	msg := e.Kind.String()

	switch e.Detail {
	case Tokenization:
		msg += " (" + e.Message + ")"

	case UnexpectedToken:
		msg += " (UNEXPECTED " + e.Token.String() + ")"

	case ExpectedToken:
		msg += " (EXPECTED " + e.Token.String() + ")"

	case UnexpectedEndOfInput:
		msg += " (UNEXPECTED END OF INPUT)"

	case StackOverflow:
		msg += " (STACK OVERFLOW)"

	case ArrayTooLarge:
		msg += " (ARRAY TOO LARGE)"

	default:
		if e.Message != "" {
			msg += " (" + e.Message + ")"
		}
	}

	if e.Line.Numbered {
		msg += " IN " + strconv.FormatUint(e.Line.Number, 10)
	}

	return msg
}

//
// Two errors match if they are of the same kind, and the target
// either has no detail or the same one.  This lets callers write
// errors.Is(err, ErrOutOfMemory) as well as errors.Is(err,
// ErrStackOverflow)
//

func (e *Error) Is(target error) bool {

	var t *Error

	if !errors.As(target, &t) {
		return false
	}

	if t.Kind != e.Kind {
		return false
	}

	return t.Detail == NoDetail || t.Detail == e.Detail
}

// Sentinels for errors.Is.
var (
	ErrSyntax             = &Error{Kind: Syntax}
	ErrTypeMismatch       = &Error{Kind: TypeMismatch}
	ErrDataTypeMismatch   = &Error{Kind: DataTypeMismatch}
	ErrUndefinedStatement = &Error{Kind: UndefinedStatement}
	ErrOutOfMemory        = &Error{Kind: OutOfMemory}
	ErrStackOverflow      = &Error{Kind: OutOfMemory, Detail: StackOverflow}
	ErrArrayTooLarge      = &Error{Kind: OutOfMemory, Detail: ArrayTooLarge}
	ErrOutOfData          = &Error{Kind: OutOfData}
	ErrReturnWithoutGosub = &Error{Kind: ReturnWithoutGosub}
	ErrNextWithoutFor     = &Error{Kind: NextWithoutFor}
	ErrBadSubscript       = &Error{Kind: BadSubscript}
	ErrIllegalQuantity    = &Error{Kind: IllegalQuantity}
	ErrUnimplemented      = &Error{Kind: Unimplemented}
	ErrDivisionByZero     = &Error{Kind: DivisionByZero}
	ErrRedimensionedArray = &Error{Kind: RedimensionedArray}
	ErrCannotContinue     = &Error{Kind: CannotContinue}
	ErrIllegalDirect      = &Error{Kind: IllegalDirect}
	ErrInternal           = &Error{Kind: Internal}
)

//
// Constructors used throughout the evaluator.  They always hand back
// a fresh *Error, since the step boundary fills in the line number
//

func newError(kind ErrorKind) *Error {
	return &Error{Kind: kind}
}

func syntaxError(detail Detail) *Error {
	return &Error{Kind: Syntax, Detail: detail}
}

func unexpectedToken(tok TokenKind) *Error {
	return &Error{Kind: Syntax, Detail: UnexpectedToken, Token: tok}
}

func expectedToken(tok TokenKind) *Error {
	return &Error{Kind: Syntax, Detail: ExpectedToken, Token: tok}
}

func tokenizationError(msg string, start, end int) *Error {
	return &Error{Kind: Syntax, Detail: Tokenization, Message: msg,
		Span: Span{Start: start, End: end}}
}

func stackOverflow() *Error {
	return &Error{Kind: OutOfMemory, Detail: StackOverflow}
}

func internalError(format string, args ...any) *Error {
	return &Error{Kind: Internal, Message: fmt.Sprintf(format, args...)}
}

//
// Control signals.  These travel up the evaluator as errors, but are
// consumed by the Interpreter step boundary and never reach a host
//

type signal int

const (
	signalEnd signal = iota + 1
	signalStop
	signalAwaitInput
)

func (s signal) Error() string {

	switch s {
	case signalEnd:
		return "end of program"

	case signalStop:
		return "stop"

	case signalAwaitInput:
		return "awaiting input"
	}

	return "signal"
}
