package interp

import (
	"strconv"
	"strings"
	"unique"
)

type TokenKind int

const (
	tokInvalid TokenKind = iota

	// keywords
	TokDim
	TokLet
	TokPrint
	TokInput
	TokGoto
	TokGosub
	TokReturn
	TokIf
	TokThen
	TokElse
	TokAnd
	TokOr
	TokNot
	TokEnd
	TokStop
	TokFor
	TokTo
	TokStep
	TokNext
	TokRead
	TokRestore
	TokDef

	// punctuation and operators
	TokColon
	TokComma
	TokSemicolon
	TokLParen
	TokRParen
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokCaret
	TokEqual
	TokLess
	TokGreater
	TokLessEqual
	TokGreaterEqual
	TokNotEqual
	TokQuestion

	// payload bearing
	TokSymbol
	TokString
	TokNumber
	TokRemark
	TokData
)

var tokenNames = map[TokenKind]string{
	TokDim:          "DIM",
	TokLet:          "LET",
	TokPrint:        "PRINT",
	TokInput:        "INPUT",
	TokGoto:         "GOTO",
	TokGosub:        "GOSUB",
	TokReturn:       "RETURN",
	TokIf:           "IF",
	TokThen:         "THEN",
	TokElse:         "ELSE",
	TokAnd:          "AND",
	TokOr:           "OR",
	TokNot:          "NOT",
	TokEnd:          "END",
	TokStop:         "STOP",
	TokFor:          "FOR",
	TokTo:           "TO",
	TokStep:         "STEP",
	TokNext:         "NEXT",
	TokRead:         "READ",
	TokRestore:      "RESTORE",
	TokDef:          "DEF",
	TokColon:        ":",
	TokComma:        ",",
	TokSemicolon:    ";",
	TokLParen:       "(",
	TokRParen:       ")",
	TokPlus:         "+",
	TokMinus:        "-",
	TokStar:         "*",
	TokSlash:        "/",
	TokCaret:        "^",
	TokEqual:        "=",
	TokLess:         "<",
	TokGreater:      ">",
	TokLessEqual:    "<=",
	TokGreaterEqual: ">=",
	TokNotEqual:     "<>",
	TokQuestion:     "?",
	TokSymbol:       "SYMBOL",
	TokString:       "STRING",
	TokNumber:       "NUMBER",
	TokRemark:       "REM",
	TokData:         "DATA",
}

func (k TokenKind) String() string {

	if name, ok := tokenNames[k]; ok {
		return name
	}

	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

//
// The keyword table.  Order matters only in that the tokenizer takes
// the first match, and no keyword is a prefix of another
//

var keywords = []struct {
	name string
	kind TokenKind
}{
	{"DIM", TokDim}, {"LET", TokLet}, {"PRINT", TokPrint},
	{"INPUT", TokInput}, {"GOTO", TokGoto}, {"GOSUB", TokGosub},
	{"RETURN", TokReturn}, {"IF", TokIf}, {"THEN", TokThen},
	{"ELSE", TokElse}, {"AND", TokAnd}, {"OR", TokOr}, {"NOT", TokNot},
	{"END", TokEnd}, {"STOP", TokStop}, {"FOR", TokFor}, {"TO", TokTo},
	{"STEP", TokStep}, {"NEXT", TokNext}, {"READ", TokRead},
	{"RESTORE", TokRestore}, {"DEF", TokDef}, {"REM", TokRemark},
	{"DATA", TokData},
}

// Token is one lexical element of a line.  String payloads are
// interned handles, so two tokens for the same symbol share storage
// and compare cheaply.
type Token struct {
	Kind TokenKind
	text unique.Handle[string]
	num  float64
	data []DataElement
}

func simpleToken(kind TokenKind) Token {
	return Token{Kind: kind}
}

func symbolToken(name string) Token {
	return Token{Kind: TokSymbol, text: unique.Make(strings.ToUpper(name))}
}

func stringToken(s string) Token {
	return Token{Kind: TokString, text: unique.Make(s)}
}

func numberToken(f float64) Token {
	return Token{Kind: TokNumber, num: f}
}

func remarkToken(s string) Token {
	return Token{Kind: TokRemark, text: unique.Make(s)}
}

func dataToken(elems []DataElement) Token {
	return Token{Kind: TokData, data: elems}
}

//
// Accessors.  Text is only meaningful for symbols, string literals
// and remarks; calling it on any other token returns ""
//

func (t Token) Text() string {

	switch t.Kind {
	case TokSymbol, TokString, TokRemark:
		return t.text.Value()
	}

	return ""
}

func (t Token) Number() float64 {
	return t.num
}

func (t Token) Data() []DataElement {
	return t.data
}

// Equal reports structural equality.
func (t Token) Equal(o Token) bool {

	if t.Kind != o.Kind {
		return false
	}

	switch t.Kind {
	case TokSymbol, TokString, TokRemark:
		return t.text == o.text

	case TokNumber:
		return t.num == o.num

	case TokData:
		if len(t.data) != len(o.data) {
			return false
		}
		for i := range t.data {
			if t.data[i] != o.data[i] {
				return false
			}
		}
	}

	return true
}

//
// Render a token back to canonical source text, as used by LIST
//

func (t Token) String() string {

	switch t.Kind {
	case TokSymbol:
		return t.text.Value()

	case TokString:
		return `"` + t.text.Value() + `"`

	case TokNumber:
		return formatNumber(t.num)

	case TokRemark:
		return "REM" + t.text.Value()

	case TokData:
		parts := make([]string, len(t.data))
		for i, e := range t.data {
			parts[i] = e.listing()
		}
		return "DATA " + strings.Join(parts, ",")
	}

	return t.Kind.String()
}

func isStatementEnd(k TokenKind) bool {
	return k == TokColon || k == TokElse
}
