package interp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {

	tests := []struct {
		expr string
		want string
	}{
		{"ABS(-2)", "2"},
		{"INT(-1.5)", "-2"},
		{"INT(2.7)", "2"},
		{"SGN(-3);SGN(0);SGN(9)", "-101"},
		{"SQR(16)", "4"},
		{"EXP(0)", "1"},
		{"LOG(1)", "0"},
		{"SIN(0);COS(0)", "01"},
		{`LEN("ABC")`, "3"},
		{`ASC("A")`, "65"},
		{"CHR$(65)", "A"},
		{"STR$(1.5)", "1.5"},
		{`VAL("12AB")`, "12"},
		{`VAL("  -3.5")`, "-3.5"},
		{`VAL("X")`, "0"},
		{`LEFT$("HELLO",2)`, "HE"},
		{`LEFT$("HELLO",9)`, "HELLO"},
		{`RIGHT$("HELLO",3)`, "LLO"},
		{`MID$("HELLO",2,3)`, "ELL"},
		{`MID$("HELLO",2)`, "ELLO"},
		{`MID$("HELLO",9)`, ""},
		{`LEN(STR$(10)+CHR$(32))`, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			require.Equal(t, tt.want+"\n", runLines(t, "PRINT "+tt.expr))
		})
	}
}

func TestBuiltinErrors(t *testing.T) {

	tests := []struct {
		expr string
		want error
	}{
		{"SQR(-1)", ErrIllegalQuantity},
		{"LOG(0)", ErrIllegalQuantity},
		{"CHR$(256)", ErrIllegalQuantity},
		{`ASC("")`, ErrIllegalQuantity},
		{`MID$("A",0)`, ErrIllegalQuantity},
		{`LEFT$("A",-1)`, ErrIllegalQuantity},
		{"LEN(1)", ErrTypeMismatch},
		{`ABS("X")`, ErrTypeMismatch},
		{"ABS(1,2)", ErrSyntax},
		{`LEFT$("A")`, ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := runUntilError(t, "PRINT "+tt.expr)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
