package interp

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testStepLimit = 10000

// submit hands one line to the interpreter and drives it until it
// stops running, returning whatever it printed.
func submit(t *testing.T, in *Interpreter, line string) (string, error) {

	t.Helper()

	err := in.StartEvaluating(line)
	if err == nil {
		err = in.RunSteps(context.Background(), testStepLimit)
	}

	return Render(in.TakeOutput()), err
}

// runUntilError submits lines in order on a fresh interpreter and
// stops at the first error.
func runUntilError(t *testing.T, lines ...string) (string, error) {

	t.Helper()

	var sb strings.Builder

	in := New(DefaultOptions())

	for _, line := range lines {
		out, err := submit(t, in, line)
		sb.WriteString(out)
		if err != nil {
			return sb.String(), err
		}
	}

	return sb.String(), nil
}

func runLines(t *testing.T, lines ...string) string {

	t.Helper()

	out, err := runUntilError(t, lines...)
	require.NoError(t, err)

	return out
}

func TestScenarios(t *testing.T) {

	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "loop then done",
			lines: []string{`10 FOR I=1 TO 3:PRINT I:NEXT I:PRINT "DONE" I`, "RUN"},
			want:  "1\n2\n3\nDONE4\n",
		},
		{
			name: "read data in a loop",
			lines: []string{"10 data sup,dog,1", "20 FOR I=1 TO 3", "30 READ A$",
				"40 PRINT A$", "50 NEXT I", "RUN"},
			want: "sup\ndog\n1\n",
		},
		{
			name:  "user function",
			lines: []string{"10 DEF FNA(X) = X+1", "20 PRINT FNA(1)", "RUN"},
			want:  "2\n",
		},
		{
			name:  "loop variable after exit",
			lines: []string{"FOR I=1 TO 3:NEXT I", "PRINT I"},
			want:  "4\n",
		},
		{
			name:  "redefined line",
			lines: []string{"10 PRINT 1", "10 PRINT 2", "RUN"},
			want:  "2\n",
		},
		{
			name:  "independent names",
			lines: []string{`A=1:A$="S":A(1)=5`, "PRINT A;A$;A(1)"},
			want:  "1S5\n",
		},
		{
			name:  "restore",
			lines: []string{"10 DATA 7,8", "20 READ A:RESTORE:READ B:PRINT A;B", "RUN"},
			want:  "77\n",
		},
		{
			name:  "implicit array in range",
			lines: []string{"PRINT B(10);B$(0,10)", "B(3)=4:PRINT B(3)"},
			want:  "0\n4\n",
		},
		{
			name: "gosub and return",
			lines: []string{"10 GOSUB 100:PRINT \"BACK\":END", "100 PRINT \"SUB\"",
				"110 RETURN", "RUN"},
			want: "SUB\nBACK\n",
		},
		{
			name: "nested functions see caller parameters",
			lines: []string{"10 DEF FNA(X) = X+FNB(1)", "20 DEF FNB(Y) = X*Y",
				"30 PRINT FNA(3)", "RUN"},
			want: "6\n",
		},
		{
			name:  "computed goto",
			lines: []string{"10 GOTO 10*3", "20 PRINT 20", "30 PRINT 30", "RUN"},
			want:  "30\n",
		},
		{
			name:  "next with a list",
			lines: []string{"FOR I=1 TO 2:FOR J=1 TO 2:PRINT I;J;\" \";:NEXT J,I"},
			want:  "11 12 21 22 ",
		},
		{
			name:  "bare next",
			lines: []string{"FOR I=1 TO 3 STEP 2:PRINT I:NEXT", "PRINT I"},
			want:  "1\n3\n5\n",
		},
		{
			name:  "read list and dim list",
			lines: []string{"10 DIM A(2),B$(1)", "20 READ A(2),B$(1)", "30 DATA 5,x", "40 PRINT A(2);B$(1)", "RUN"},
			want:  "5x\n",
		},
		{
			name:  "end stops the run",
			lines: []string{"10 PRINT 1:END:PRINT 2", "20 PRINT 3", "RUN"},
			want:  "1\n",
		},
		{
			name:  "list",
			lines: []string{"20 print x", "10 rem hello", "LIST"},
			want:  "10 REM hello\n20 PRINT X\n",
		},
		{
			name:  "trace",
			lines: []string{"TRACE", "10 PRINT 1", "20 PRINT 2", "RUN", "NOTRACE", "RUN"},
			want:  "#10 1\n#20 2\n1\n2\n",
		},
		{
			name:  "dim without subscripts",
			lines: []string{"DIM"},
			want:  "WARNING: DIM WITHOUT SUBSCRIPTS IGNORED\n",
		},
		{
			name:  "run clears variables",
			lines: []string{"10 PRINT A", "A=5", "RUN"},
			want:  "0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, runLines(t, tt.lines...))
		})
	}
}

func TestPrint(t *testing.T) {

	tests := []struct {
		line string
		want string
	}{
		{"PRINT 2*3+2*4", "14\n"},
		{"PRINT (5+3)*4", "32\n"},
		{"PRINT 15/5*3", "9\n"},
		{"PRINT 7/2", "3.5\n"},
		{"PRINT 2^3^2", "64\n"},
		{"PRINT -3+1", "-2\n"},
		{"PRINT 1+2=3", "1\n"},
		{"PRINT 1<2<3", "1\n"},
		{`PRINT "A"<"B";"B"<>"B"`, "10\n"},
		{"PRINT NOT 0;NOT 5", "10\n"},
		{"PRINT 1 AND 0 OR 1", "1\n"},
		{`PRINT "AB"+"CD"`, "ABCD\n"},
		{"PRINT 1,2", "1\t2\n"},
		{"PRINT 1;2", "12\n"},
		{"PRINT 1;,2", "12\n"},
		{`PRINT "A";`, "A"},
		{"PRINT", "\n"},
		{"? 0.5", "0.5\n"},
		{`PRINT "X" 1+1 "Y"`, "X2Y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			require.Equal(t, tt.want, runLines(t, tt.line))
		})
	}
}

func TestIf(t *testing.T) {

	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"true runs one statement", []string{`IF 1 THEN PRINT "Y":PRINT "Z"`}, "Y\n"},
		{"false drops the line", []string{`IF 0 THEN PRINT "Y":PRINT "Z"`}, ""},
		{"else", []string{`IF 0 THEN PRINT "Y" ELSE PRINT "N":PRINT "Z"`}, "N\n"},
		{"true skips else", []string{`IF 1 THEN PRINT "Y" ELSE PRINT "N"`}, "Y\n"},
		{"string condition", []string{`A$="X":IF A$ THEN PRINT "Y"`}, "Y\n"},
		{"then line number", []string{"10 IF 1 THEN 30", "20 PRINT 2", "30 PRINT 3", "RUN"}, "3\n"},
		{"else line number", []string{"10 IF 0 THEN 20 ELSE 30", "20 PRINT 2", "30 PRINT 3", "RUN"}, "3\n"},
		{"if goto", []string{"10 IF 2>1 GOTO 30", "20 PRINT 2", "30 PRINT 3", "RUN"}, "3\n"},
		{"crunched", []string{"X=1:Y=2:IFXTHENPRINTY"}, "2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, runLines(t, tt.lines...))
		})
	}
}

func TestRuntimeErrors(t *testing.T) {

	tests := []struct {
		name  string
		lines []string
		want  error
	}{
		{"division by zero", []string{"PRINT 5/0"}, ErrDivisionByZero},
		{"loop forgetting", []string{"FOR J=1 TO 3:FOR I=1 TO 3:NEXT J:NEXT I"}, ErrNextWithoutFor},
		{"next without for", []string{"NEXT"}, ErrNextWithoutFor},
		{"gosub recursion", []string{"10 GOSUB 10", "RUN"}, ErrStackOverflow},
		{"function recursion", []string{"10 DEF FNR(X) = FNR(X)", "20 PRINT FNR(1)", "RUN"}, ErrStackOverflow},
		{"deleted line", []string{"10 PRINT 1", "10", "GOTO 10"}, ErrUndefinedStatement},
		{"redim", []string{"DIM A(1):DIM A(1)"}, ErrRedimensionedArray},
		{"implicit bound", []string{"PRINT B(11)"}, ErrBadSubscript},
		{"wrong arity", []string{"DIM A(2):PRINT A(1,1)"}, ErrBadSubscript},
		{"negative subscript", []string{"PRINT B(-1)"}, ErrIllegalQuantity},
		{"huge array", []string{"DIM A(10000,10000)"}, ErrArrayTooLarge},
		{"type mismatch", []string{`A = "X"`}, ErrTypeMismatch},
		{"mixed compare", []string{`PRINT 1 = "1"`}, ErrTypeMismatch},
		{"string minus", []string{`PRINT "A" - "B"`}, ErrTypeMismatch},
		{"out of data", []string{"READ A"}, ErrOutOfData},
		{"return without gosub", []string{"RETURN"}, ErrReturnWithoutGosub},
		{"def in immediate mode", []string{"DEF FNA(X) = X"}, ErrIllegalDirect},
		{"cont without break", []string{"CONT"}, ErrCannotContinue},
		{"rnd negative", []string{"PRINT RND(-1)"}, ErrUnimplemented},
		{"bad line number", []string{"GOTO 1.5"}, ErrIllegalQuantity},
		{"unexpected token", []string{"PRINT 1)"}, ErrSyntax},
		{"missing paren", []string{"PRINT (1"}, ErrSyntax},
		{"unterminated string", []string{`PRINT "X`}, ErrSyntax},
		{"function result type", []string{`10 DEF FNA(X) = "S"`, "20 PRINT FNA(1)", "RUN"}, ErrTypeMismatch},
		{"string loop variable", []string{"FOR A$=1 TO 2"}, ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runUntilError(t, tt.lines...)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestErrorText(t *testing.T) {

	_, err := runUntilError(t, "PRINT 5/0")
	require.Contains(t, err.Error(), "DIVISION BY ZERO")

	_, err = runUntilError(t, "10 GOSUB 100", "100 PRINT 1/0", "RUN")
	require.Equal(t, "DIVISION BY ZERO IN 100", err.Error())

	_, err = runUntilError(t, "10 GOSUB 10", "RUN")
	require.Equal(t, "OUT OF MEMORY (STACK OVERFLOW) IN 10", err.Error())
}

func TestDataTypeMismatchNamesDataLine(t *testing.T) {

	_, err := runUntilError(t, "10 READ A", "50 DATA X", "RUN")
	require.ErrorIs(t, err, ErrDataTypeMismatch)
	require.NotErrorIs(t, err, ErrTypeMismatch)

	var be *Error
	require.ErrorAs(t, err, &be)
	require.Equal(t, NumberedLine(50), be.Line)
}

func TestDataOrderIgnoresPlacement(t *testing.T) {

	loop := []string{"20 FOR I=1 TO 3", "30 READ A", "40 PRINT A;", "50 NEXT I"}

	placements := map[string][]string{
		"before":      append([]string{"10 DATA 1,2,3"}, loop...),
		"after":       append(append([]string(nil), loop...), "60 DATA 1,2,3"),
		"interleaved": append(append([]string(nil), loop...), "25 DATA 1", "35 DATA 2", "55 DATA 3"),
	}

	for name, lines := range placements {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, "123", runLines(t, append(lines, "RUN")...))
		})
	}
}

func TestErrorResetsStacks(t *testing.T) {

	in := New(DefaultOptions())

	_, err := submit(t, in, "10 GOSUB 100")
	require.NoError(t, err)
	_, err = submit(t, in, "100 PRINT 1/0")
	require.NoError(t, err)

	_, err = submit(t, in, "RUN")
	require.ErrorIs(t, err, ErrDivisionByZero)
	require.Equal(t, Idle, in.State())
	require.Equal(t, 0, in.Program().CallDepth())

	_, err = submit(t, in, "RETURN")
	require.ErrorIs(t, err, ErrReturnWithoutGosub)

	_, err = submit(t, in, "CONT")
	require.ErrorIs(t, err, ErrCannotContinue)
}

func TestInput(t *testing.T) {

	in := New(DefaultOptions())

	for _, line := range []string{"10 INPUT A$", `20 PRINT "HELLO " A$`} {
		_, err := submit(t, in, line)
		require.NoError(t, err)
	}

	out, err := submit(t, in, "RUN")
	require.NoError(t, err)
	require.Empty(t, out)
	require.Equal(t, AwaitingInput, in.State())
	require.Equal(t, "?", in.InputPrompt())

	require.ErrorIs(t, in.StartEvaluating("PRINT 1"), ErrIllegalDirect)
	require.Equal(t, AwaitingInput, in.State())

	require.NoError(t, in.ProvideInput("buddy"))
	require.NoError(t, in.RunSteps(context.Background(), testStepLimit))
	require.Equal(t, "HELLO buddy\n", Render(in.TakeOutput()))
	require.Equal(t, Idle, in.State())

	require.ErrorIs(t, in.ProvideInput("late"), ErrNotAwaitingInput)
}

func TestInputReenter(t *testing.T) {

	in := New(DefaultOptions())

	for _, line := range []string{`10 INPUT "AGE";A`, "20 PRINT A*2"} {
		_, err := submit(t, in, line)
		require.NoError(t, err)
	}

	_, err := submit(t, in, "RUN")
	require.NoError(t, err)
	require.Equal(t, AwaitingInput, in.State())
	require.Equal(t, "AGE", in.InputPrompt())

	require.NoError(t, in.ProvideInput("abc"))
	require.NoError(t, in.RunSteps(context.Background(), testStepLimit))
	require.Equal(t, "?REENTER\n", Render(in.TakeOutput()))
	require.Equal(t, AwaitingInput, in.State())
	require.Equal(t, NumberedLine(10), in.Program().CurrentLine())

	require.NoError(t, in.ProvideInput("21"))
	require.NoError(t, in.RunSteps(context.Background(), testStepLimit))
	require.Equal(t, "42\n", Render(in.TakeOutput()))
}

func TestInputExtraIgnored(t *testing.T) {

	in := New(DefaultOptions())

	_, err := submit(t, in, `INPUT A$:PRINT A$`)
	require.NoError(t, err)
	require.Equal(t, AwaitingInput, in.State())

	require.NoError(t, in.ProvideInput(`"x,y",z`))
	require.NoError(t, in.RunSteps(context.Background(), testStepLimit))
	require.Equal(t, "?EXTRA IGNORED\nx,y\n", Render(in.TakeOutput()))
	require.Equal(t, StringValue("x,y"), in.Variable("a$"))
}

func TestStopAndCont(t *testing.T) {

	in := New(DefaultOptions())

	for _, line := range []string{"10 PRINT 1", "20 STOP", "30 PRINT 2"} {
		_, err := submit(t, in, line)
		require.NoError(t, err)
	}

	out, err := submit(t, in, "RUN")
	require.NoError(t, err)
	require.Equal(t, "1\nBREAK IN 20\n", out)
	require.Equal(t, Idle, in.State())

	out, err = submit(t, in, "CONT")
	require.NoError(t, err)
	require.Equal(t, "2\n", out)

	_, err = submit(t, in, "CONT")
	require.ErrorIs(t, err, ErrCannotContinue)
}

func TestStepLimitInterrupts(t *testing.T) {

	in := New(DefaultOptions())

	_, err := submit(t, in, "10 GOTO 10")
	require.NoError(t, err)

	out, err := submit(t, in, "RUN")
	require.ErrorIs(t, err, ErrStepLimit)
	require.Equal(t, "BREAK IN 10\n", out)
	require.Equal(t, Idle, in.State())

	require.NoError(t, in.StartEvaluating("CONT"))
	require.Equal(t, Running, in.State())
}

func TestCancelledContext(t *testing.T) {

	in := New(DefaultOptions())

	require.NoError(t, in.StartEvaluating("10 GOTO 10"))
	require.NoError(t, in.StartEvaluating("RUN"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, in.RunSteps(ctx, 0), context.Canceled)
	require.Equal(t, Idle, in.State())
	require.Equal(t, "BREAK IN 10\n", Render(in.TakeOutput()))
}

func TestInterruptWhileAwaitingInput(t *testing.T) {

	in := New(DefaultOptions())

	require.NoError(t, in.StartEvaluating("10 INPUT A"))
	_, err := submit(t, in, "RUN")
	require.NoError(t, err)
	require.Equal(t, AwaitingInput, in.State())

	in.Interrupt()
	require.Equal(t, Idle, in.State())
	require.Equal(t, "BREAK IN 10\n", Render(in.TakeOutput()))

	//
	// CONT runs the INPUT again
	//

	_, err = submit(t, in, "CONT")
	require.NoError(t, err)
	require.Equal(t, AwaitingInput, in.State())
}

func TestNewAndEmptyLines(t *testing.T) {

	in := New(DefaultOptions())

	require.NoError(t, in.StartEvaluating(""))
	require.Equal(t, Idle, in.State())

	require.NoError(t, in.StartEvaluating("  new  "))
	require.Equal(t, NewInterpreterRequested, in.State())
}

func TestRandomNumbers(t *testing.T) {

	in := New(DefaultOptions())

	_, err := submit(t, in, "A=RND(1):B=RND(0):C=RND(1)")
	require.NoError(t, err)

	a, _ := in.Variable("A").Number()
	b, _ := in.Variable("B").Number()
	require.Equal(t, a, b)
	require.GreaterOrEqual(t, a, 0.0)
	require.Less(t, a, 1.0)

	//
	// The same seed gives the same sequence
	//

	again := New(DefaultOptions())
	_, err = submit(t, again, "A=RND(1):C=RND(1)")
	require.NoError(t, err)
	require.Equal(t, in.Variable("C"), again.Variable("C"))
}

func TestInputInsideIf(t *testing.T) {

	tests := []struct {
		name string
		line string
	}{
		{"then", `10 IF 1 THEN INPUT A: PRINT "AFTER"`},
		{"else", `10 IF 0 THEN PRINT "NO" ELSE INPUT A: PRINT "AFTER"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			in := New(DefaultOptions())

			for _, line := range []string{tt.line, `20 PRINT "END" A`, "RUN"} {
				_, err := submit(t, in, line)
				require.NoError(t, err)
			}

			require.Equal(t, AwaitingInput, in.State())

			//
			// A bad reply asks again without leaving the branch
			//

			require.NoError(t, in.ProvideInput("X"))
			require.NoError(t, in.RunSteps(context.Background(), testStepLimit))
			require.Equal(t, AwaitingInput, in.State())
			require.Equal(t, "?REENTER\n", Render(in.TakeOutput()))

			require.NoError(t, in.ProvideInput("5"))
			require.NoError(t, in.RunSteps(context.Background(), testStepLimit))
			require.Equal(t, "END5\n", Render(in.TakeOutput()))
			require.Equal(t, Idle, in.State())
		})
	}
}

func TestInputAfterIfLine(t *testing.T) {

	//
	// An INPUT outside a branch keeps going after its colon
	//

	in := New(DefaultOptions())

	for _, line := range []string{`10 IF 1 THEN INPUT A`, `20 INPUT B: PRINT A+B`, "RUN"} {
		_, err := submit(t, in, line)
		require.NoError(t, err)
	}

	require.NoError(t, in.ProvideInput("1"))
	require.NoError(t, in.RunSteps(context.Background(), testStepLimit))
	require.Equal(t, AwaitingInput, in.State())

	require.NoError(t, in.ProvideInput("2"))
	require.NoError(t, in.RunSteps(context.Background(), testStepLimit))
	require.Equal(t, "3\n", Render(in.TakeOutput()))
}

func TestStartEvaluatingWhileRunning(t *testing.T) {

	in := New(DefaultOptions())

	require.NoError(t, in.StartEvaluating("10 GOTO 10"))
	require.NoError(t, in.StartEvaluating("RUN"))
	require.Equal(t, Running, in.State())

	require.ErrorIs(t, in.StartEvaluating("PRINT 1"), ErrIllegalDirect)
	require.ErrorIs(t, in.StartEvaluating("20 PRINT 2"), ErrIllegalDirect)
	require.Equal(t, Running, in.State())
	require.False(t, in.Program().HasLine(20))

	in.Interrupt()
	require.Equal(t, Idle, in.State())
}

func TestEditingDefLineForgetsFunction(t *testing.T) {

	in := New(DefaultOptions())

	for _, line := range []string{"10 DEF FNA(X) = X+1", "20 DEF FNB(X) = X*2", "RUN"} {
		_, err := submit(t, in, line)
		require.NoError(t, err)
	}

	out, err := submit(t, in, "PRINT FNA(1) FNB(1)")
	require.NoError(t, err)
	require.Equal(t, "22\n", out)

	_, err = submit(t, in, "10 REM X+1 IS GONE")
	require.NoError(t, err)

	require.NotContains(t, in.functions, "FNA")
	require.Contains(t, in.functions, "FNB")

	out, err = submit(t, in, "PRINT FNB(3)")
	require.NoError(t, err)
	require.Equal(t, "6\n", out)
}

func TestArrayShapeAndValueKinds(t *testing.T) {

	in := New(DefaultOptions())

	_, err := submit(t, in, `DIM A$(2,3):B$="X":C=1:PRINT D(4)`)
	require.NoError(t, err)

	require.Equal(t, []int{3, 4}, in.arrays["A$"].Dimensions())
	require.Equal(t, []int{maxImplicitSubscript + 1}, in.arrays["D"].Dimensions())

	require.True(t, in.Variable("B$").IsString())
	require.False(t, in.Variable("C").IsString())
	require.True(t, in.Variable("UNSET$").IsString())
}
