package interp

import (
	"context"
	"errors"
	"math/rand/v2"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
)

// FunctionDefinition is a DEF FN: its parameter names, and where its
// body expression starts (the first token after '=').
type FunctionDefinition struct {
	Params []string
	Body   ProgramLocation
}

var ErrNotAwaitingInput = errors.New("interpreter is not waiting for input")
var ErrStepLimit = errors.New("step limit reached")

// Interpreter runs one line at a time and exposes a resumable state
// machine.  A host submits a line with StartEvaluating, then calls
// ContinueEvaluating while the state is Running.  INPUT suspends the
// machine in AwaitingInput until ProvideInput is called.
type Interpreter struct {
	opts    Options
	log     zerolog.Logger
	program *Program
	state   State

	variables map[string]Value
	arrays    map[string]*ValueArray
	functions map[string]FunctionDefinition

	rng        *rand.Rand
	lastRandom float64

	output []OutputEvent
	trace  bool

	input       string
	hasInput    bool
	inputPrompt string

	//
	// An INPUT that suspended inside an IF branch.  Once it completes
	// the rest of its line is dropped, as for any other branch
	//

	branchInput    ProgramLocation
	hasBranchInput bool
}

func New(opts Options) *Interpreter {

	opts = opts.normalize()

	in := &Interpreter{
		opts:    opts,
		log:     opts.Logger,
		program: NewProgram(opts.MaxCallDepth, opts.MaxLoopDepth),
		rng:     rand.New(rand.NewPCG(uint64(opts.Seed), 0x5eed)),
	}

	in.clearVariables()
	in.lastRandom = in.rng.Float64()

	return in
}

func (in *Interpreter) clearVariables() {
	in.variables = make(map[string]Value)
	in.arrays = make(map[string]*ValueArray)
	in.functions = make(map[string]FunctionDefinition)
	in.hasBranchInput = false
}

func (in *Interpreter) State() State {
	return in.state
}

func (in *Interpreter) Program() *Program {
	return in.program
}

// InputPrompt is the prompt INPUT wants shown while AwaitingInput.
func (in *Interpreter) InputPrompt() string {
	return in.inputPrompt
}

// Variable returns a scalar variable's value, as a program would see
// it outside any function call.
func (in *Interpreter) Variable(name string) Value {

	name = strings.ToUpper(name)

	if v, ok := in.variables[name]; ok {
		return v
	}

	return zeroValueFor(name)
}

// TakeOutput returns and clears the pending output events.
func (in *Interpreter) TakeOutput() []OutputEvent {

	out := in.output
	in.output = nil

	return out
}

func (in *Interpreter) emit(e OutputEvent) {
	in.output = append(in.output, e)
}

func (in *Interpreter) print(s string) {
	in.emit(OutputEvent{Kind: OutputPrint, Text: s})
}

func (in *Interpreter) setState(s State) {

	if in.state != s {
		in.log.Debug().Stringer("from", in.state).Stringer("to", s).Msg("state")
	}

	in.state = s
}

//
// Commands that only make sense typed on their own line.  They are
// recognized on the raw text with blanks squeezed out, since some of
// them (NOTRACE) would not survive the tokenizer intact
//

var commandNames = map[string]bool{
	"RUN":     true,
	"LIST":    true,
	"NEW":     true,
	"CONT":    true,
	"TRACE":   true,
	"NOTRACE": true,
}

func bareCommand(line string) (string, bool) {

	var sb strings.Builder

	for i := 0; i < len(line); i++ {
		if !isBasicSpace(line[i]) {
			sb.WriteByte(toUpper(line[i]))
		}
	}

	cmd := sb.String()

	return cmd, commandNames[cmd]
}

// StartEvaluating submits one line.  It is refused while a line is
// still Running or AwaitingInput.  Commands run at once; a line
// that starts with a line number is stored (or deleted) and leaves
// the machine Idle; anything else becomes the immediate line and the
// machine goes Running.
func (in *Interpreter) StartEvaluating(line string) error {

	if in.state == Running || in.state == AwaitingInput {
		return newError(IllegalDirect)
	}

	line = strings.TrimRight(line, "\r\n")

	if cmd, ok := bareCommand(line); ok {
		return in.executeCommand(cmd)
	}

	tokens, _, err := Tokenize(line)
	if err != nil {
		in.setState(Idle)
		return err
	}

	if n, ok := leadingLineNumber(tokens); ok {
		in.program.SetNumberedLine(n, tokens[1:])
		in.forgetFunctionsOn(NumberedLine(n))
		in.setState(Idle)
		return nil
	}

	if len(tokens) == 0 {
		in.setState(Idle)
		return nil
	}

	if !in.branchInput.Line.Numbered {
		in.hasBranchInput = false
	}

	in.program.SetImmediateLine(tokens)
	in.setState(Running)

	return nil
}

//
// A DEF only records where its body starts, so editing the line it is
// on leaves the definition pointing at the wrong tokens.  Drop it; the
// program has to run the DEF again
//

func (in *Interpreter) forgetFunctionsOn(line ProgramLine) {

	for name, def := range in.functions {
		if def.Body.Line == line {
			delete(in.functions, name)
		}
	}
}

func leadingLineNumber(tokens []Token) (uint64, bool) {

	if len(tokens) == 0 || tokens[0].Kind != TokNumber {
		return 0, false
	}

	n, err := lineNumber(tokens[0].num)
	if err != nil {
		return 0, false
	}

	return n, true
}

func (in *Interpreter) executeCommand(cmd string) error {

	in.log.Debug().Str("command", cmd).Msg("command")

	switch cmd {
	case "RUN":
		in.clearVariables()
		in.program.Reset()
		if in.program.StartAtFirstLine() {
			in.setState(Running)
		} else {
			in.setState(Idle)
		}

	case "LIST":
		if listing := in.program.Listing(); listing != "" {
			in.print(listing)
		}
		in.setState(Idle)

	case "NEW":
		in.setState(NewInterpreterRequested)

	case "CONT":
		if err := in.program.ContinueFromBreakpoint(); err != nil {
			in.setState(Idle)
			return err
		}
		in.setState(Running)

	case "TRACE":
		in.trace = true

	case "NOTRACE":
		in.trace = false
	}

	return nil
}

// ContinueEvaluating executes exactly one statement.  It does nothing
// unless the state is Running.
func (in *Interpreter) ContinueEvaluating() (err error) {

	if in.state != Running {
		return nil
	}

	for in.program.AtEndOfLine() {
		if !in.program.AdvanceLine() {
			in.setState(Idle)
			return nil
		}
	}

	line := in.program.CurrentLine()

	//
	// An interpreter bug must not take the host down with it.  Turn
	// any runtime panic into an error for the statement at hand
	//

	defer func() {
		if r := recover(); r != nil {
			in.log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).
				Msg("internal error")
			err = in.fail(internalError("%v", r), line)
		}
	}()

	if in.trace && line.Numbered {
		in.emit(OutputEvent{Kind: OutputTrace, Line: line})
	}

	in.log.Trace().Stringer("line", line).Int("token", in.program.loc.TokenIndex).
		Msg("statement")

	if err := in.step(); err != nil {
		return in.handleStepError(err, line)
	}

	if in.program.AtEndOfLine() && !in.program.AdvanceLine() {
		in.setState(Idle)
	}

	return nil
}

func (in *Interpreter) handleStepError(err error, line ProgramLine) error {

	var sig signal

	if errors.As(err, &sig) {
		switch sig {
		case signalEnd:
			in.setState(Idle)

		case signalStop:
			at, _ := in.program.Break()
			in.emit(OutputEvent{Kind: OutputBreak, Line: at})
			in.setState(Idle)

		case signalAwaitInput:
			in.setState(AwaitingInput)
		}

		return nil
	}

	return in.fail(err, line)
}

//
// A runtime error ends the run.  Attach the line (unless the error
// already names a more specific one, as for bad DATA), drop the stacks
// and any breakpoint, and go Idle
//

func (in *Interpreter) fail(err error, line ProgramLine) error {

	var be *Error

	if errors.As(err, &be) && !be.Line.Numbered {
		be.Line = line
	}

	in.program.ResetStacks()
	in.program.ClearBreakpoint()
	in.hasInput = false
	in.hasBranchInput = false
	in.setState(Idle)

	in.log.Debug().Err(err).Stringer("line", line).Msg("runtime error")

	return err
}

// ProvideInput hands a reply to a suspended INPUT statement, which is
// then re-executed from the start.
func (in *Interpreter) ProvideInput(text string) error {

	if in.state != AwaitingInput {
		return ErrNotAwaitingInput
	}

	in.input = strings.TrimRight(text, "\r\n")
	in.hasInput = true
	in.setState(Running)

	return nil
}

// Interrupt is a host-delivered break (Ctrl-C).  It takes effect
// between statements: the current location becomes the breakpoint and
// the machine goes Idle.
func (in *Interpreter) Interrupt() {

	if in.state != Running && in.state != AwaitingInput {
		return
	}

	at, _ := in.program.Break()
	in.emit(OutputEvent{Kind: OutputBreak, Line: at})
	in.hasInput = false
	in.setState(Idle)
}

// RunSteps drives ContinueEvaluating while the state is Running.
// Cancelling ctx, or taking more than maxSteps steps (when maxSteps is
// positive), interrupts the program.  It returns at the first error,
// or when the machine stops Running.
func (in *Interpreter) RunSteps(ctx context.Context, maxSteps int) error {

	_, err := in.RunStepsFunc(ctx, maxSteps, nil)

	return err
}

// RunStepsFunc is RunSteps calling after (if not nil) once each
// statement has run, and reporting how many statements ran.
func (in *Interpreter) RunStepsFunc(ctx context.Context, maxSteps int, after func()) (int, error) {

	steps := 0

	for in.state == Running {
		if err := ctx.Err(); err != nil {
			in.Interrupt()
			return steps, err
		}

		if maxSteps > 0 && steps >= maxSteps {
			in.Interrupt()
			return steps, ErrStepLimit
		}

		err := in.ContinueEvaluating()
		steps++

		if after != nil {
			after()
		}

		if err != nil {
			return steps, err
		}
	}

	return steps, nil
}
