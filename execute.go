package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GaryLuck/applesoft/interp"
	"github.com/goforj/godump"
	"github.com/rs/zerolog"
)

//
// Where INPUT replies (and, in batch mode, command lines) come from
//

type lineSource interface {
	readLine(prompt string) (string, error)
}

// scannerSource reads lines from a non-terminal, echoing each prompt
// so the output reads the same as an interactive session.
type scannerSource struct {
	sc   *bufio.Scanner
	echo io.Writer
}

func (ss *scannerSource) readLine(prompt string) (string, error) {

	fmt.Fprint(ss.echo, prompt)

	if !ss.sc.Scan() {
		if err := ss.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	return ss.sc.Text(), nil
}

//
// A session owns one interpreter and drives it a line at a time.
// Both the REPL and batch mode go through execute
//

type session struct {
	in    *interp.Interpreter
	cfg   config
	log   zerolog.Logger
	out   io.Writer
	input lineSource
}

func newSession(cfg config, logger zerolog.Logger, out io.Writer, input lineSource) *session {

	ss := &session{cfg: cfg, log: logger, out: out, input: input}
	ss.in = interp.New(cfg.options(logger))

	return ss
}

//
// Show whatever the interpreter has printed since we last looked
//

func (ss *session) flush() {

	if events := ss.in.TakeOutput(); len(events) > 0 {
		fmt.Fprint(ss.out, interp.Render(events))
	}
}

//
// Shell commands that are not BASIC: HELP and BYE.  Everything else
// goes to the interpreter
//

func (ss *session) hostCommand(line string) bool {

	fields := strings.Fields(strings.ToUpper(line))
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "HELP":
		topic := ""
		if len(fields) > 1 {
			topic = fields[1]
		}
		executeHelp(ss.out, topic)
		return true

	case "BYE":
		if len(fields) == 1 {
			g.exiting = true
			return true
		}
	}

	return false
}

func isRunCommand(line string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(line), ""), "RUN")
}

// execute submits one line and drives the interpreter until it stops
// running.  A NEW leaves a fresh interpreter behind.
func (ss *session) execute(line string) error {

	if ss.hostCommand(line) {
		return nil
	}

	if ss.cfg.DumpTokens {
		ss.dumpTokens(line)
	}

	running := isRunCommand(line)
	if running {
		initClock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g.cancel.Store(&cancel)
	defer g.cancel.Store(nil)

	err := ss.in.StartEvaluating(line)
	if err == nil {
		err = ss.drive(ctx)
	}

	ss.flush()

	if ss.in.State() == interp.NewInterpreterRequested {
		ss.log.Debug().Msg("new interpreter")
		ss.in = interp.New(ss.cfg.options(ss.log))
	}

	if running && ss.cfg.Stats {
		printStatistics(ss.out)
	}

	return err
}

//
// Step the interpreter one statement at a time, so output shows up
// as it is produced and an interrupt is seen between statements.
// max_steps counts every statement run for this line, across INPUT
//

func (ss *session) drive(ctx context.Context) error {

	steps := 0

	for {
		ss.flush()

		switch ss.in.State() {
		case interp.Running:
			limit := 0
			if ss.cfg.MaxSteps > 0 {
				limit = ss.cfg.MaxSteps - steps
				if limit <= 0 {
					ss.in.Interrupt()
					ss.flush()
					return interp.ErrStepLimit
				}
			}

			n, err := ss.in.RunStepsFunc(ctx, limit, ss.counted)
			steps += n

			switch {
			case err == nil:
				// NOP

			case ctx.Err() != nil && errors.Is(err, ctx.Err()):
				// interrupted; the BREAK is already out

			default:
				ss.flush()
				return err
			}

		case interp.AwaitingInput:
			reply, err := ss.input.readLine(ss.in.InputPrompt() + " ")

			switch {
			case errors.Is(err, errInterrupted):
				ss.in.Interrupt()

			case err != nil:
				ss.in.Interrupt()
				ss.flush()
				return err

			default:
				if err := ss.in.ProvideInput(reply); err != nil {
					return err
				}
			}

		default:
			return nil
		}
	}
}

func (ss *session) counted() {

	s.numStatements++
	ss.flush()
}

//
// Load a program file: every line must be a numbered line
//

func (ss *session) load(r io.Reader) error {

	sc := bufio.NewScanner(r)

	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if err := ss.in.StartEvaluating(line); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}

		if ss.in.State() != interp.Idle {
			ss.in.Interrupt()
			ss.in.TakeOutput()
			return fmt.Errorf("line %d: not a numbered line", n)
		}
	}

	return sc.Err()
}

func (ss *session) loadFile(filename string) error {

	name, ok := validateProgramFilename(filename)
	if !ok {
		return errBadFilename
	}

	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	ss.log.Debug().Str("file", name).Msg("loading program")

	return ss.load(f)
}

//
// Dump the tokens of a line, for debugging the tokenizer
//

type tokenDump struct {
	Kind  string
	Text  string
	Start int
	End   int
}

func (ss *session) dumpTokens(line string) {

	tokens, spans, err := interp.Tokenize(line)
	if err != nil {
		return
	}

	dump := make([]tokenDump, len(tokens))
	for i, tok := range tokens {
		dump[i] = tokenDump{Kind: tok.Kind.String(), Text: tok.String(),
			Start: spans[i].Start, End: spans[i].End}
	}

	godump.Dump(dump)
}

//
// Batch mode: every line comes from src, and the first error ends
// the run
//

func (ss *session) batch(src lineSource, errOut io.Writer) int {

	for !g.exiting {
		line, err := src.readLine("")
		if errors.Is(err, io.EOF) {
			return 0
		}

		if err == nil {
			err = ss.execute(line)
		}

		if err != nil {
			reportError(errOut, err)
			return 1
		}
	}

	return 0
}

//
// Interactive mode: errors are reported and we carry on
//

func (ss *session) repl() {

	for !g.exiting {
		line, err := readLine(g.parserLiner, ss.cfg.Prompt, true)

		switch {
		case errors.Is(err, io.EOF):
			fmt.Fprintln(ss.out)
			return

		case errors.Is(err, errInterrupted):
			continue

		case err != nil:
			reportError(os.Stderr, err)
			return
		}

		reportError(ss.out, ss.execute(line))
	}
}
