package interp

import (
	"github.com/rs/zerolog"
)

//
// Constants
//

const defaultMaxCallDepth = 256
const defaultMaxLoopDepth = 256
const defaultMaxArrayElements = 1000000

const maxImplicitSubscript = 10

const defaultInputPrompt = "?"

//
// Interpreter states, as seen by a host driving the step API
//

type State int

const (
	Idle State = iota
	Running
	AwaitingInput
	NewInterpreterRequested
)

var stateNames = [...]string{
	Idle:                    "Idle",
	Running:                 "Running",
	AwaitingInput:           "AwaitingInput",
	NewInterpreterRequested: "NewInterpreterRequested",
}

func (s State) String() string {

	if s < 0 || int(s) >= len(stateNames) {
		return "State(?)"
	}

	return stateNames[s]
}

// Options bounds the resources a program may consume and carries the
// host-owned pieces (RNG seed, logger).
type Options struct {
	MaxCallDepth     int
	MaxLoopDepth     int
	MaxArrayElements int
	Seed             int64
	Logger           zerolog.Logger
}

func DefaultOptions() Options {

	return Options{
		MaxCallDepth:     defaultMaxCallDepth,
		MaxLoopDepth:     defaultMaxLoopDepth,
		MaxArrayElements: defaultMaxArrayElements,
		Seed:             1,
		Logger:           zerolog.Nop(),
	}
}

//
// Fill in anything the caller left zeroed
//

func (o Options) normalize() Options {

	if o.MaxCallDepth <= 0 {
		o.MaxCallDepth = defaultMaxCallDepth
	}

	if o.MaxLoopDepth <= 0 {
		o.MaxLoopDepth = defaultMaxLoopDepth
	}

	if o.MaxArrayElements <= 0 {
		o.MaxArrayElements = defaultMaxArrayElements
	}

	return o
}
