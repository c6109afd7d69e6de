package main

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/peterh/liner"
)

//
// Constants
//

const VERSION = "1.0.0"

const basFileSuffix = ".bas"

const defaultPrompt = "]"
const defaultConfigFile = ".applesoft.yml"
const defaultHistoryFile = ".applesoft_history"
const defaultLogLevel = "warn"

const minWindowCols = 40

const clearScreenSeq = "\033[2J\033[H"

//
// Type definitions
//

type window struct {
	rows int
	cols int
}

//
// Global variables
//

var buildTimestampStr string

//
// Process wide terminal state.  The liners exist only when we are
// talking to a terminal
//

var g struct {
	parserLiner *liner.State
	inputLiner  *liner.State
	window      window
	interactive bool
	exiting     bool

	//
	// sigHdlr cancels whatever line is executing through this
	//

	cancel atomic.Pointer[context.CancelFunc]
}

//
// Runtime statistics for executing program
//

var s struct {
	elapsed       time.Time
	utime         int64
	stime         int64
	numStatements int64
}
