package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/GaryLuck/applesoft/interp"
)

//
// Host level errors.  Anything the interpreter itself reports is an
// *interp.Error and already carries its own text
//

var errInterrupted = errors.New("interrupted")
var errBadFilename = errors.New("invalid program filename")

//
// Errors are shown the way the machine showed them: a '?' and the
// message, on a line of their own
//

func reportError(w io.Writer, err error) {

	if err == nil {
		return
	}

	fmt.Fprintf(w, "?%s\n", errorText(err))
}

func errorText(err error) string {

	switch {
	case errors.Is(err, interp.ErrStepLimit):
		return "STEP LIMIT REACHED"

	case errors.Is(err, errInterrupted):
		return "INTERRUPTED"

	case errors.Is(err, io.EOF):
		return "END OF INPUT"
	}

	return err.Error()
}
