package interp

import (
	"strings"
)

type OutputKind int

const (
	OutputPrint OutputKind = iota
	OutputWarning
	OutputBreak
	OutputTrace
	OutputExtraIgnored
	OutputReenter
)

// OutputEvent is something the program wants shown.  Print events
// carry their own line breaks; the others are single markers.
type OutputEvent struct {
	Kind OutputKind
	Text string
	Line ProgramLine
}

func inLine(line ProgramLine) string {

	if !line.Numbered {
		return ""
	}

	return " IN " + line.String()
}

func (e OutputEvent) String() string {

	switch e.Kind {
	case OutputPrint:
		return e.Text

	case OutputWarning:
		return "WARNING" + inLine(e.Line) + ": " + e.Text

	case OutputBreak:
		return "BREAK" + inLine(e.Line)

	case OutputTrace:
		return "#" + e.Line.String()

	case OutputExtraIgnored:
		return "?EXTRA IGNORED"

	case OutputReenter:
		return "?REENTER"
	}

	return ""
}

// Render turns a batch of events into terminal text.  Trace markers
// run together on one line, the way they appear on an Apple II.
func Render(events []OutputEvent) string {

	var sb strings.Builder

	for _, e := range events {
		sb.WriteString(e.String())

		switch e.Kind {
		case OutputPrint:
			// NOP

		case OutputTrace:
			sb.WriteByte(' ')

		default:
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
