package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/GaryLuck/applesoft/interp"
)

var helpTopics = map[string]string{
	"BYE":     "Exit from APPLESOFT BASIC",
	"CONT":    "Continue execution of user program after STOP, END or ^C",
	"HELP":    "List the commands, or describe one of them",
	"LIST":    "List the stored program",
	"NEW":     "Erase the current program and all variables",
	"NOTRACE": "Stop printing line numbers as they execute",
	"RUN":     "Clear variables and execute the current program",
	"TRACE":   "Print each line number as it executes",

	"STATEMENTS": "DATA DEF DIM END FOR GOSUB GOTO IF INPUT LET NEXT" +
		" PRINT READ REM RESTORE RETURN STOP",
}

func executeHelp(w io.Writer, topic string) {

	if topic == "" {
		names := make([]string, 0, len(helpTopics)+1)
		for name := range helpTopics {
			names = append(names, strings.ToLower(name))
		}
		names = append(names, "functions")
		slices.Sort(names)

		for _, name := range names {
			fmt.Fprintln(w, name)
		}
		return
	}

	if topic == "FUNCTIONS" {
		names := interp.BuiltinNames()
		slices.Sort(names)
		fmt.Fprintln(w, strings.Join(names, " "))
		return
	}

	if text, ok := helpTopics[topic]; ok {
		fmt.Fprintln(w, text)
		return
	}

	fmt.Fprintf(w, "No help for %s\n", topic)
}
