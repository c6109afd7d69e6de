package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/tklauser/go-sysconf"
	"golang.org/x/term"
)

//
// Are we talking to a person?  Only if both ends are a terminal
//

func checkTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

//
// Read terminal geometry
//

func setupWindow() {

	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return
	}

	g.window.rows, g.window.cols = rows, cols
}

func clearScreen() {
	fmt.Print(clearScreenSeq)
}

// We create two Liner instances.  One for the command line, and one
// for INPUT statements, since we want a scrollback history for the
// former but not the latter.  They are created and destroyed in LIFO
// order, as Close restores the terminal to the state it was in when
// that instance was created.

func setupLiners(historyFile string) {

	g.parserLiner = setupLiner()
	g.inputLiner = setupLiner()

	if historyFile == "" {
		return
	}

	if f, err := os.Open(historyFile); err == nil {
		_, _ = g.parserLiner.ReadHistory(f)
		f.Close()
	}
}

func setupLiner() *liner.State {

	l := liner.NewLiner()

	l.SetCtrlCAborts(true)

	return l
}

//
// Restore terminal state, saving the command history first.  We
// cannot call crash() from here, as that would recurse
//

func cleanupLiners(historyFile string) {

	if g.parserLiner != nil && historyFile != "" {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = g.parserLiner.WriteHistory(f)
			f.Close()
		}
	}

	cleanupLiner(&g.inputLiner)
	cleanupLiner(&g.parserLiner)
}

func cleanupLiner(linerState **liner.State) {

	if *linerState != nil {
		(*linerState).Close()
		*linerState = nil
	}
}

//
// Read a line from the terminal, with editing and (optionally)
// history.  ^C at the prompt comes back as errInterrupted, and ^D on
// an empty line as io.EOF
//

func readLine(l *liner.State, prompt string, history bool) (string, error) {

	line, err := l.Prompt(prompt)

	switch {
	case errors.Is(err, liner.ErrPromptAborted):
		return "", errInterrupted

	case err != nil:
		return "", err
	}

	if history && strings.TrimSpace(line) != "" {
		l.AppendHistory(line)
	}

	return line, nil
}

// linerSource feeds INPUT replies from the terminal.
type linerSource struct {
	l *liner.State
}

func (ls linerSource) readLine(prompt string) (string, error) {
	return readLine(ls.l, prompt, false)
}

//
// Print a fatal message and abort the process.  Make sure to put the
// terminal back first
//

func crash(msg string) {

	cleanupLiners("")

	if msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}

	os.Exit(1)
}

func printVersionInfo(w io.Writer) {

	banner := fmt.Sprintf("APPLESOFT BASIC version %s", VERSION)
	if buildTimestampStr != "" {
		banner += " - built " + buildTimestampStr
	}

	if pad := (g.window.cols - len(banner)) / 2; g.window.cols >= minWindowCols && pad > 0 {
		banner = strings.Repeat(" ", pad) + banner
	}

	fmt.Fprintln(w, banner)
}

//
// Take a filename for a source program and sanity check any
// possible suffix.  If no suffix, append ".bas" and return
// the new filename
//

func validateProgramFilename(filename string) (string, bool) {

	suffix, ok := getFilenameSuffix(filename)

	switch {
	case !ok || (suffix != "" && suffix != basFileSuffix):
		return "", false

	case suffix == "":
		return filename + basFileSuffix, true
	}

	return filename, true
}

//
// Return valid suffix if present.  Only the last path element counts
//

func getFilenameSuffix(filename string) (string, bool) {

	base := filename[strings.LastIndexByte(filename, '/')+1:]
	strs := strings.Split(base, ".")

	switch len(strs) {
	default:
		return "", false

	case 1:
		return "", true

	case 2:
		return "." + strs[1], true
	}
}

func pluralize(str string, num int64) string {

	//
	// Oddity: 0 is considered plural
	//

	if num != 1 {
		str += "s"
	}

	return str
}

//
// Initialize the clock
//

func initClock() {

	s.elapsed = time.Now()
	s.numStatements = 0
	s.utime, s.stime, _ = getCPUInfo()
}

func printStatistics(w io.Writer) {

	var mem runtime.MemStats

	fmt.Fprintln(w)
	printCpuUsage(w)
	runtime.ReadMemStats(&mem)
	fmt.Fprintf(w, "%dMB memory used\n", convertToMB(mem.HeapAlloc))
	fmt.Fprintf(w, "%d %s executed\n", s.numStatements,
		pluralize("statement", s.numStatements))
}

func printCpuUsage(w io.Writer) {

	elapsed := time.Since(s.elapsed)

	utime, stime, err := getCPUInfo()
	if err != nil {
		fmt.Fprintf(w, "CPU Usage: elapsed = %s\n", formatCPUTime(int64(elapsed.Seconds())))
		return
	}

	fmt.Fprintf(w, "CPU Usage: elapsed = %s / user = %s / system = %s\n",
		formatCPUTime(int64(elapsed.Seconds())),
		formatCPUTime(utime-s.utime), formatCPUTime(stime-s.stime))
}

func convertToMB(num uint64) uint64 {

	const MB = 1024 * 1024

	return (num + MB - 1) / MB
}

func formatCPUTime(t int64) string {

	var h, m int64

	if t >= 3600 {
		h = t / 3600
		t = t % 3600
	}

	if t >= 60 {
		m = t / 60
		t = t % 60
	}

	return fmt.Sprintf("%02d:%02d:%02d", h, m, t)
}

//
// User and system CPU seconds used so far, from /proc.  Only Linux
// has that; elsewhere we report an error and print elapsed time only
//

func getCPUInfo() (int64, int64, error) {

	clktck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil {
		return 0, 0, err
	}

	contents, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		return 0, 0, err
	}

	return parseCPUTimes(string(contents), clktck)
}

func parseCPUTimes(stat string, clktck int64) (int64, int64, error) {

	//
	// The command name (field 2) is in parentheses and may contain
	// blanks, so count fields from the closing parenthesis
	//

	if i := strings.LastIndexByte(stat, ')'); i >= 0 {
		stat = "pid (comm" + stat[i:]
	}

	fields := strings.Fields(stat)
	if len(fields) < 15 || clktck <= 0 {
		return 0, 0, errors.New("malformed /proc/self/stat")
	}

	utime, err := strconv.ParseInt(fields[13], 10, 64)
	if err != nil {
		return 0, 0, err
	}

	stime, err := strconv.ParseInt(fields[14], 10, 64)
	if err != nil {
		return 0, 0, err
	}

	return utime / clktck, stime / clktck, nil
}
