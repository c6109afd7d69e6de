package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is main without the exit, so deferred cleanup happens before
// the process goes away.
func run(args []string) int {

	fs := flag.NewFlagSet("applesoft", flag.ContinueOnError)

	configPath := fs.String("config", "", "read configuration from `file`")
	debug := fs.Bool("debug", false, "log interpreter activity to stderr")
	stats := fs.Bool("stats", false, "print execution statistics after RUN")
	dump := fs.Bool("dump", false, "dump the tokens of every line")
	maxSteps := fs.Int("max-steps", -1, "interrupt a line after `n` statements (0 = no limit)")
	seed := fs.Int64("seed", 0, "seed RND with `n` (0 = from the clock)")
	version := fs.Bool("v", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: applesoft [flags] [program]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *version {
		printVersionInfo(os.Stdout)
		return 0
	}

	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	path, explicit := defaultConfigPath(), false
	if *configPath != "" {
		path, explicit = *configPath, true
	}

	cfg, err := loadConfig(path, explicit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	//
	// Flags win over the configuration file
	//

	if *stats {
		cfg.Stats = true
	}

	if *dump {
		cfg.DumpTokens = true
	}

	if *maxSteps >= 0 {
		cfg.MaxSteps = *maxSteps
	}

	if *seed != 0 {
		cfg.Seed = *seed
	}

	logger := newLogger(os.Stderr, cfg.LogLevel, *debug)
	log.Logger = logger

	g.interactive = checkTerminal()

	var input lineSource
	stdin := &scannerSource{sc: bufio.NewScanner(os.Stdin), echo: os.Stdout}

	if g.interactive {
		setupWindow()
		setupLiners(cfg.HistoryFile)
		defer cleanupLiners(cfg.HistoryFile)
		input = linerSource{l: g.inputLiner}
	} else {
		input = stdin
	}

	go sigHdlr()

	ss := newSession(cfg, logger, os.Stdout, input)

	if fs.NArg() == 1 {
		if err := ss.loadFile(fs.Arg(0)); err != nil {
			reportError(os.Stderr, err)
			return 1
		}

		err := ss.execute("RUN")
		reportError(os.Stdout, err)

		if !g.interactive {
			if err != nil {
				return 1
			}
			return 0
		}
	}

	if !g.interactive {
		return ss.batch(stdin, os.Stdout)
	}

	clearScreen()
	printVersionInfo(os.Stdout)

	ss.repl()

	return 0
}

//
// Log to stderr in a form a person can read.  -debug turns on
// everything short of per statement tracing
//

func newLogger(w io.Writer, level string, debug bool) zerolog.Logger {

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}

	if debug {
		lvl = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(lvl).With().Timestamp().Logger()
}

func writeGoroutineStacks() {

	name := "goroutines-stacks"
	mode := (os.O_CREATE | os.O_WRONLY | os.O_TRUNC)

	dumpFile, err := os.OpenFile(name, mode, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to open %s (%s)\n", name, err)
		return
	}

	_ = pprof.Lookup("goroutine").WriteTo(dumpFile, 2)
	dumpFile.Close()

	crash(fmt.Sprintf("Dumping goroutine stacks to %v and exiting", name))
}

func sigHdlr() {

	ch := make(chan os.Signal, 1)

	signal.Ignore(syscall.SIGTSTP)

	signal.Notify(ch, syscall.SIGQUIT)
	signal.Notify(ch, syscall.SIGINT)
	signal.Notify(ch, syscall.SIGWINCH)

	for {
		sig := <-ch

		switch sig {

		default:
			crash(fmt.Sprintf("Unexpected signal %d", sig))

		case syscall.SIGWINCH:
			setupWindow()

		case syscall.SIGQUIT:
			writeGoroutineStacks() // does not return

		case syscall.SIGINT:
			interrupt()
		}
	}
}

//
// ^C stops whatever line is executing.  With nothing executing, a
// batch run just ends
//

func interrupt() {

	if cancel := g.cancel.Load(); cancel != nil {
		(*cancel)()
		return
	}

	if !g.interactive {
		crash("")
	}
}
