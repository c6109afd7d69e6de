package main

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/GaryLuck/applesoft/interp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestValidateProgramFilename(t *testing.T) {

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"hello", "hello.bas", true},
		{"hello.bas", "hello.bas", true},
		{"hello.txt", "", false},
		{"a.b.bas", "", false},
		{"games.d/star", "games.d/star.bas", true},
	}

	for _, tt := range tests {
		got, ok := validateProgramFilename(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatCPUTime(t *testing.T) {

	require.Equal(t, "00:00:00", formatCPUTime(0))
	require.Equal(t, "00:01:01", formatCPUTime(61))
	require.Equal(t, "01:02:05", formatCPUTime(3725))
}

func TestParseCPUTimes(t *testing.T) {

	utime, stime, err := parseCPUTimes("4242 (basic (test)) S 1 2 3 4 5 6 7 8 9 10 500 300 0 0\n", 100)
	require.NoError(t, err)
	require.Equal(t, int64(5), utime)
	require.Equal(t, int64(3), stime)

	_, _, err = parseCPUTimes("4242 (short) S 1", 100)
	require.Error(t, err)
}

func TestPluralize(t *testing.T) {

	require.Equal(t, "statements", pluralize("statement", 0))
	require.Equal(t, "statement", pluralize("statement", 1))
	require.Equal(t, "statements", pluralize("statement", 2))
}

func TestPrintStatistics(t *testing.T) {

	var out bytes.Buffer

	initClock()
	s.numStatements = 1
	printStatistics(&out)

	require.Contains(t, out.String(), "CPU Usage: elapsed = 00:00:00")
	require.Contains(t, out.String(), "1 statement executed\n")
}

func TestErrorText(t *testing.T) {

	require.Equal(t, "INTERRUPTED", errorText(errInterrupted))
	require.Equal(t, "STEP LIMIT REACHED", errorText(interp.ErrStepLimit))
	require.Equal(t, "END OF INPUT", errorText(io.EOF))
	require.Equal(t, "disk on fire", errorText(errors.New("disk on fire")))

	var out bytes.Buffer
	reportError(&out, nil)
	require.Empty(t, out.String())
}

func TestNewLogger(t *testing.T) {

	var out bytes.Buffer

	require.Equal(t, zerolog.WarnLevel, newLogger(&out, "warn", false).GetLevel())
	require.Equal(t, zerolog.DebugLevel, newLogger(&out, "warn", true).GetLevel())
	require.Equal(t, zerolog.WarnLevel, newLogger(&out, "bogus", false).GetLevel())

	logger := newLogger(&out, "info", false)
	logger.Info().Msg("hello")
	require.Contains(t, out.String(), "hello")
}
