package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/GaryLuck/applesoft/interp"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// config is the host configuration, read from $HOME/.applesoft.yml
// unless -config names another file.  Flags override it.
type config struct {
	Prompt           string `yaml:"prompt"`
	HistoryFile      string `yaml:"history_file"`
	MaxCallDepth     int    `yaml:"max_call_depth"`
	MaxLoopDepth     int    `yaml:"max_loop_depth"`
	MaxArrayElements int    `yaml:"max_array_elements"`
	MaxSteps         int    `yaml:"max_steps"`
	Seed             int64  `yaml:"seed"`
	LogLevel         string `yaml:"log_level"`
	Stats            bool   `yaml:"stats"`
	DumpTokens       bool   `yaml:"dump_tokens"`
}

func defaultConfig() config {

	opts := interp.DefaultOptions()

	cfg := config{
		Prompt:           defaultPrompt,
		MaxCallDepth:     opts.MaxCallDepth,
		MaxLoopDepth:     opts.MaxLoopDepth,
		MaxArrayElements: opts.MaxArrayElements,
		LogLevel:         defaultLogLevel,
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, defaultHistoryFile)
	}

	return cfg
}

func defaultConfigPath() string {

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, defaultConfigFile)
}

//
// Load the configuration at path.  A missing file is fine unless the
// user named it explicitly; a malformed one never is
//

func loadConfig(path string, explicit bool) (config, error) {

	if path == "" {
		return defaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return defaultConfig(), nil
		}
		return config{}, fmt.Errorf("config: open %s: %w", path, err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

func parseConfig(data []byte) (config, error) {

	cfg := defaultConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return config{}, err
	}

	if err := cfg.validate(); err != nil {
		return config{}, err
	}

	return cfg, nil
}

func (cfg config) validate() error {

	switch {
	case cfg.MaxCallDepth < 0:
		return errors.New("max_call_depth must not be negative")

	case cfg.MaxLoopDepth < 0:
		return errors.New("max_loop_depth must not be negative")

	case cfg.MaxArrayElements < 0:
		return errors.New("max_array_elements must not be negative")

	case cfg.MaxSteps < 0:
		return errors.New("max_steps must not be negative")
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	return nil
}

// options builds the interpreter options this configuration asks for.
// A zero seed means a fresh one from the clock for every interpreter,
// so a NEW starts a new random sequence.
func (cfg config) options(logger zerolog.Logger) interp.Options {

	opts := interp.DefaultOptions()

	opts.Seed = cfg.Seed
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	opts.MaxCallDepth = cfg.MaxCallDepth
	opts.MaxLoopDepth = cfg.MaxLoopDepth
	opts.MaxArrayElements = cfg.MaxArrayElements
	opts.Logger = logger

	return opts
}
