// Package logging installs the process-wide zerolog logger for feeds,
// subscribers and tests.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLevel     = "MARKETWIRE_LOG_LEVEL"
	EnvFormat    = "MARKETWIRE_LOG_FORMAT"
	EnvTimestamp = "MARKETWIRE_LOG_TIMESTAMP"
	EnvNoColor   = "MARKETWIRE_LOG_NOCOLOR"
	EnvCaller    = "MARKETWIRE_LOG_CALLER"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Format selects human console output or one JSON object per line.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

type Config struct {
	Level     zerolog.Level
	Format    Format
	Timestamp bool
	NoColor   bool
	Caller    bool
	Out       io.Writer
}

var once sync.Once

func ConfigureRuntime() { Configure(ProfileRuntime) }

func ConfigureTests() { Configure(ProfileTest) }

// Configure applies the profile defaults with environment overrides. Only the
// first call in a process has an effect.
func Configure(profile Profile) {
	once.Do(func() {
		Apply(FromEnv(profile))
	})
}

// FromEnv returns the profile defaults overridden by MARKETWIRE_LOG_*.
func FromEnv(profile Profile) Config {
	cfg := Defaults(profile)
	if lvl, ok := parseLevel(os.Getenv(EnvLevel)); ok {
		cfg.Level = lvl
	}
	if f, ok := parseFormat(os.Getenv(EnvFormat)); ok {
		cfg.Format = f
	}
	if v, ok := parseBool(os.Getenv(EnvTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvNoColor)); ok {
		cfg.NoColor = v
	}
	if v, ok := parseBool(os.Getenv(EnvCaller)); ok {
		cfg.Caller = v
	}
	return cfg
}

func Defaults(profile Profile) Config {
	if profile == ProfileTest {
		return Config{Level: zerolog.DebugLevel, Format: FormatConsole}
	}
	return Config{Level: zerolog.InfoLevel, Format: FormatConsole, Timestamp: true}
}

// Apply builds a logger from cfg and installs it as log.Logger.
func Apply(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor, TimeFormat: time.RFC3339Nano}
	}

	zctx := zerolog.New(out).With()
	if cfg.Timestamp {
		zctx = zctx.Timestamp()
	}
	if cfg.Caller {
		zctx = zctx.Caller()
	}
	logger := zctx.Logger().Level(cfg.Level)
	zerolog.SetGlobalLevel(cfg.Level)
	log.Logger = logger
	return logger
}

var levelAliases = map[string]zerolog.Level{
	"warning": zerolog.WarnLevel,
	"off":     zerolog.Disabled,
	"none":    zerolog.Disabled,
}

func parseLevel(raw string) (zerolog.Level, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return zerolog.NoLevel, false
	}
	if lvl, ok := levelAliases[raw]; ok {
		return lvl, true
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.NoLevel, false
	}
	return lvl, true
}

func parseFormat(raw string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatConsole:
		return FormatConsole, true
	case FormatJSON:
		return FormatJSON, true
	default:
		return "", false
	}
}

func parseBool(raw string) (bool, bool) {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, false
	}
	return v, true
}
