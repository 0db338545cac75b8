package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		" DEBUG ":  zerolog.DebugLevel,
		"warning":  zerolog.WarnLevel,
		"off":      zerolog.Disabled,
		"disabled": zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := parseLevel(raw)
		require.True(t, ok, raw)
		require.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"", "loud"} {
		_, ok := parseLevel(raw)
		require.False(t, ok, raw)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "error")
	t.Setenv(EnvFormat, "JSON")
	t.Setenv(EnvTimestamp, "false")
	t.Setenv(EnvNoColor, "1")
	t.Setenv(EnvCaller, "nope")

	cfg := FromEnv(ProfileRuntime)
	require.Equal(t, zerolog.ErrorLevel, cfg.Level)
	require.Equal(t, FormatJSON, cfg.Format)
	require.False(t, cfg.Timestamp)
	require.True(t, cfg.NoColor)
	require.False(t, cfg.Caller)
}

func TestFromEnvKeepsProfileDefaults(t *testing.T) {
	t.Setenv(EnvFormat, "xml")
	cfg := FromEnv(ProfileTest)
	require.Equal(t, zerolog.DebugLevel, cfg.Level)
	require.Equal(t, FormatConsole, cfg.Format)
	require.False(t, cfg.Timestamp)
}

func TestApplyJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Apply(Config{Level: zerolog.InfoLevel, Format: FormatJSON, Out: &buf})
	logger.Info().Str("role", "client").Msg("login accepted")
	logger.Debug().Msg("hidden")
	require.Contains(t, buf.String(), `"role":"client"`)
	require.Contains(t, buf.String(), `"message":"login accepted"`)
	require.NotContains(t, buf.String(), "hidden")

	Apply(Defaults(ProfileTest))
}
