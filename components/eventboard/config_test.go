package eventboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfigDefaults(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.PulseDuration)
}

func TestDecodeConfigOverrides(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(`
endpoint: https://script.example.test/exec
listen: 127.0.0.1:9000
base_path: /live
poll_interval: 1m
pulse_duration: 250ms
discard_stale: true
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, "https://script.example.test/exec", cfg.Endpoint)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, "/live", cfg.BasePath)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.PulseDuration)
	assert.True(t, cfg.DiscardStale)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout, "unset keys keep defaults")
}

func TestDecodeConfigSchemaErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "endpoints: https://x.test\n",
		"bad duration":  "poll_interval: soon\n",
		"bad log level": "log_level: verbose\n",
		"relative base": "base_path: board\n",
		"wrong type":    "discard_stale: maybe\n",
		"not an object": "- a\n- b\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeConfig(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.PollInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.PulseDuration = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LogLevel = "trace"
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(file, []byte("endpoint: https://file.test\npoll_interval: 45s\n"), 0o600))
	t.Setenv("EVENTBOARD_ENDPOINT", "https://env.test")
	t.Setenv("EVENTBOARD_PULSE_DURATION", "1s")

	cfg, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "https://env.test", cfg.Endpoint)
	assert.Equal(t, 45*time.Second, cfg.PollInterval)
	assert.Equal(t, time.Second, cfg.PulseDuration)
}

func TestLoadConfigRejectsInvalidEnv(t *testing.T) {
	t.Setenv("EVENTBOARD_POLL_INTERVAL", "0s")
	_, err := LoadConfig("")
	assert.Error(t, err)
}
