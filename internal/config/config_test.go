package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/mqtt-analyzer/internal/broker"
	"github.com/atomicstack/mqtt-analyzer/internal/format"
	uistate "github.com/atomicstack/mqtt-analyzer/internal/ui/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	require.NoError(t, err)

	a := cfg.App
	assert.Equal(t, "localhost", a.Broker.Host)
	assert.Equal(t, 0, a.Broker.Port)
	assert.Equal(t, broker.KindMQTT, a.Broker.Kind)
	assert.Equal(t, 10*time.Second, a.Broker.ConnectTimeout)
	assert.True(t, strings.HasPrefix(a.Broker.ClientID, "mqtt-analyzer-"))
	assert.LessOrEqual(t, len(a.Broker.ClientID), 23)
	assert.Equal(t, format.Text, a.Format)
	assert.Equal(t, uistate.TabSubscriptions, a.Mode)
	assert.Equal(t, uistate.DefaultRingCapacity, a.BufferSize)
	assert.False(t, a.TUI)
	assert.False(t, a.PruneRetained)
	assert.Empty(t, a.Topics)
	assert.Equal(t, "localhost:1883", a.Broker.Addr())
}

func TestLoadArgsFlags(t *testing.T) {
	args := []string{
		"-h", "broker.local", "-p", "8883", "-u", "alice", "-P", "s3cret",
		"-i", "probe-1", "-t", "a/#", "--topic", "b/+/c", "-f", "hex",
		"--tui", "-m", "stream", "--broker", "nats", "--prune-retained",
		"--buffer", "250", "--connect-timeout", "3s", "--footer",
		"--trace", "--log-file", "/tmp/x.log",
	}
	cfg, err := LoadArgs(args, nil)
	require.NoError(t, err)

	a := cfg.App
	assert.Equal(t, "broker.local", a.Broker.Host)
	assert.Equal(t, 8883, a.Broker.Port)
	assert.Equal(t, "alice", a.Broker.Username)
	assert.Equal(t, "s3cret", a.Broker.Password)
	assert.Equal(t, "probe-1", a.Broker.ClientID)
	assert.Equal(t, broker.KindNATS, a.Broker.Kind)
	assert.Equal(t, 3*time.Second, a.Broker.ConnectTimeout)
	assert.Equal(t, []string{"a/#", "b/+/c"}, a.Topics)
	assert.Equal(t, format.Hex, a.Format)
	assert.Equal(t, uistate.TabStream, a.Mode)
	assert.True(t, a.TUI)
	assert.True(t, a.PruneRetained)
	assert.True(t, a.ShowFooter)
	assert.Equal(t, 250, a.BufferSize)
	assert.True(t, cfg.Logging.Trace)
	assert.Equal(t, "/tmp/x.log", cfg.Logging.FilePath)
	assert.Equal(t, args, cfg.Args)
	assert.Equal(t, "a/#,b/+/c", cfg.Flags["topic"])
	assert.Equal(t, "stream", cfg.Flags["mode"])
	assert.NotContains(t, cfg.Flags, "password")
}

func TestLoadArgsEnvironmentFallbacks(t *testing.T) {
	env := []string{
		envHost + "=env-host",
		envPort + "=1884",
		envTopics + "=x, y ,,z",
		envFormat + "=base64",
		envTUI + "=true",
		envMode + "=Retained",
		envBuffer + "=not-a-number",
		"MALFORMED",
	}
	cfg, err := LoadArgs(nil, env)
	require.NoError(t, err)

	a := cfg.App
	assert.Equal(t, "env-host", a.Broker.Host)
	assert.Equal(t, 1884, a.Broker.Port)
	assert.Equal(t, []string{"x", "y", "z"}, a.Topics)
	assert.Equal(t, format.Base64, a.Format)
	assert.True(t, a.TUI)
	assert.Equal(t, uistate.TabRetained, a.Mode)
	assert.Equal(t, uistate.DefaultRingCapacity, a.BufferSize)
}

func TestLoadArgsKeepsTopicsVerbatim(t *testing.T) {
	cfg, err := LoadArgs([]string{"-t", " a/b ", "-t", "   ", "-t", "c"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{" a/b ", "c"}, cfg.App.Topics)
}

func TestLoadArgsFlagsOverrideEnvironment(t *testing.T) {
	cfg, err := LoadArgs([]string{"--host", "flag-host"}, []string{envHost + "=env-host"})
	require.NoError(t, err)
	assert.Equal(t, "flag-host", cfg.App.Broker.Host)
}

func TestLoadArgsRejectsBadValues(t *testing.T) {
	cases := map[string][]string{
		"unknown flag":   {"--nope"},
		"bad format":     {"-f", "yaml"},
		"bad mode":       {"-m", "graphs"},
		"positional arg": {"extra"},
		"bad port":       {"-p", "http"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadArgs(args, nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadHelpPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	_, err := load([]string{"--help"}, nil, &out)
	require.ErrorIs(t, err, ErrHelp)
	assert.Contains(t, out.String(), "--prune-retained")
	assert.Contains(t, out.String(), "-h, --host")
}

func TestValidate(t *testing.T) {
	base, err := LoadArgs([]string{"-t", "a"}, nil)
	require.NoError(t, err)
	require.NoError(t, Validate(base))

	cases := map[string]func(*Config){
		"port range":     func(c *Config) { c.App.Broker.Port = 70000 },
		"broker kind":    func(c *Config) { c.App.Broker.Kind = "amqp" },
		"buffer":         func(c *Config) { c.App.BufferSize = 0 },
		"negative width": func(c *Config) { c.App.Width = -1 },
		"no topics":      func(c *Config) { c.App.Topics = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			cfg.App.Topics = append([]string(nil), base.App.Topics...)
			mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}

	tui := base
	tui.App.TUI = true
	tui.App.Topics = nil
	assert.NoError(t, Validate(tui))
}
