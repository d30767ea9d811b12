package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/mqtt-analyzer/internal/app"
	"github.com/atomicstack/mqtt-analyzer/internal/broker"
	"github.com/atomicstack/mqtt-analyzer/internal/format"
	uistate "github.com/atomicstack/mqtt-analyzer/internal/ui/state"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrHelp is returned by LoadArgs after usage has been printed for --help.
var ErrHelp = errors.New("help requested")

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envHost           = "MQTT_ANALYZER_HOST"
	envPort           = "MQTT_ANALYZER_PORT"
	envUsername       = "MQTT_ANALYZER_USERNAME"
	envPassword       = "MQTT_ANALYZER_PASSWORD"
	envClientID       = "MQTT_ANALYZER_CLIENT_ID"
	envTopics         = "MQTT_ANALYZER_TOPICS"
	envFormat         = "MQTT_ANALYZER_FORMAT"
	envTUI            = "MQTT_ANALYZER_TUI"
	envMode           = "MQTT_ANALYZER_MODE"
	envBroker         = "MQTT_ANALYZER_BROKER"
	envPruneRetained  = "MQTT_ANALYZER_PRUNE_RETAINED"
	envBuffer         = "MQTT_ANALYZER_BUFFER"
	envConnectTimeout = "MQTT_ANALYZER_CONNECT_TIMEOUT"
	envWidth          = "MQTT_ANALYZER_WIDTH"
	envHeight         = "MQTT_ANALYZER_HEIGHT"
	envShowFooter     = "MQTT_ANALYZER_FOOTER"
	envTrace          = "MQTT_ANALYZER_TRACE"
	envLogFile        = "MQTT_ANALYZER_LOG_FILE"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	return load(args, environ, os.Stdout)
}

func load(args []string, environ []string, out io.Writer) (Config, error) {
	env := parseEnv(environ)

	ran := false
	cmd := &cobra.Command{
		Use:           "mqtt-analyzer",
		Short:         "Watch and explore broker traffic from the terminal",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(*cobra.Command, []string) error {
			ran = true
			return nil
		},
	}
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.CompletionOptions.DisableDefaultCmd = true

	v := registerFlags(cmd.Flags(), env)

	if err := cmd.Execute(); err != nil {
		return Config{}, err
	}
	if !ran {
		return Config{}, ErrHelp
	}

	kind, ok := format.ParseKind(v.formatName)
	if !ok {
		return Config{}, fmt.Errorf("unknown format %q (want one of %s)", v.formatName, strings.Join(format.Kinds(), ", "))
	}
	mode, ok := uistate.ParseTab(v.modeName)
	if !ok {
		return Config{}, fmt.Errorf("unknown mode %q (want one of %s)", v.modeName, strings.Join(uistate.TabNames(), ", "))
	}
	if strings.TrimSpace(v.clientID) == "" {
		v.clientID = defaultClientID()
	}

	cfg := Config{
		App: app.Config{
			Broker: broker.Options{
				Kind:           strings.ToLower(strings.TrimSpace(v.brokerKind)),
				Host:           v.host,
				Port:           v.port,
				Username:       v.username,
				Password:       v.password,
				ClientID:       v.clientID,
				ConnectTimeout: v.connectTimeout,
			},
			Topics:        cleanTopics(v.topics),
			Format:        kind,
			TUI:           v.tui,
			Mode:          mode,
			PruneRetained: v.prune,
			BufferSize:    v.buffer,
			Width:         v.width,
			Height:        v.height,
			ShowFooter:    v.footer,
		},
		Logging: Logging{
			FilePath: v.logFile,
			Trace:    v.trace,
		},
		Flags: map[string]string{
			"host":           v.host,
			"port":           strconv.Itoa(v.port),
			"username":       v.username,
			"id":             v.clientID,
			"topic":          strings.Join(v.topics, ","),
			"format":         kind.String(),
			"tui":            strconv.FormatBool(v.tui),
			"mode":           strings.ToLower(mode.String()),
			"broker":         v.brokerKind,
			"pruneRetained":  strconv.FormatBool(v.prune),
			"buffer":         strconv.Itoa(v.buffer),
			"connectTimeout": v.connectTimeout.String(),
			"width":          strconv.Itoa(v.width),
			"height":         strconv.Itoa(v.height),
			"footer":         strconv.FormatBool(v.footer),
			"trace":          strconv.FormatBool(v.trace),
			"logFile":        v.logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

type values struct {
	host, username, password, clientID string
	formatName, modeName, brokerKind   string
	logFile                            string
	topics                             []string
	port, buffer, width, height        int
	tui, prune, footer, trace          bool
	connectTimeout                     time.Duration
}

// registerFlags defines every flag on fs with defaults taken from env.
func registerFlags(fs *pflag.FlagSet, env map[string]string) *values {
	v := &values{}
	fs.SortFlags = false
	// -h belongs to --host, so help is long-form only.
	fs.Bool("help", false, "show this help")
	fs.StringVarP(&v.host, "host", "h", envOrDefault(env, envHost, "localhost"), "broker host")
	fs.IntVarP(&v.port, "port", "p", envOrInt(env, envPort, 0), "broker port (0 uses 1883 for mqtt, 4222 for nats)")
	fs.StringVarP(&v.username, "username", "u", envOrDefault(env, envUsername, ""), "username for authentication")
	fs.StringVarP(&v.password, "password", "P", envOrDefault(env, envPassword, ""), "password for authentication")
	fs.StringVarP(&v.clientID, "id", "i", envOrDefault(env, envClientID, ""), "client id (random when empty)")
	fs.StringArrayVarP(&v.topics, "topic", "t", envOrList(env, envTopics), "topic filter to subscribe to (repeatable)")
	fs.StringVarP(&v.formatName, "format", "f", envOrDefault(env, envFormat, format.Text.String()), "payload format: "+strings.Join(format.Kinds(), "|"))
	fs.BoolVar(&v.tui, "tui", envOrBool(env, envTUI, false), "start the interactive dashboard")
	fs.StringVarP(&v.modeName, "mode", "m", envOrDefault(env, envMode, strings.ToLower(uistate.TabSubscriptions.String())), "initial dashboard tab: "+strings.Join(uistate.TabNames(), "|"))
	fs.StringVar(&v.brokerKind, "broker", envOrDefault(env, envBroker, broker.KindMQTT), "broker kind: "+strings.Join(broker.Kinds(), "|"))
	fs.BoolVar(&v.prune, "prune-retained", envOrBool(env, envPruneRetained, false), "on unsubscribe, drop retained messages no remaining subscription covers (broker wildcard rules)")
	fs.IntVar(&v.buffer, "buffer", envOrInt(env, envBuffer, uistate.DefaultRingCapacity), "number of stream messages kept in memory")
	fs.DurationVar(&v.connectTimeout, "connect-timeout", envOrDuration(env, envConnectTimeout, 10*time.Second), "time allowed for the initial connection")
	fs.IntVar(&v.width, "width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)")
	fs.IntVar(&v.height, "height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)")
	fs.BoolVar(&v.footer, "footer", envOrBool(env, envShowFooter, false), "enable footer hint row (disabled by default)")
	fs.BoolVar(&v.trace, "trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	fs.StringVar(&v.logFile, "log-file", envOrDefault(env, envLogFile, ""), "path to the log file")
	return v
}

func defaultClientID() string {
	// MQTT 3.1 brokers may reject ids longer than 23 bytes.
	return "mqtt-analyzer-" + uuid.NewString()[:8]
}

// cleanTopics drops blank entries. Topics compare byte for byte, so the
// others are kept as given.
func cleanTopics(topics []string) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// envOrList splits a comma-separated value.
func envOrList(env map[string]string, key string) []string {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if errors.Is(err, ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	a := cfg.App
	if a.Broker.Port < 0 || a.Broker.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535 (got %d)", a.Broker.Port)
	}
	if !validBroker(a.Broker.Kind) {
		return fmt.Errorf("unknown broker %q (want one of %s)", a.Broker.Kind, strings.Join(broker.Kinds(), ", "))
	}
	if a.BufferSize < 1 {
		return fmt.Errorf("buffer must be >= 1 (got %d)", a.BufferSize)
	}
	if a.Width < 0 {
		return fmt.Errorf("width must be >= 0 (got %d)", a.Width)
	}
	if a.Height < 0 {
		return fmt.Errorf("height must be >= 0 (got %d)", a.Height)
	}
	if !a.TUI && len(a.Topics) == 0 {
		return errors.New("at least one --topic is required without --tui")
	}
	return nil
}

func validBroker(kind string) bool {
	for _, k := range broker.Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}
