package eventboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Config is the file/env configuration for a board deployment. Env vars win
// over the file.
type Config struct {
	Endpoint       string        `yaml:"endpoint" env:"EVENTBOARD_ENDPOINT"`
	Listen         string        `yaml:"listen" env:"EVENTBOARD_LISTEN"`
	BasePath       string        `yaml:"base_path" env:"EVENTBOARD_BASE_PATH"`
	PollInterval   time.Duration `yaml:"poll_interval" env:"EVENTBOARD_POLL_INTERVAL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"EVENTBOARD_REQUEST_TIMEOUT"`
	PulseDuration  time.Duration `yaml:"pulse_duration" env:"EVENTBOARD_PULSE_DURATION"`
	DiscardStale   bool          `yaml:"discard_stale" env:"EVENTBOARD_DISCARD_STALE"`
	LogoFile       string        `yaml:"logo_file" env:"EVENTBOARD_LOGO_FILE"`
	ChartTheme     string        `yaml:"chart_theme" env:"EVENTBOARD_CHART_THEME"`
	ChartCacheTTL  time.Duration `yaml:"chart_cache_ttl" env:"EVENTBOARD_CHART_CACHE_TTL"`
	LogLevel       string        `yaml:"log_level" env:"EVENTBOARD_LOG_LEVEL"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Endpoint:       "",
		Listen:         ":8080",
		BasePath:       DefaultBasePath,
		PollInterval:   DefaultPollInterval,
		RequestTimeout: 10 * time.Second,
		PulseDuration:  DefaultPulseDuration,
		ChartCacheTTL:  5 * time.Minute,
		LogLevel:       "info",
	}
}

var configSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"endpoint":        map[string]any{"type": "string"},
		"listen":          map[string]any{"type": "string", "minLength": 1},
		"base_path":       map[string]any{"type": "string", "pattern": "^/"},
		"poll_interval":   durationSchema(),
		"request_timeout": durationSchema(),
		"pulse_duration":  durationSchema(),
		"discard_stale":   map[string]any{"type": "boolean"},
		"logo_file":       map[string]any{"type": "string"},
		"chart_theme":     map[string]any{"type": "string"},
		"chart_cache_ttl": durationSchema(),
		"log_level": map[string]any{
			"type": "string",
			"enum": []string{"debug", "info", "warn", "error"},
		},
	},
}

func durationSchema() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
	}
}

var (
	configSchemaOnce     sync.Once
	configSchemaCompiled *jsonschema.Schema
	configSchemaErr      error
)

func compiledConfigSchema() (*jsonschema.Schema, error) {
	configSchemaOnce.Do(func() {
		data, err := json.Marshal(configSchema)
		if err != nil {
			configSchemaErr = fmt.Errorf("eventboard: marshal config schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		const name = "eventboard.config.json"
		if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
			configSchemaErr = fmt.Errorf("eventboard: load config schema: %w", err)
			return
		}
		configSchemaCompiled, configSchemaErr = compiler.Compile(name)
	})
	return configSchemaCompiled, configSchemaErr
}

// DecodeConfig reads YAML from r over DefaultConfig. The document is checked
// against the config schema before it is decoded.
func DecodeConfig(r io.Reader) (Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("eventboard: read config: %w", err)
	}
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(raw)) == 0 {
		return cfg, nil
	}
	if err := validateConfigDocument(raw); err != nil {
		return Config{}, err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("eventboard: parse config: %w", err)
	}
	return cfg, nil
}

func validateConfigDocument(raw []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("eventboard: parse config: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	// Round-trip through JSON so the validator sees JSON types.
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("eventboard: normalize config: %w", err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("eventboard: normalize config: %w", err)
	}
	schema, err := compiledConfigSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("eventboard: config failed validation: %w", err)
	}
	return nil
}

// LoadConfig reads the YAML file at path (optional) and applies environment
// overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		f, err := os.Open(path) //nolint:gosec
		if err != nil {
			return Config{}, fmt.Errorf("eventboard: open config %s: %w", path, err)
		}
		defer f.Close()
		cfg, err = DecodeConfig(f)
		if err != nil {
			return Config{}, fmt.Errorf("eventboard: load config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("eventboard: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the schema cannot see (env overrides included).
func (cfg Config) Validate() error {
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("eventboard: poll_interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.RequestTimeout < 0 {
		return fmt.Errorf("eventboard: request_timeout must not be negative, got %s", cfg.RequestTimeout)
	}
	if cfg.PulseDuration <= 0 {
		return fmt.Errorf("eventboard: pulse_duration must be positive, got %s", cfg.PulseDuration)
	}
	if cfg.BasePath != "" && !strings.HasPrefix(cfg.BasePath, "/") {
		return fmt.Errorf("eventboard: base_path must start with '/', got %q", cfg.BasePath)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("eventboard: unsupported log_level %q", cfg.LogLevel)
	}
	return nil
}
