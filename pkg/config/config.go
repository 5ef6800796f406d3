// Package config loads the conduit configuration file. The file is read and
// validated once at bootstrap and the resulting value is injected into the
// components that need it; nothing re-reads it afterwards.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dukex/conduit/pkg/queue"
	"github.com/dukex/conduit/pkg/workflow"
	"github.com/xeipuuv/gojsonschema"
)

// Config is the process-wide configuration snapshot.
type Config struct {
	LogLevel  string          `json:"log_level"`
	API       APIConfig       `json:"api"`
	Queue     QueueConfig     `json:"queue"`
	Processor ProcessorConfig `json:"processor"`

	Workflows map[string]WorkflowConfig `json:"workflows"`
}

type APIConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type QueueConfig struct {
	// MaxLength bounds every queue list; zero selects the default.
	MaxLength int64 `json:"max_length"`

	// Routes maps logical queue names to connection targets
	// (redis://… or memory://…).
	Routes map[string]string `json:"routes"`
}

type ProcessorConfig struct {
	PollIntervalSeconds int `json:"poll_interval_seconds"`
}

type WorkflowConfig struct {
	Enabled bool `json:"enabled"`

	// MaxRetries is a pointer so an absent field falls back to the engine
	// default instead of zero.
	MaxRetries *int `json:"max_retries"`

	Queue    string         `json:"queue"`
	Forward  string         `json:"forward"`
	Schedule string         `json:"schedule"`
	Options  map[string]any `json:"options"`
}

// Load reads, env-substitutes and validates the configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	doc = substituteEnv(doc)

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return nil, fmt.Errorf("invalid config: %s", strings.Join(details, "; "))
	}

	substituted, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(substituted, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.API.Host == "" {
		c.API.Host = "0.0.0.0"
	}

	if c.API.Port == 0 {
		c.API.Port = 8000
	}

	if c.Queue.MaxLength <= 0 {
		c.Queue.MaxLength = queue.DefaultMaxLength
	}

	if c.Processor.PollIntervalSeconds <= 0 {
		c.Processor.PollIntervalSeconds = 1
	}
}

// Settings converts the per-workflow file entries into the dispatch
// settings consumed by the processor and scheduler.
func (c *Config) Settings() map[string]workflow.Settings {
	settings := make(map[string]workflow.Settings, len(c.Workflows))

	for name, wc := range c.Workflows {
		maxRetries := workflow.DefaultMaxRetries
		if wc.MaxRetries != nil {
			maxRetries = *wc.MaxRetries
		}

		route := wc.Queue
		if route == "" {
			route = queue.DefaultRoute
		}

		settings[name] = workflow.Settings{
			Config: workflow.Config{
				Name:       name,
				MaxRetries: maxRetries,
				Enabled:    wc.Enabled,
			},
			Route:    route,
			Forward:  wc.Forward,
			Schedule: wc.Schedule,
			Options:  wc.Options,
		}
	}

	return settings
}

// substituteEnv replaces string values of the form ${VAR} with the value of
// the environment variable VAR, recursively through objects and arrays.
func substituteEnv(doc any) any {
	switch v := doc.(type) {
	case string:
		if strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}") {
			return os.Getenv(v[2 : len(v)-1])
		}

		return v
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[key] = substituteEnv(value)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, value := range v {
			out[i] = substituteEnv(value)
		}

		return out
	default:
		return doc
	}
}
