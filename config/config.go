// Package config loads RagMesh configuration from the environment. The only
// mandatory input is the remote service credential; everything else has a
// working default. Optional .env / .env.local files are supported for local
// development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names read by FromEnv.
const (
	EnvAPIKey       = "OPENAI_API_KEY"
	EnvBaseURL      = "OPENAI_BASE_URL"
	EnvModel        = "RAGMESH_MODEL"
	EnvAgentName    = "RAGMESH_AGENT_NAME"
	EnvInstructions = "RAGMESH_INSTRUCTIONS"
	EnvPollInterval = "RAGMESH_POLL_INTERVAL"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultModel        = "gpt-4o-mini"
	DefaultAgentName    = "ragmesh-agent"
	DefaultInstructions = "You are a helpful agent that answers questions using the attached document search tool."
	DefaultPollInterval = 2 * time.Second
)

// Config carries everything needed to talk to the remote agent platform.
type Config struct {
	// APIKey authenticates against the remote service. Required for the
	// real backend; unused by in-memory implementations.
	APIKey string

	// BaseURL overrides the remote endpoint (proxies, compatible gateways).
	// Empty means the SDK default.
	BaseURL string

	// Model is the hosted model identifier bound to the agent.
	Model string

	// AgentName names the agent created for one execution.
	AgentName string

	// Instructions is the system instruction text for the agent.
	Instructions string

	// PollInterval is the delay between remote status polls for uploads,
	// vector store builds and runs.
	PollInterval time.Duration
}

// Default returns a Config with all defaults applied and no credential.
// Suitable for in-memory backends and tests.
func Default() *Config {
	return &Config{
		Model:        DefaultModel,
		AgentName:    DefaultAgentName,
		Instructions: DefaultInstructions,
		PollInterval: DefaultPollInterval,
	}
}

// LoadEnvFiles loads environment variables from .env files, in priority
// order .env.local (highest), then .env, then the system environment.
// Missing files are not an error.
func LoadEnvFiles() error {
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// FromEnv builds a Config from the process environment, applying defaults
// for unset optional values. It does not read .env files; call LoadEnvFiles
// first if that behavior is wanted.
func FromEnv() (*Config, error) {
	cfg := Default()
	cfg.APIKey = os.Getenv(EnvAPIKey)
	cfg.BaseURL = os.Getenv(EnvBaseURL)

	if v := os.Getenv(EnvModel); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv(EnvAgentName); v != "" {
		cfg.AgentName = v
	}
	if v := os.Getenv(EnvInstructions); v != "" {
		cfg.Instructions = v
	}
	if v := os.Getenv(EnvPollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvPollInterval, v, err)
		}
		cfg.PollInterval = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants FromEnv relies on.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%s environment variable is required", EnvAPIKey)
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	return nil
}
