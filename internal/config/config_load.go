package config

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults for a fresh workspace.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			Workspace:           ".",
			RestrictToWorkspace: true,
		},
		Model: ModelConfig{
			Endpoint:    "http://localhost:11434",
			Model:       "llama3",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DBPath: "~/.codeagent/codeagent.db",
		},
		Indexer: IndexerConfig{
			IndexFile: "~/.codeagent/index.json",
		},
		Cache: CacheConfig{
			KeepLastNCommits: 10,
		},
		Execution: ExecutionConfig{
			AutoContinue:     false,
			MaxParallelTools: 1,
		},
		Context: ContextConfig{
			MaxSummaries:       5,
			RelevanceThreshold: 0.15,
		},
		Telemetry: TelemetryConfig{
			Protocol:    "grpc",
			ServiceName: "codeagent",
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars. A missing
// file is not an error: defaults plus env overrides are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays environment variables onto the config. Env
// vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	envStr("CODEAGENT_WORKSPACE", &c.Agent.Workspace)

	envStr("CODEAGENT_MODEL_ENDPOINT", &c.Model.Endpoint)
	envStr("CODEAGENT_MODEL", &c.Model.Model)
	if v := os.Getenv("CODEAGENT_TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			c.Model.Temperature = t
		}
	}
	if v := os.Getenv("CODEAGENT_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Model.MaxTokens = n
		}
	}

	envStr("CODEAGENT_DB_DRIVER", &c.Database.Driver)
	envStr("CODEAGENT_DB_PATH", &c.Database.DBPath)
	envStr("CODEAGENT_POSTGRES_DSN", &c.Database.PostgresDSN)

	envStr("CODEAGENT_INDEX_FILE", &c.Indexer.IndexFile)

	envStr("CODEAGENT_CACHE_CLEANUP_CRON", &c.Cache.CleanupCron)
	if v := os.Getenv("CODEAGENT_KEEP_LAST_N_COMMITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Cache.KeepLastNCommits = n
		}
	}

	if v := os.Getenv("CODEAGENT_AUTO_CONTINUE"); v != "" {
		c.Execution.AutoContinue = v == "true" || v == "1"
	}
	if v := os.Getenv("CODEAGENT_MAX_PARALLEL_TOOLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Execution.MaxParallelTools = n
		}
	}

	if v := os.Getenv("CODEAGENT_MAX_SUMMARIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Context.MaxSummaries = n
		}
	}

	if v := os.Getenv("CODEAGENT_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = v == "true" || v == "1"
	}
	envStr("CODEAGENT_TELEMETRY_ENDPOINT", &c.Telemetry.Endpoint)
	envStr("CODEAGENT_TELEMETRY_PROTOCOL", &c.Telemetry.Protocol)
	envStr("CODEAGENT_TELEMETRY_SERVICE_NAME", &c.Telemetry.ServiceName)
	if v := os.Getenv("CODEAGENT_TELEMETRY_INSECURE"); v != "" {
		c.Telemetry.Insecure = v == "true" || v == "1"
	}
	if v := os.Getenv("CODEAGENT_AUDIT_MODEL_CALLS"); v != "" {
		c.Telemetry.AuditModelCalls = v == "true" || v == "1"
	}

	if v := os.Getenv("CODEAGENT_DEBUG"); v != "" {
		c.Debug = v == "true" || v == "1"
	}
}

// Save writes the config to a JSON file, creating parent directories as
// needed.
func Save(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Hash returns a short SHA-256 hash of the config's serialized fields.
func (c *Config) Hash() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, _ := json.Marshal(c)
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:8])
}

// WorkspacePath returns the expanded workspace path.
func (c *Config) WorkspacePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ExpandHome(c.Agent.Workspace)
}

// DBPath returns the expanded sqlite database path.
func (c *Config) DBPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ExpandHome(c.Database.DBPath)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if len(path) > 1 && path[1] == '/' {
		return home + path[1:]
	}
	return home
}
