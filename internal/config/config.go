// Package config defines the on-disk configuration shape and its
// defaults, loading, and environment overrides.
package config

import "sync"

// Config is the root configuration for a codeagent workspace.
type Config struct {
	Agent     AgentConfig     `json:"agent"`
	Model     ModelConfig     `json:"model"`
	Database  DatabaseConfig  `json:"database"`
	Indexer   IndexerConfig   `json:"indexer,omitempty"`
	Cache     CacheConfig     `json:"cache,omitempty"`
	Execution ExecutionConfig `json:"execution"`
	Context   ContextConfig   `json:"context,omitempty"`
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
	MCP       []MCPServer     `json:"mcp,omitempty"`
	Debug     bool            `json:"debug,omitempty"`

	mu sync.RWMutex
}

// MCPServer is one external tool source launched over stdio and merged
// into the Tool Registry at startup.
type MCPServer struct {
	Name    string   `json:"name"`
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// AgentConfig configures the workspace the agent operates on.
type AgentConfig struct {
	Workspace           string `json:"workspace"`
	RestrictToWorkspace bool   `json:"restrict_to_workspace"`
}

// ModelConfig configures the Model Client endpoint.
type ModelConfig struct {
	Endpoint    string  `json:"endpoint"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// DatabaseConfig selects and configures the Cache/Session Store backend.
// PostgresDSN is never persisted to the config file — env var only.
type DatabaseConfig struct {
	Driver      string `json:"driver"` // "sqlite" (default) or "postgres"
	DBPath      string `json:"db_path,omitempty"`
	PostgresDSN string `json:"-"`
}

// IndexerConfig points at the external file index the core treats as
// opaque.
type IndexerConfig struct {
	IndexFile string `json:"index_file,omitempty"`
}

// CacheConfig tunes the commit-scoped file cache's cleanup behavior.
type CacheConfig struct {
	KeepLastNCommits int    `json:"keep_last_n_commits,omitempty"`
	CleanupCron      string `json:"cleanup_cron,omitempty"` // unset = no scheduled cleanup
}

// ExecutionConfig tunes Executor behavior.
type ExecutionConfig struct {
	AutoContinue     bool `json:"auto_continue,omitempty"`
	MaxParallelTools int  `json:"max_parallel_tools,omitempty"`
}

// ContextConfig tunes Context Builder summary retrieval.
type ContextConfig struct {
	MaxSummaries       int     `json:"max_summaries,omitempty"`
	RelevanceThreshold float64 `json:"relevance_threshold,omitempty"`
}

// TelemetryConfig configures optional OpenTelemetry export. AuditModelCalls
// is loaded and handed to the Driver, but no model interactions are
// recorded.
type TelemetryConfig struct {
	Enabled         bool   `json:"enabled,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"`
	Protocol        string `json:"protocol,omitempty"` // "grpc" (default) or "http"
	Insecure        bool   `json:"insecure,omitempty"`
	ServiceName     string `json:"service_name,omitempty"`
	AuditModelCalls bool   `json:"audit_model_calls,omitempty"`
}

// ReplaceFrom copies all data fields from src into c, preserving c's mutex.
func (c *Config) ReplaceFrom(src *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Agent = src.Agent
	c.Model = src.Model
	c.Database = src.Database
	c.Indexer = src.Indexer
	c.Cache = src.Cache
	c.Execution = src.Execution
	c.Context = src.Context
	c.Telemetry = src.Telemetry
	c.MCP = src.MCP
	c.Debug = src.Debug
}

// Snapshot returns a copy of c safe to read without holding the lock.
func (c *Config) Snapshot() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := *c
	cp.mu = sync.RWMutex{}
	return cp
}
