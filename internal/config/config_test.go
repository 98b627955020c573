package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json5"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected default driver sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Execution.MaxParallelTools != 1 {
		t.Errorf("expected default max_parallel_tools 1, got %d", cfg.Execution.MaxParallelTools)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	content := `{
		// trailing commas and comments are tolerated
		"model": { "model": "codellama", "temperature": 0.2, "endpoint": "http://localhost:11434/api/generate", "max_tokens": 4096 },
		"execution": { "auto_continue": true, },
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model.Model != "codellama" {
		t.Errorf("expected model override, got %q", cfg.Model.Model)
	}
	if !cfg.Execution.AutoContinue {
		t.Error("expected auto_continue override to be true")
	}
	// Unset fields keep their program defaults from Default(), since
	// json5.Unmarshal merges into the existing struct.
	if cfg.Cache.KeepLastNCommits != 10 {
		t.Errorf("expected default keep_last_n_commits to survive, got %d", cfg.Cache.KeepLastNCommits)
	}
}

func TestLoad_EnvOverridesFileAndDefaults(t *testing.T) {
	t.Setenv("CODEAGENT_MODEL", "mistral")
	t.Setenv("CODEAGENT_AUTO_CONTINUE", "true")
	t.Setenv("CODEAGENT_MAX_PARALLEL_TOOLS", "3")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json5"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model.Model != "mistral" {
		t.Errorf("expected env override, got %q", cfg.Model.Model)
	}
	if !cfg.Execution.AutoContinue {
		t.Error("expected env auto_continue override")
	}
	if cfg.Execution.MaxParallelTools != 3 {
		t.Errorf("expected env max_parallel_tools override, got %d", cfg.Execution.MaxParallelTools)
	}
}

func TestSaveAndReload_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Default()
	cfg.Model.Model = "phi3"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Model.Model != "phi3" {
		t.Errorf("expected round-tripped model, got %q", reloaded.Model.Model)
	}
}

func TestHash_ChangesWithContent(t *testing.T) {
	a := Default()
	b := Default()
	b.Model.Model = "different"

	if a.Hash() == b.Hash() {
		t.Error("expected different configs to hash differently")
	}
	if a.Hash() != Default().Hash() {
		t.Error("expected identical configs to hash identically")
	}
}

func TestExpandHome(t *testing.T) {
	home, _ := os.UserHomeDir()
	if got := ExpandHome("~/.codeagent/db"); got != home+"/.codeagent/db" {
		t.Errorf("expected expansion, got %q", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("expected absolute path unchanged, got %q", got)
	}
}

func TestReplaceFrom_CopiesFields(t *testing.T) {
	dst := Default()
	src := Default()
	src.Model.Model = "llama3:70b"

	dst.ReplaceFrom(src)
	if dst.Model.Model != "llama3:70b" {
		t.Errorf("expected ReplaceFrom to copy fields, got %q", dst.Model.Model)
	}
}
