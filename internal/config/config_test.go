package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.LLMProviders) == 0 {
		t.Error("expected default LLM providers")
	}
	or, ok := cfg.GetLLMProvider("openrouter")
	if !ok {
		t.Fatal("expected openrouter provider entry")
	}
	if or.APIKey != "${OPENROUTER_API_KEY}" {
		t.Error("expected openrouter API key placeholder")
	}
	if !or.Enabled {
		t.Error("openrouter should be enabled by default")
	}
	if cfg.LlamaParse.APIKey != "${LLAMA_CLOUD_API_KEY}" {
		t.Error("expected llamaparse API key placeholder")
	}
	if cfg.Defaults.LLMProvider != "openrouter" {
		t.Errorf("unexpected default provider: %s", cfg.Defaults.LLMProvider)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		os.Setenv("TEST_API_KEY", "secret123")
		defer os.Unsetenv("TEST_API_KEY")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestConfig_ToProviderConfig(t *testing.T) {
	os.Setenv("TEST_OPENROUTER_KEY", "or-key-123")
	defer os.Unsetenv("TEST_OPENROUTER_KEY")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:       "openrouter",
				Model:      "anthropic/claude-3.5-sonnet",
				APIKey:     "${TEST_OPENROUTER_KEY}",
				TimeoutSec: 120,
				MaxRetries: 5,
				Enabled:    true,
			},
			"disabled": {Type: "openai", Enabled: false},
		},
	}

	t.Run("resolves env var reference", func(t *testing.T) {
		pc, err := cfg.ToProviderConfig("openrouter")
		if err != nil {
			t.Fatalf("ToProviderConfig() error = %v", err)
		}
		if pc.APIKey != "or-key-123" {
			t.Errorf("expected or-key-123, got %s", pc.APIKey)
		}
		if pc.Timeout != 120*time.Second {
			t.Errorf("timeout not converted: %v", pc.Timeout)
		}
		if pc.MaxRetries != 5 {
			t.Errorf("max retries not carried: %d", pc.MaxRetries)
		}
	})

	t.Run("unknown provider errors", func(t *testing.T) {
		if _, err := cfg.ToProviderConfig("nope"); err == nil {
			t.Error("expected error for unknown provider")
		}
	})

	t.Run("disabled provider errors", func(t *testing.T) {
		if _, err := cfg.ToProviderConfig("disabled"); err == nil {
			t.Error("expected error for disabled provider")
		}
	})
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		configContent := `
defaults:
  llm_provider: openai
  max_workers: 7
`
		if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Defaults.LLMProvider != "openai" {
			t.Errorf("expected openai, got %s", cfg.Defaults.LLMProvider)
		}
		if cfg.Defaults.MaxWorkers != 7 {
			t.Errorf("expected 7 workers, got %d", cfg.Defaults.MaxWorkers)
		}
	})
}

func TestManager_OnChange_Multiple(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configFile, []byte("defaults:\n  max_workers: 1\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestManager_Get_ThreadSafe(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configFile, []byte("defaults:\n  max_workers: 1\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				cfg := mgr.Get()
				_ = cfg.Defaults.MaxWorkers
			}
			done <- struct{}{}
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("written default config should load: %v", err)
	}
	cfg := mgr.Get()
	if _, ok := cfg.GetLLMProvider("openrouter"); !ok {
		t.Error("written config should contain the openrouter provider")
	}
	if !cfg.LlamaParse.DownloadImages {
		t.Error("image downloads should default to enabled")
	}
}
