// Package config loads application configuration from
// ~/.goalspace/config.json with environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LLMConfig holds generation provider settings.
type LLMConfig struct {
	BaseURL     string  `json:"base_url,omitempty"`
	APIKey      string  `json:"api_key,omitempty"`
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider string `json:"provider,omitempty"` // "openai" | "ollama" | ""
	Model    string `json:"model,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// Config is the application configuration.
type Config struct {
	DBPath             string          `json:"db_path,omitempty"`
	StatePath          string          `json:"state_path,omitempty"`
	VectorDir          string          `json:"vector_dir,omitempty"`
	HandoffPath        string          `json:"handoff_path,omitempty"`
	MentorCatalog      string          `json:"mentor_catalog,omitempty"`
	UserID             string          `json:"user_id,omitempty"`
	LLM                LLMConfig       `json:"llm,omitempty"`
	Embedding          EmbeddingConfig `json:"embedding,omitempty"`
	GenerateTimeoutSec int             `json:"generate_timeout_sec,omitempty"`
}

// Dir returns the goalspace home directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".goalspace")
}

func defaults() *Config {
	dir := Dir()
	return &Config{
		DBPath:             filepath.Join(dir, "goalspace.db"),
		StatePath:          filepath.Join(dir, "state.json"),
		VectorDir:          filepath.Join(dir, "vectors"),
		HandoffPath:        filepath.Join(dir, "handoff"),
		MentorCatalog:      filepath.Join(dir, "mentors.yaml"),
		UserID:             "local",
		GenerateTimeoutSec: 120,
	}
}

// Load reads config.json from the goalspace home directory, falling back to
// defaults when it is missing, then applies environment overrides.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(Dir(), "config.json"))
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		// Re-fill fields the file cleared
		d := defaults()
		if cfg.DBPath == "" {
			cfg.DBPath = d.DBPath
		}
		if cfg.StatePath == "" {
			cfg.StatePath = d.StatePath
		}
		if cfg.VectorDir == "" {
			cfg.VectorDir = d.VectorDir
		}
		if cfg.HandoffPath == "" {
			cfg.HandoffPath = d.HandoffPath
		}
		if cfg.UserID == "" {
			cfg.UserID = d.UserID
		}
		if cfg.GenerateTimeoutSec <= 0 {
			cfg.GenerateTimeoutSec = d.GenerateTimeoutSec
		}
	}

	// Environment overrides
	if v := os.Getenv("GOALSPACE_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("GOALSPACE_STATE"); v != "" {
		cfg.StatePath = v
	}
	if v := os.Getenv("GOALSPACE_VECTOR_DIR"); v != "" {
		cfg.VectorDir = v
	}
	if v := os.Getenv("GOALSPACE_USER"); v != "" {
		cfg.UserID = v
	}
	if v := os.Getenv("GOALSPACE_LLM_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("GOALSPACE_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GOALSPACE_EMBED_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("GOALSPACE_EMBED_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("GOALSPACE_EMBED_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("GOALSPACE_GENERATE_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GenerateTimeoutSec = n
		}
	}

	return cfg, nil
}

// GenerateTimeout returns the generation deadline as a duration.
func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.GenerateTimeoutSec) * time.Second
}
