// Package config loads gedcart's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/gedcart/internal/graph"
)

// Config is the on-disk configuration.
type Config struct {
	Tree   string      `yaml:"tree" validate:"required"`
	DB     string      `yaml:"db" validate:"required"`
	Graph  GraphConfig `yaml:"graph"`
	Viewer Viewer      `yaml:"viewer"`
	Media  Media       `yaml:"media"`
	Limits Limits      `yaml:"limits"`
	Log    Log         `yaml:"log"`
}

type GraphConfig struct {
	Backend string            `yaml:"backend" validate:"oneof=sqlite neo4j"`
	Neo4j   graph.Neo4jConfig `yaml:"neo4j"`
}

type Viewer struct {
	Role string `yaml:"role" validate:"oneof=admin manager member visitor"`
}

type Media struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

type Limits struct {
	MaxRecursion int `yaml:"max_recursion" validate:"gte=1"`
}

type Log struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Tree:   "main",
		DB:     filepath.Join(Dir(), "gedcart.db"),
		Graph:  GraphConfig{Backend: "sqlite"},
		Viewer: Viewer{Role: "visitor"},
		Media:  Media{Dir: "media", Prefix: "media/"},
		Limits: Limits{MaxRecursion: 1000},
		Log:    Log{Level: "info"},
	}
}

// Dir is the per-user gedcart directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gedcart"
	}
	return filepath.Join(home, ".gedcart")
}

// DefaultPath returns $GEDCART_CONFIG or ~/.gedcart/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("GEDCART_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.yaml")
}

var validate = validator.New()

// Load reads path on top of the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	cfg.DB = expandHome(cfg.DB)
	cfg.Media.Dir = expandHome(cfg.Media.Dir)

	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Graph.Backend == "neo4j" && cfg.Graph.Neo4j.URI == "" {
		return cfg, fmt.Errorf("invalid config: graph.neo4j.uri is required for the neo4j backend")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GEDCART_DB"); v != "" {
		cfg.DB = v
	}
	if v := os.Getenv("GEDCART_TREE"); v != "" {
		cfg.Tree = v
	}
	if v := os.Getenv("GEDCART_ROLE"); v != "" {
		cfg.Viewer.Role = v
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
