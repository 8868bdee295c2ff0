package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is read when no config file is named. It may be absent.
const DefaultPath = "conlangdb.yaml"

// Config holds all settings. Every value can be overridden from the environment.
type Config struct {
	Database DatabaseConfig `yaml:"database"`

	// DataDir holds one <Table>.csv per table.
	DataDir string `yaml:"data_dir" env:"CONLANG_DATA_DIR" env-default:"data"`
	// CatalogPath points at a YAML seed catalog; empty selects the embedded one.
	CatalogPath string `yaml:"catalog_path" env:"CONLANG_CATALOG" env-default:""`
	LogMode     string `yaml:"log_mode" env:"CONLANG_LOG_MODE" env-default:"development"`

	Neo4j Neo4jConfig `yaml:"neo4j"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"CONLANG_DB_PATH" env-default:"DB/conlangs.db"`
}

// Neo4jConfig configures the graph mirror. An empty URI disables it.
type Neo4jConfig struct {
	URI            string `yaml:"uri" env:"NEO4J_URI" env-default:""`
	User           string `yaml:"user" env:"NEO4J_USER" env-default:"neo4j"`
	Password       string `yaml:"-" env:"NEO4J_PASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"NEO4J_DATABASE" env-default:"conlangs"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"NEO4J_TIMEOUT_SECONDS" env-default:"10"`
}

// Timeout returns the connect timeout.
func (c Neo4jConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Enabled reports whether a mirror is configured.
func (c Neo4jConfig) Enabled() bool {
	return strings.TrimSpace(c.URI) != ""
}

// Load reads path (YAML) with environment overrides. An empty path tries
// DefaultPath and falls back to the environment alone when it does not exist;
// a named file must exist.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	optional := path == ""
	if optional {
		path = DefaultPath
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case optional && errors.Is(statErr, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("config file: %w", statErr)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path must be non-empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir must be non-empty")
	}
	if c.Neo4j.TimeoutSeconds <= 0 {
		return fmt.Errorf("neo4j.timeout_seconds must be positive")
	}
	return nil
}
