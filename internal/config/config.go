// Package config loads the configuration of the reftx command.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml"
	"gitlab.com/gitlab-org/reftx/internal/git/reftx"
	"gitlab.com/gitlab-org/reftx/internal/log"
)

// Supported reference store backends.
const (
	BackendMemory   = "memory"
	BackendGit      = "git"
	BackendLibgit2  = "libgit2"
	BackendPostgres = "postgres"
)

// DefaultCacheSize is the number of lookups remembered per prepared batch if
// no cache size is configured.
const DefaultCacheSize = 1024

// Config is the configuration of the reftx command.
type Config struct {
	Logging log.Config `toml:"logging" envconfig:"logging"`
	Refs    Refs       `toml:"refs" envconfig:"refs"`
	Store   Store      `toml:"store" envconfig:"store"`
	DB      DB         `toml:"database" envconfig:"database"`
}

// Refs configures how reference edits are prepared.
type Refs struct {
	// MaxSymrefDepth is the number of symbolic references followed for a
	// single edit.
	MaxSymrefDepth int `toml:"max_symref_depth,omitempty" envconfig:"max_symref_depth"`
}

// Store configures where current reference values are read from.
type Store struct {
	Backend string `toml:"backend,omitempty" envconfig:"backend"`
	// Path is the path of the repository for the git and libgit2 backends.
	// For the memory backend, it optionally names a TOML file mapping
	// reference names to targets.
	Path string `toml:"path,omitempty" envconfig:"path"`
	// Repository identifies the repository for the postgres backend.
	Repository string `toml:"repository,omitempty" envconfig:"repository"`
	// CacheSize is the number of lookups cached per batch. A negative
	// value disables caching.
	CacheSize int `toml:"cache_size,omitempty" envconfig:"cache_size"`
}

// DB holds the Postgres connection settings.
type DB struct {
	Host        string `toml:"host,omitempty" envconfig:"host"`
	Port        int    `toml:"port,omitempty" envconfig:"port"`
	User        string `toml:"user,omitempty" envconfig:"user"`
	Password    string `toml:"password,omitempty" envconfig:"password"`
	DBName      string `toml:"dbname,omitempty" envconfig:"dbname"`
	SSLMode     string `toml:"sslmode,omitempty" envconfig:"sslmode"`
	SSLCert     string `toml:"sslcert,omitempty" envconfig:"sslcert"`
	SSLKey      string `toml:"sslkey,omitempty" envconfig:"sslkey"`
	SSLRootCert string `toml:"sslrootcert,omitempty" envconfig:"sslrootcert"`
}

// Load initializes the Config from the TOML read from file and the
// environment. Environment variables take precedence over the file.
func Load(file io.Reader) (Config, error) {
	var cfg Config

	if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("load toml: %w", err)
	}

	if err := envconfig.Process("reftx", &cfg); err != nil {
		return Config{}, fmt.Errorf("envconfig: %w", err)
	}

	cfg.setDefaults()

	if cfg.Store.Path != "" {
		cfg.Store.Path = filepath.Clean(cfg.Store.Path)
	}

	return cfg, nil
}

// FromFile loads the config for the passed file path.
func FromFile(filePath string) (Config, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	return Load(f)
}

func (cfg *Config) setDefaults() {
	if cfg.Refs.MaxSymrefDepth == 0 {
		cfg.Refs.MaxSymrefDepth = reftx.DefaultMaxSymrefDepth
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendMemory
	}

	if cfg.Store.CacheSize == 0 {
		cfg.Store.CacheSize = DefaultCacheSize
	}
}

var (
	errNoRepositoryPath   = errors.New("store.path must be set for the git and libgit2 backends")
	errNoRepository       = errors.New("store.repository must be set for the postgres backend")
	errNoDatabase         = errors.New("database.host and database.dbname must be set for the postgres backend")
	errInvalidSymrefDepth = errors.New("refs.max_symref_depth must be positive")
)

// Validate checks the current Config for sanity.
func (cfg *Config) Validate() error {
	for _, run := range []func() error{
		cfg.validateRefs,
		cfg.validateStore,
		cfg.validateLogging,
	} {
		if err := run(); err != nil {
			return err
		}
	}

	return nil
}

func (cfg *Config) validateRefs() error {
	if cfg.Refs.MaxSymrefDepth < 1 {
		return errInvalidSymrefDepth
	}
	return nil
}

func (cfg *Config) validateStore() error {
	switch cfg.Store.Backend {
	case BackendMemory:
		return nil
	case BackendGit, BackendLibgit2:
		if cfg.Store.Path == "" {
			return errNoRepositoryPath
		}
		return nil
	case BackendPostgres:
		if cfg.Store.Repository == "" {
			return errNoRepository
		}
		if cfg.DB.Host == "" || cfg.DB.DBName == "" {
			return errNoDatabase
		}
		return nil
	default:
		return fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

func (cfg *Config) validateLogging() error {
	switch cfg.Logging.Format {
	case "", "json", "text":
		return nil
	default:
		return fmt.Errorf("unsupported log format %q", cfg.Logging.Format)
	}
}
