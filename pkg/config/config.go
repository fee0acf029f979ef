// Package config loads fwmeta settings from a TOML file.
//
// Every key is optional. A missing file yields the defaults:
//
//	category = "PS"
//	nested_extension = ".zip"
//	product_name = "CHDK"
//
//	[boot]
//	PS = "DISKBOOT.BIN"
//
//	[cache]
//	backend = "file"   # file | redis | none
//	ttl = "720h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//	prefix = "fwmeta:"
//
//	[catalog]
//	backend = "none"   # none | file | mongo
//
//	[catalog.mongo]
//	uri = "mongodb://localhost:27017"
//	database = "fwmeta"
//	collection = "software"
//
//	[serve]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fwmeta/pkg/errors"
)

// Backend names.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config holds all settings.
type Config struct {
	Category        string            `toml:"category"`
	BootFile        string            `toml:"boot_file"`
	NestedExtension string            `toml:"nested_extension"`
	ProductName     string            `toml:"product_name"`
	Boot            map[string]string `toml:"boot"`
	Cache           Cache             `toml:"cache"`
	Catalog         Catalog           `toml:"catalog"`
	Serve           Serve             `toml:"serve"`
}

// Cache configures the detection cache.
type Cache struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	TTL     string `toml:"ttl"`
	Redis   Redis  `toml:"redis"`

	ttl time.Duration
}

// Redis configures the Redis cache backend.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// Catalog configures where scan results are stored.
type Catalog struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Mongo   Mongo  `toml:"mongo"`
}

// Mongo configures the MongoDB catalog backend.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Serve configures the catalog HTTP server.
type Serve struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Category:        "PS",
		NestedExtension: ".zip",
		ProductName:     "CHDK",
		Cache: Cache{
			Backend: BackendFile,
			TTL:     "720h",
			Redis:   Redis{Addr: "localhost:6379", Prefix: "fwmeta:"},
		},
		Catalog: Catalog{
			Backend: BackendNone,
			Mongo: Mongo{
				URI:        "mongodb://localhost:27017",
				Database:   "fwmeta",
				Collection: "software",
			},
		},
		Serve: Serve{Addr: ":8080"},
	}
}

// DefaultPath returns the per-user configuration file path.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "fwmeta", "config.toml"), nil
}

// Load reads the configuration at path, or at DefaultPath when path is
// empty. An explicit path must exist; the default path may be missing.
// It returns the path that was read, or "" when only defaults were used.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "locate config")
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case os.IsNotExist(err) && !explicit:
		path = ""
	case os.IsNotExist(err):
		return nil, "", errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
	case err != nil:
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, "", errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, path, nil
}

// Validate checks enums and values and caches parsed durations.
func (c *Config) Validate() error {
	if c.Category == "" && c.BootFile == "" {
		return errors.New(errors.ErrCodeInvalidInput, "either category or boot_file must be set")
	}
	if c.BootFile != "" {
		if err := errors.ValidateBootFileName(c.BootFile); err != nil {
			return err
		}
	}
	for category, file := range c.Boot {
		if err := errors.ValidateBootFileName(file); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "boot file for %s", category)
		}
	}
	if err := errors.ValidateExtension(c.NestedExtension); err != nil {
		return err
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile, BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || ttl < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid cache ttl %q", c.Cache.TTL)
	}
	c.Cache.ttl = ttl

	switch c.Catalog.Backend {
	case BackendNone, BackendFile:
	case BackendMongo:
		if c.Catalog.Mongo.URI == "" || c.Catalog.Mongo.Database == "" || c.Catalog.Mongo.Collection == "" {
			return errors.New(errors.ErrCodeInvalidInput, "catalog.mongo requires uri, database and collection")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown catalog backend %q", c.Catalog.Backend)
	}
	return nil
}

// CacheTTL returns the parsed cache TTL. Validate must have succeeded.
func (c *Config) CacheTTL() time.Duration {
	return c.Cache.ttl
}
