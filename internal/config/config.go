// Package config loads lanechart settings from a TOML file, a .env file and
// the environment.
//
// Precedence, lowest first: built-in defaults, the TOML file, .env entries,
// environment variables. Command-line flags are applied on top by the CLI.
//
// Example lanechart.toml:
//
//	[render]
//	formats = ["svg", "png"]
//	interactive = true
//
//	[render.layout]
//	width = 1600
//
//	[server]
//	addr = ":9000"
//	request_timeout = "10s"
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/lanechart/pkg/errors"
	"github.com/matzehuels/lanechart/pkg/layout"
	"github.com/matzehuels/lanechart/pkg/pipeline"
	"github.com/matzehuels/lanechart/pkg/route"
)

const appName = "lanechart"

// FileName is the config file looked up in the user config directory.
const FileName = "lanechart.toml"

// Environment variables read by LoadEnv.
const (
	EnvAddr      = "LANECHART_ADDR"
	EnvRedisAddr = "LANECHART_REDIS_ADDR"
	EnvRedisDB   = "LANECHART_REDIS_DB"
	EnvMongoURI  = "LANECHART_MONGO_URI"
	EnvMongoDB   = "LANECHART_MONGO_DB"
	EnvDataDir   = "LANECHART_DATA_DIR"
	EnvLogLevel  = "LANECHART_LOG_LEVEL"
)

// Config is the complete configuration.
type Config struct {
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
}

// RenderConfig holds pipeline defaults shared by the CLI and the server.
type RenderConfig struct {
	VizType      string         `toml:"viz_type"`
	Formats      []string       `toml:"formats"`
	Layout       layout.Options `toml:"layout"`
	CellSize     float64        `toml:"cell_size"`
	CornerRadius float64        `toml:"corner_radius"`
	Interactive  bool           `toml:"interactive"`
	Detailed     bool           `toml:"detailed"`
	Scale        float64        `toml:"scale"`
}

// ServerConfig configures `lanechart serve`.
type ServerConfig struct {
	Addr           string        `toml:"addr"`
	RedisAddr      string        `toml:"redis_addr"`
	RedisDB        int           `toml:"redis_db"`
	MongoURI       string        `toml:"mongo_uri"`
	MongoDB        string        `toml:"mongo_db"`
	DataDir        string        `toml:"data_dir"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	MaxBodyBytes   int64         `toml:"max_body_bytes"`
	LogLevel       string        `toml:"log_level"`
}

// CacheConfig configures the CLI's file cache.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Render: RenderConfig{
			VizType: pipeline.DefaultVizType,
			Formats: []string{pipeline.FormatSVG},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MongoDB:        appName,
			RequestTimeout: 30 * time.Second,
			MaxBodyBytes:   4 << 20,
			LogLevel:       "info",
		},
	}
}

// Path returns the default config file location:
// $XDG_CONFIG_HOME/lanechart/lanechart.toml or ~/.config/lanechart/lanechart.toml.
func Path() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, FileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, FileName)
}

// Load reads the TOML file at path over the defaults. With an empty path the
// default location is tried and a missing file is not an error. Unknown keys
// are rejected so typos do not go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
		if path == "" {
			return cfg, nil
		}
	}

	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return Default(), nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if md.IsDefined("render", "corner_radius") && cfg.Render.CornerRadius <= 0 {
		cfg.Render.CornerRadius = route.SharpCorners
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidInput, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// LoadEnv overlays server settings from the environment and from .env files.
// With no files, ".env" in the working directory is used if present. Set
// environment variables win over .env entries; the process environment is
// not modified.
func (c *Config) LoadEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	dotenv := map[string]string{}
	if len(files) > 0 {
		m, err := godotenv.Read(files...)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "read env file")
		}
		dotenv = m
	}

	getenv := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}

	s := &c.Server
	setString(&s.Addr, getenv(EnvAddr))
	setString(&s.RedisAddr, getenv(EnvRedisAddr))
	setString(&s.MongoURI, getenv(EnvMongoURI))
	setString(&s.MongoDB, getenv(EnvMongoDB))
	setString(&s.DataDir, getenv(EnvDataDir))
	setString(&s.LogLevel, getenv(EnvLogLevel))
	if v := getenv(EnvRedisDB); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s: not a number: %q", EnvRedisDB, v)
		}
		s.RedisDB = db
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// PipelineOptions converts the render section to pipeline options.
func (r RenderConfig) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		VizType:      r.VizType,
		Formats:      append([]string(nil), r.Formats...),
		Layout:       r.Layout,
		CellSize:     r.CellSize,
		CornerRadius: r.CornerRadius,
		Interactive:  r.Interactive,
		Detailed:     r.Detailed,
		Scale:        r.Scale,
	}
}
