package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"taskbook/internal/render"
	"taskbook/internal/storage"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultStoreName      = "tasks.json"
	appDirName            = "taskbook"

	minColumnWidth = 4
)

type Storage struct {
	Backend           string `toml:"backend"`
	Path              string `toml:"path"`
	QuarantineCorrupt bool   `toml:"quarantine_corrupt"`
}

// Columns holds the display widths of the wrapped table columns.
type Columns struct {
	Subject     int `toml:"subject"`
	Description int `toml:"description"`
	Deadline    int `toml:"deadline"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

type Config struct {
	DefaultFilter string  `toml:"default_filter"`
	Storage       Storage `toml:"storage"`
	Columns       Columns `toml:"columns"`
	Log           Log     `toml:"log"`
}

// ResolveConfigPath picks the config file location: the per-user config
// directory when it is available, the working directory otherwise.
func ResolveConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first
// when the file does not exist yet. A relative storage path is resolved
// against the directory holding the config file.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(path), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg.resolve(path), nil
}

// Validate reports settings no component can work with.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendJSON, storage.BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if _, err := render.ParseFilter(c.DefaultFilter); err != nil {
		return fmt.Errorf("default_filter: %w", err)
	}
	widths := map[string]int{
		"subject":     c.Columns.Subject,
		"description": c.Columns.Description,
		"deadline":    c.Columns.Deadline,
	}
	for name, w := range widths {
		if w < minColumnWidth {
			return fmt.Errorf("column %s width %d is below %d", name, w, minColumnWidth)
		}
	}
	return nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.DefaultFilter == "" {
		c.DefaultFilter = def.DefaultFilter
	}
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = def.Storage.Backend
	}
	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

func (c Config) resolve(configPath string) Config {
	dir := filepath.Dir(configPath)
	if !strings.HasPrefix(c.Storage.Path, "file:") && !filepath.IsAbs(c.Storage.Path) {
		c.Storage.Path = filepath.Join(dir, c.Storage.Path)
	}
	if c.Log.Path != "" && !filepath.IsAbs(c.Log.Path) {
		c.Log.Path = filepath.Join(dir, c.Log.Path)
	}
	return c
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DefaultFilter: "all",
		Storage: Storage{
			Backend: storage.BackendJSON,
			Path:    DefaultStoreName,
		},
		Columns: Columns{
			Subject:     18,
			Description: 32,
			Deadline:    18,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}
