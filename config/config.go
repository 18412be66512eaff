// Package config reads the auto-type settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mobile-next/autotype/autotype"
	"github.com/mobile-next/autotype/utils"
	"gopkg.in/ini.v1"
)

const (
	DefaultPlatform         = "robotgo"
	DefaultListen           = "localhost:12100"
	DefaultSelectionTimeout = 60 * time.Second
	DefaultGlobalShortcut   = "Ctrl+Alt+A"
)

// Config is the whole settings file.
type Config struct {
	// AskBeforeTyping is "security/autotypeask": always let the user pick,
	// even for a single global match.
	AskBeforeTyping bool
	// EntryTitleMatch lets an entry title found in the window title match.
	EntryTitleMatch bool

	Platform         string
	Database         string
	GlobalShortcut   string
	InitialDelay     time.Duration
	SelectionTimeout time.Duration

	Listen string
	CORS   bool
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		AskBeforeTyping:  true,
		EntryTitleMatch:  true,
		Platform:         DefaultPlatform,
		Database:         defaultDatabasePath(),
		GlobalShortcut:   DefaultGlobalShortcut,
		SelectionTimeout: DefaultSelectionTimeout,
		Listen:           DefaultListen,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/autotype/config.ini or its platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "autotype.ini"
	}
	return filepath.Join(dir, "autotype", "config.ini")
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "database.ini"
	}
	return filepath.Join(dir, "autotype", "database.ini")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		utils.Verbose("No config file at %s, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.parse(data, filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads INI data over the defaults. Relative database paths stay
// relative.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.parse(data, ""); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parse(data []byte, baseDir string) error {
	file, err := ini.Load(data)
	if err != nil {
		return err
	}

	security := file.Section("security")
	c.AskBeforeTyping = security.Key("autotypeask").MustBool(c.AskBeforeTyping)

	at := file.Section("autotype")
	c.EntryTitleMatch = at.Key("entry_title_match").MustBool(c.EntryTitleMatch)
	c.Platform = at.Key("platform").MustString(c.Platform)
	c.GlobalShortcut = at.Key("global_shortcut").MustString(c.GlobalShortcut)

	if at.HasKey("database") {
		c.Database = at.Key("database").String()
		if baseDir != "" && c.Database != "" && !filepath.IsAbs(c.Database) {
			c.Database = filepath.Join(baseDir, c.Database)
		}
	}

	if at.HasKey("initial_delay_ms") {
		ms, err := at.Key("initial_delay_ms").Int()
		if err != nil || ms < 0 {
			return fmt.Errorf("invalid autotype.initial_delay_ms %q", at.Key("initial_delay_ms").String())
		}
		c.InitialDelay = time.Duration(ms) * time.Millisecond
	}

	if at.HasKey("selection_timeout_s") {
		s, err := at.Key("selection_timeout_s").Int()
		if err != nil || s <= 0 {
			return fmt.Errorf("invalid autotype.selection_timeout_s %q", at.Key("selection_timeout_s").String())
		}
		c.SelectionTimeout = time.Duration(s) * time.Second
	}

	server := file.Section("server")
	c.Listen = server.Key("listen").MustString(c.Listen)
	c.CORS = server.Key("cors").MustBool(c.CORS)

	return nil
}

// Engine converts the settings the auto-type engine consults.
func (c *Config) Engine() autotype.Config {
	return autotype.Config{
		AskBeforeTyping: c.AskBeforeTyping,
		EntryTitleMatch: c.EntryTitleMatch,
		InitialDelay:    c.InitialDelay,
	}
}
