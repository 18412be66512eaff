package cli

import (
	"errors"
	"io/fs"

	"github.com/mobile-next/autotype/autotype"
	"github.com/mobile-next/autotype/commands"
	"github.com/mobile-next/autotype/config"
	"github.com/mobile-next/autotype/database"
	"github.com/mobile-next/autotype/platform"
	"github.com/mobile-next/autotype/utils"

	// register the robotgo platform and the in-memory "test" platform,
	// which dry-runs sequences without a display
	_ "github.com/mobile-next/autotype/platform/native"
	_ "github.com/mobile-next/autotype/platform/testplatform"
)

// loadConfig reads the settings file and applies command line overrides.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if platformName != "" {
		cfg.Platform = platformName
	}
	if databasePath != "" {
		cfg.Database = databasePath
	}

	utils.Verbose("Using platform %s and database %s", cfg.Platform, cfg.Database)
	return cfg, nil
}

// loadDatabase reads the database; a missing file is not an error, the
// service then reports that no database is loaded.
func loadDatabase(path string) (*database.Database, error) {
	db, err := database.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		utils.Verbose("No database at %s", path)
		return nil, nil
	}
	return db, err
}

// newService wires config, platform, engine and database together. The
// engine is closed by the shutdown hook.
func newService() (*commands.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	p, err := platform.New(cfg.Platform)
	if err != nil {
		return nil, err
	}

	engine := autotype.New(p, cfg.Engine())
	shutdownHook.Register("autotype engine", engine.Close)

	db, err := loadDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	return commands.NewService(engine, cfg, db), nil
}
