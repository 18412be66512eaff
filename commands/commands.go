package commands

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mobile-next/autotype/autotype"
	"github.com/mobile-next/autotype/config"
	"github.com/mobile-next/autotype/database"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

var errNoDatabase = errors.New("no credential database loaded")

// Service is what every command runs against: one engine, its settings and
// the current database. The database may be swapped while commands run.
type Service struct {
	engine *autotype.Engine
	config *config.Config

	mu sync.RWMutex
	db *database.Database
}

// NewService wires a service. db may be nil until one is loaded.
func NewService(engine *autotype.Engine, cfg *config.Config, db *database.Database) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Service{engine: engine, config: cfg, db: db}
}

func (s *Service) Engine() *autotype.Engine { return s.engine }
func (s *Service) Config() *config.Config   { return s.config }

// Database returns the current database or nil.
func (s *Service) Database() *database.Database {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// SetDatabase replaces the database, e.g. after the file changed on disk.
func (s *Service) SetDatabase(db *database.Database) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db = db
}

func (s *Service) requireDatabase() (*database.Database, error) {
	db := s.Database()
	if db == nil {
		return nil, errNoDatabase
	}
	return db, nil
}

func (s *Service) findEntry(ref string) (*database.Entry, error) {
	if ref == "" {
		return nil, fmt.Errorf("entry is required")
	}

	db, err := s.requireDatabase()
	if err != nil {
		return nil, err
	}
	return db.FindEntry(ref)
}

// EntryInfo describes an entry without its secrets.
type EntryInfo struct {
	Path     string `json:"path" yaml:"path"`
	Title    string `json:"title" yaml:"title"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
}

func newEntryInfo(e autotype.Entry) EntryInfo {
	info := EntryInfo{
		Title:    e.Title(),
		Username: e.Username(),
	}
	if dbEntry, ok := e.(*database.Entry); ok {
		info.Path = dbEntry.Path()
		info.URL = dbEntry.URL()
	}
	return info
}
