package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

const documentName = "storage.json"

// document is the on-disk layout of a FileStorage.
type document struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// FileStorage keeps its keys in a single JSON document inside baseDir.
type FileStorage struct {
	name    string
	baseDir string

	mu sync.Mutex
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates the directory (0700) if needed. The document itself is
// only written on the first Write.
func NewFileStorage(name, baseDir string) (*FileStorage, error) {
	if baseDir == "" {
		return nil, errors.New("storage directory is required")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	log.Debug().Str("name", name).Str("baseDir", baseDir).Msg("file storage initialized")

	return &FileStorage{name: name, baseDir: baseDir}, nil
}

func (s *FileStorage) Name() string {
	return s.name
}

// Path returns the location of the backing document.
func (s *FileStorage) Path() string {
	return filepath.Join(s.baseDir, documentName)
}

func (s *FileStorage) Read(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", false, err
	}

	value, ok := doc.Values[key]
	return value, ok, nil
}

func (s *FileStorage) Write(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		if !errors.Is(err, ErrCorrupt) {
			return err
		}
		// a corrupt document is replaced rather than blocking new writes
		log.Warn().Str("name", s.name).Err(err).Msg("replacing corrupt storage document")
		doc = &document{Version: 1, Values: make(map[string]string)}
	}

	doc.Values[key] = value
	return s.save(doc)
}

func (s *FileStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		if !errors.Is(err, ErrCorrupt) {
			return err
		}
		// nothing in an unreadable document can be kept
		log.Warn().Str("name", s.name).Err(err).Msg("dropping corrupt storage document")
		if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s storage: %w", s.name, err)
		}
		return nil
	}

	if _, ok := doc.Values[key]; !ok {
		return nil
	}

	delete(doc.Values, key)
	return s.save(doc)
}

// Clear removes the backing document entirely.
func (s *FileStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear %s storage: %w", s.name, err)
	}

	log.Debug().Str("name", s.name).Msg("storage cleared")

	return nil
}

// load reads the document; a missing document is an empty one.
func (s *FileStorage) load() (*document, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &document{Version: 1, Values: make(map[string]string)}, nil
		}
		return nil, fmt.Errorf("failed to read %s storage: %w", s.name, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.name, err)
	}

	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}

	return &doc, nil
}

// save writes the document atomically.
func (s *FileStorage) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s storage: %w", s.name, err)
	}

	path := s.Path()
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s storage: %w", s.name, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save %s storage: %w", s.name, err)
	}

	return nil
}
