package diskv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/julianstephens/pillbox/internal/constants"
	"github.com/julianstephens/pillbox/internal/storage"
)

// Store keeps every collection in its own file under a base directory.
type Store struct {
	*storage.Collections

	basePath string
	d        *diskv.Diskv
}

// ConfigPath reports whether config selects the directory backend and
// returns the directory it names.
func ConfigPath(config string) (string, bool) {
	if !strings.HasPrefix(config, constants.DiskvPrefix) {
		return "", false
	}
	return strings.TrimPrefix(config, constants.DiskvPrefix), true
}

func NewStore(basePath string) *Store {
	s := &Store{basePath: filepath.Clean(basePath)}
	s.Collections = storage.NewCollections(s)
	return s
}

func (s *Store) open() {
	s.d = diskv.New(diskv.Options{
		BasePath: s.basePath,
		TempDir:  s.basePath + ".tmp",
		// Other processes write here too; an in-memory cache would serve stale collections.
		CacheSizeMax: 0,
	})
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.basePath, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if s.d == nil {
		s.open()
	}
	return s.EnsureDefaultSettings(context.Background())
}

func (s *Store) Load() error {
	if s.d != nil {
		return nil
	}
	info, err := os.Stat(s.basePath)
	if errors.Is(err, fs.ErrNotExist) {
		return storage.ErrNotInitialized
	}
	if err != nil {
		return fmt.Errorf("failed to stat data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.basePath)
	}
	s.open()
	if !s.d.Has(constants.KeySettings) {
		s.d = nil
		return storage.ErrNotInitialized
	}
	return nil
}

func (s *Store) Close() error {
	s.d = nil
	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if s.d == nil {
		return nil, storage.ErrNotLoaded
	}
	if !s.d.Has(key) {
		return nil, storage.ErrKeyNotFound
	}
	return s.d.Read(key)
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if s.d == nil {
		return storage.ErrNotLoaded
	}
	return s.d.Write(key, value)
}

func (s *Store) GetConfigPath() string {
	return constants.DiskvPrefix + s.basePath
}
