package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"solvectl/internal/ports"
)

const (
	recordDirMode   = 0o700
	recordFileMode  = 0o600
	tempFilePattern = ".session-*.toml.tmp"

	currentSchemaVersion = 1
)

// recordSchema is the single named on-disk record; it carries only the
// bearer token. Absence of the file means anonymous at next start.
type recordSchema struct {
	Version int    `toml:"version"`
	Token   string `toml:"token"`
}

func (s recordSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type Store struct {
	path string
	mu   sync.Mutex
}

var _ ports.TokenStore = (*Store)(nil)

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("session record path is empty")
	}

	return &Store{path: filepath.Clean(path)}, nil
}

func (s *Store) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read session record: %w", err)
	}

	var record recordSchema
	if err := toml.Unmarshal(data, &record); err != nil {
		return "", fmt.Errorf("decode session record: %w", err)
	}
	if err := record.validateVersion(); err != nil {
		return "", err
	}

	return record.Token, nil
}

func (s *Store) Save(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), recordDirMode); err != nil {
		return fmt.Errorf("create session record directory: %w", err)
	}

	encoded, err := toml.Marshal(recordSchema{Version: currentSchemaVersion, Token: token})
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create session record temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write session record: %w", err)
	}
	if err := tmp.Chmod(recordFileMode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod session record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close session record temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace session record: %w", err)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session record: %w", err)
	}

	return nil
}
