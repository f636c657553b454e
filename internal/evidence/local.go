package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes evidence artifacts to a directory on disk. The returned
// reference is an absolute file path.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the directory if needed and returns the store.
// Directory creation is idempotent; an existing directory is not an error.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		// One retry: transient failures here should not cost the artifact.
		if err2 := os.MkdirAll(dir, 0o755); err2 != nil {
			return nil, fmt.Errorf("create evidence dir: %w", err2)
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve evidence dir: %w", err)
	}
	return &LocalStore{dir: abs}, nil
}

// Dir returns the absolute evidence directory.
func (s *LocalStore) Dir() string { return s.dir }

// Upload writes data under a collision-resistant name and returns its path.
func (s *LocalStore) Upload(ctx context.Context, data []byte, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, ObjectName(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write evidence %s: %w", name, err)
	}
	return path, nil
}

// UploadJSON marshals v with indentation and stores it like Upload.
func (s *LocalStore) UploadJSON(ctx context.Context, v any, name string) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}
	return s.Upload(ctx, data, name)
}
