// Package filestore keeps uploaded statements on local disk until they are
// processed.
package filestore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/finance-analyzer/internal/models"
)

// Store handles local file storage under a base directory.
type Store struct {
	basePath string
}

// New creates the base directory if needed.
func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, models.PermissionDirectory); err != nil {
		return nil, fmt.Errorf("create filestore directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Save stores r under a random name that keeps the extension of filename and
// returns that name.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	uniqueID, err := generateID()
	if err != nil {
		return "", fmt.Errorf("generate file id: %w", err)
	}
	name := uniqueID + filepath.Ext(filename)
	fullPath := filepath.Join(s.basePath, name)

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, models.PermissionDataFile) // #nosec G304 -- generated name
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("close file: %w", err)
	}
	return name, nil
}

// Read returns the contents of a stored file.
func (s *Store) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(s.FullPath(name)) // #nosec G304 -- confined to basePath
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *Store) Delete(name string) error {
	if name == "" {
		return nil
	}
	if err := os.Remove(s.FullPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// FullPath returns the filesystem path of a stored name. Directory parts of
// name are ignored so callers cannot escape the base directory.
func (s *Store) FullPath(name string) string {
	return filepath.Join(s.basePath, filepath.Base(name))
}

// generateID creates a random 16-character hex string.
func generateID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
