package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store persists uploaded image bytes and returns the public URL the
// stored file is served under.
type Store interface {
	Save(filename string, r io.Reader) (string, error)
}

// DiskStore writes files into a local directory that the app serves
// statically under /uploads.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(filename string, r io.Reader) (string, error) {
	// prefix with a uuid so concurrent uploads of the same filename never collide
	name := uuid.NewString() + "_" + filepath.Base(filename)
	dest := filepath.Join(s.dir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dest)
		return "", err
	}

	return "/uploads/" + name, nil
}
