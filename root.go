package tmx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// ErrMissing is returned by a Root that does not hold the requested file.
var ErrMissing = errors.New("not found in root")

// Root resolves files a map document refers to, such as external tilesets.
// Paths use forward slashes and are relative to the map document.
type Root interface {
	ReadFile(name string) ([]byte, error)
}

// An FSRoot is a directory on the local file system.
type FSRoot string

func (f FSRoot) ReadFile(name string) ([]byte, error) {
	target := filepath.FromSlash(name)
	if !filepath.IsAbs(target) {
		target = filepath.Join(string(f), target)
	}

	data, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrMissing)
	}
	return data, err
}

// A MemoryRoot serves files from memory, keyed by their cleaned path.
type MemoryRoot map[string][]byte

func (m MemoryRoot) ReadFile(name string) ([]byte, error) {
	data, ok := m[path.Clean(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrMissing)
	}
	return data, nil
}

// noRoot is used when a document is read from memory without a Root.
type noRoot struct{}

func (noRoot) ReadFile(name string) ([]byte, error) {
	return nil, fmt.Errorf("%s: no root configured: %w", name, ErrMissing)
}

var (
	_ Root = FSRoot("")
	_ Root = MemoryRoot(nil)
	_ Root = noRoot{}
)

// fsRootFor returns the root that resolves references made by the document
// at filename.
func fsRootFor(filename string) Root {
	return FSRoot(filepath.Dir(filename))
}
