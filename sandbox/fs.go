package sandbox

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FSFacility is the operating-system interface granted to plugins:
// read-side access to the paths the host asks about. Detectors inspect
// files, they do not rewrite them; mutation stays with the host engine.
type FSFacility struct{}

// Stat returns file metadata.
func (f *FSFacility) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads a whole file.
func (f *FSFacility) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Glob expands a shell pattern.
func (f *FSFacility) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// WalkDir walks the tree rooted at root.
func (f *FSFacility) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}
