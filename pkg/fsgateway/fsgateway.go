// Package fsgateway abstracts read/write/enumerate access to a directory
// tree so the engine can be tested against an in-memory fake and so all
// filesystem errors are normalized to vkerrors.Error.
//
// The gateway never recurses on the caller's behalf (spec §4.5); the
// engine interleaves hashing, dedup, and transaction work between
// directory levels, so recursion stays the engine's responsibility.
package fsgateway

import (
	"os"
	"path/filepath"

	"github.com/cuemby/vaultkeep/pkg/vkerrors"
)

// Gateway is the abstract filesystem surface the engine depends on.
type Gateway interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	CreateDirectory(path string) error
	ListFiles(path string) ([]string, error)
	ListSubdirectories(path string) ([]string, error)
	FileExists(path string) bool
	DirectoryExists(path string) bool
}

// OSGateway implements Gateway over the host filesystem.
type OSGateway struct{}

// New returns a Gateway backed by the real operating system.
func New() *OSGateway {
	return &OSGateway{}
}

func (g *OSGateway) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, vkerrors.Wrap(vkerrors.KindReadFailed, path, err)
	}
	return data, nil
}

func (g *OSGateway) WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return vkerrors.Wrap(vkerrors.KindWriteFailed, path, err)
	}
	return nil
}

// CreateDirectory is idempotent: it is not an error if path already
// exists as a directory.
func (g *OSGateway) CreateDirectory(path string) error {
	if path == "" {
		return vkerrors.New(vkerrors.KindInvalidInput, "fsgateway: empty directory path")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return vkerrors.Wrap(vkerrors.KindWriteFailed, path, err)
	}
	return nil
}

// ListFiles returns the paths of all non-directory entries directly under
// path (non-recursive; directories are not included, while symlinks and
// other special files are).
func (g *OSGateway) ListFiles(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, vkerrors.Wrap(vkerrors.KindReadFailed, path, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	return files, nil
}

// ListSubdirectories returns the absolute paths of directories directly
// under path (non-recursive).
func (g *OSGateway) ListSubdirectories(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, vkerrors.Wrap(vkerrors.KindReadFailed, path, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(path, e.Name()))
		}
	}
	return dirs, nil
}

func (g *OSGateway) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (g *OSGateway) DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
