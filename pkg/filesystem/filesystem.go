// Package filesystem provides an abstraction layer for filesystem operations
// to enable dependency injection and testing without actual filesystem I/O.
package filesystem

import (
	"fmt"
	"io"
	"os"
	"time"
)

// File is an interface that abstracts file operations.
// This allows us to work with both real files and mock files.
type File interface {
	io.Reader
	io.Writer
	io.Closer
	Stat() (os.FileInfo, error)
}

// DirEntry describes one immediate child of a directory, classified
// without following a symlink — the pipeline's directory compare needs this
// distinction to treat a symlink as neither a plain file nor a
// recursable directory, and to recognize a socket/device/FIFO/other
// irregular entry as neither (IsUnsupported) rather than silently
// counting it as a regular file.
type DirEntry struct {
	Name          string
	IsDir         bool
	IsSymlink     bool
	IsUnsupported bool
	Size          int64
}

// FileSystem is an interface that abstracts filesystem operations.
// This allows for dependency injection and testing with mock implementations.
type FileSystem interface {
	// ReadDir lists path's immediate children, one level deep, without
	// following symlinks.
	ReadDir(path string) ([]DirEntry, error)

	// Low-level file operations (used by the pipeline's copy, file-compare and remove tasks)
	Open(path string) (File, error)
	Create(path string) (File, error)
	MkdirAll(path string, perm os.FileMode) error
	Chtimes(path string, atime, mtime time.Time) error
	Remove(path string) error
	Stat(path string) (os.FileInfo, error)
}

// RealFileSystem implements FileSystem using actual os/filepath functions.
type RealFileSystem struct{}

// NewRealFileSystem creates a new RealFileSystem instance.
func NewRealFileSystem() *RealFileSystem {
	return &RealFileSystem{}
}

// Chtimes changes the access and modification times of a file.
func (fs *RealFileSystem) Chtimes(path string, atime, mtime time.Time) error {
	err := os.Chtimes(path, atime, mtime)
	if err != nil {
		return fmt.Errorf("failed to change times for %s: %w", path, err)
	}

	return nil
}

// Create creates a file for writing.
func (fs *RealFileSystem) Create(path string) (File, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return file, nil
}

// MkdirAll creates a directory and all necessary parents.
func (fs *RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	err := os.MkdirAll(path, perm)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	return nil
}

// Open opens a file for reading.
func (fs *RealFileSystem) Open(path string) (File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return file, nil
}

// Remove removes a file or empty directory.
func (fs *RealFileSystem) Remove(path string) error {
	err := os.Remove(path)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}

// ReadDir lists path's immediate children without following symlinks.
// os.ReadDir's entries already carry lstat-style type bits, so a symlink
// is reported as a symlink rather than as whatever it points at.
func (fs *RealFileSystem) ReadDir(path string) ([]DirEntry, error) {
	raw, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	out := make([]DirEntry, 0, len(raw))

	for _, e := range raw {
		mode := e.Type()

		entry := DirEntry{
			Name:      e.Name(),
			IsDir:     mode.IsDir(),
			IsSymlink: mode&os.ModeSymlink != 0,
		}

		entry.IsUnsupported = !entry.IsDir && !entry.IsSymlink && !mode.IsRegular()

		if !entry.IsDir && !entry.IsSymlink && !entry.IsUnsupported {
			info, infoErr := e.Info()
			if infoErr != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", entry.Name, infoErr)
			}

			entry.Size = info.Size()
		}

		out = append(out, entry)
	}

	return out, nil
}

// Stat returns file information.
func (fs *RealFileSystem) Stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return info, nil
}
