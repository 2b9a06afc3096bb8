// Package entry holds the normalized, immutable record of one filesystem
// item used throughout the pipeline, and the pairing of a source entry with
// its destination counterpart that every queue operates on.
package entry

import (
	"path/filepath"
	"strings"

	"github.com/joe/treesync/internal/taxonomy"
)

// Entry is an immutable description of one filesystem item on one side of
// the comparison. Once constructed it never changes.
type Entry struct {
	Side      taxonomy.Side
	IsFile    bool
	Path      string
	Name      string
	Extension string
	Size      int64
}

// New builds an Entry from a side, an absolute path, a file/dir flag and a
// size (ignored for directories). The name is the path's last component;
// when that is empty (the path is a filesystem root, e.g. "/" or "C:\"),
// the root path itself stands in as the name, mirroring the source's
// fallback for entries that have no ordinary parent-relative basename.
func New(side taxonomy.Side, path string, isFile bool, size int64) Entry {
	clean := filepath.Clean(path)
	name := filepath.Base(clean)

	if name == "." || name == string(filepath.Separator) || name == "" {
		name = clean
	}

	ext := ""
	if isFile {
		ext = extensionOf(name)
	}

	if !isFile {
		size = 0
	}

	return Entry{
		Side:      side,
		IsFile:    isFile,
		Path:      clean,
		Name:      name,
		Extension: ext,
		Size:      size,
	}
}

// WithPath returns a copy of e rooted at a different path, keeping its
// file/dir flag, size and side but recomputing name and extension. Used to
// synthesize the destination side of a Missing mismatch, mirroring the
// source entry's shape at the destination's path.
func (e Entry) WithPath(side taxonomy.Side, path string) Entry {
	return New(side, path, e.IsFile, e.Size)
}

// extensionOf returns name's suffix after the final '.', or "" if name has
// no '.' or the '.' is the first character (a dotfile's leading dot is not
// an extension separator).
func extensionOf(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}

	return name[idx+1:]
}

// Pair is the unit of work carried by every queue: a source entry and its
// destination counterpart. Directory-compare and file-compare require both;
// copy treats Src as the prototype and Dst as the target path; remove
// requires only Dst, with Src left as the zero Entry.
type Pair struct {
	Src Entry
	Dst Entry
}

// JoinChild joins a parent path with a child name, matching filepath.Join's
// platform separator handling.
func JoinChild(parent, name string) string {
	return filepath.Join(parent, name)
}
