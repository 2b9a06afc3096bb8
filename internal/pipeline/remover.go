package pipeline

import (
	"path/filepath"

	"github.com/joe/treesync/internal/entry"
	"github.com/joe/treesync/internal/output"
	"github.com/joe/treesync/internal/taxonomy"
)

// removeTask implements C10: recursively delete pair.Dst's subtree.
func (p *Pipeline) removeTask(res *RemoveResource, pair entry.Pair) bool {
	res.markStarted()

	return p.removeSubtree(pair.Dst.Path, pair.Dst.Side)
}

// removeSubtree deletes path and everything under it, reporting the
// number of items removed; removing zero items for a path that existed
// is itself an error (Error::Remove), since the filesystem changed out
// from under the run.
func (p *Pipeline) removeSubtree(path string, side taxonomy.Side) bool {
	info, statErr := p.fs.Stat(path)
	if statErr != nil {
		p.reportError(taxonomy.Exists, side, path, statErr)
		return false
	}

	removed, ok := p.removeRecursive(path, info.IsDir(), info.Size(), side)
	if !ok {
		return false
	}

	if removed == 0 {
		p.reportError(taxonomy.ErrRemove, side, path, errZeroRemoved{path})
		return false
	}

	p.removedCount.Add(removed)
	p.sink.Emit(output.Event{Category: output.Deleted, Side: side, IsFile: !info.IsDir(), Path: path})

	return true
}

func (p *Pipeline) removeRecursive(path string, isDir bool, size int64, side taxonomy.Side) (int64, bool) {
	if !isDir {
		if err := p.removeOne(path, side); err != nil {
			return 0, false
		}

		p.counts.Removed.CountFile(extensionOf(filepath.Base(path)), size)

		return 1, true
	}

	children, err := p.fs.ReadDir(path)
	if err != nil {
		p.reportError(taxonomy.DirIterMake, side, path, err)
		return 0, false
	}

	var total int64

	for _, c := range children {
		n, ok := p.removeRecursive(filepath.Join(path, c.Name), c.IsDir, c.Size, side)
		if !ok {
			return total, false
		}

		total += n
	}

	if err := p.removeOne(path, side); err != nil {
		return total, false
	}

	p.counts.Removed.CountDir()

	return total + 1, true
}

func (p *Pipeline) removeOne(path string, side taxonomy.Side) error {
	if p.cfg.DryRun {
		return nil
	}

	if err := p.fs.Remove(path); err != nil {
		p.reportError(taxonomy.ErrRemove, side, path, err)
		return err
	}

	return nil
}

type errZeroRemoved struct{ path string }

func (e errZeroRemoved) Error() string {
	return "removed zero items from " + e.path + " though it existed"
}
