package pipeline

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/joe/treesync/internal/entry"
	"github.com/joe/treesync/internal/output"
	"github.com/joe/treesync/internal/taxonomy"
	actionableerrors "github.com/joe/treesync/pkg/errors"
	"github.com/joe/treesync/pkg/filesystem"
)

var suggestionGenerator = actionableerrors.NewSuggestionGenerator()

// dirCompareTask implements C7: enumerate both sides of pair in parallel,
// classify and sort each side's children, then merge-walk files and
// directories in lockstep, scheduling further work or mismatch events.
func (p *Pipeline) dirCompareTask(res *DirCompareResource, pair entry.Pair) bool {
	g, _ := errgroup.WithContext(context.Background())

	g.Go(func() error {
		var err error
		res.srcFiles, res.srcDirs, err = p.enumerate(pair.Src, taxonomy.Source, res.srcFiles, res.srcDirs)

		return err
	})

	g.Go(func() error {
		var err error
		res.dstFiles, res.dstDirs, err = p.enumerate(pair.Dst, taxonomy.Destination, res.dstFiles, res.dstDirs)

		return err
	})

	if err := g.Wait(); err != nil {
		return false
	}

	p.mergeWalk(res.srcFiles, res.dstFiles, true, pair.Src.Path, pair.Dst.Path)
	p.mergeWalk(res.srcDirs, res.dstDirs, false, pair.Src.Path, pair.Dst.Path)

	return true
}

// enumerate lists one side of a directory, classifies and filters each
// child, tallies it against that side's TreeCounter, and returns the
// populated, name-sorted file and directory slices.
func (p *Pipeline) enumerate(
	dir entry.Entry,
	side taxonomy.Side,
	fileBuf, dirBuf []filesystem.DirEntry,
) ([]filesystem.DirEntry, []filesystem.DirEntry, error) {
	children, err := p.fs.ReadDir(dir.Path)
	if err != nil {
		p.reportError(taxonomy.DirIterMake, side, dir.Path, err)
		return fileBuf, dirBuf, err
	}

	root := p.cfg.SourceRoot
	if side == taxonomy.Destination {
		root = p.cfg.DestRoot
	}

	tree := p.counts.Source
	if side == taxonomy.Destination {
		tree = p.counts.Destination
	}

	for _, c := range children {
		rel, _ := filepath.Rel(root, filepath.Join(dir.Path, c.Name))
		if !p.filt.Allows(rel) {
			continue
		}

		switch {
		case c.IsSymlink:
			if runtime.GOOS == "windows" {
				p.reportUnsupported(side, filepath.Join(dir.Path, c.Name))
				continue
			}

			c.Size = 0
			fileBuf = append(fileBuf, c)
			tree.CountFile(extensionOf(c.Name), 0)
		case c.IsDir:
			dirBuf = append(dirBuf, c)
			tree.CountDir()
		case c.IsUnsupported:
			p.reportUnsupported(side, filepath.Join(dir.Path, c.Name))
		default:
			fileBuf = append(fileBuf, c)
			tree.CountFile(extensionOf(c.Name), c.Size)
		}
	}

	sort.Slice(fileBuf, func(i, j int) bool { return fileBuf[i].Name < fileBuf[j].Name })
	sort.Slice(dirBuf, func(i, j int) bool { return dirBuf[i].Name < dirBuf[j].Name })

	if p.cfg.Verbose && !p.cfg.IgnoreWarnings && !p.cfg.IgnoreAll && len(children) > bigDirThreshold {
		p.sink.Emit(output.Event{
			Category: output.Warning,
			Name:     "BigDir",
			Side:     side,
			Path:     dir.Path,
			Detail:   "directory has more than 5000 children",
		})
	}

	return fileBuf, dirBuf, nil
}

func extensionOf(name string) string {
	return entry.New(taxonomy.Source, name, true, 0).Extension
}

// mergeWalk walks srcList and dstList — both already sorted by name — in
// lockstep, synthesizing Missing/Extra/Size mismatches or scheduling
// recursive/file-compare work for names present on both sides.
func (p *Pipeline) mergeWalk(srcList, dstList []filesystem.DirEntry, isFile bool, srcParent, dstParent string) {
	i, j := 0, 0

	for i < len(srcList) || j < len(dstList) {
		switch {
		case j >= len(dstList) || (i < len(srcList) && srcList[i].Name < dstList[j].Name):
			p.handleMissing(srcList[i], isFile, srcParent, dstParent)
			i++
		case i >= len(srcList) || srcList[i].Name > dstList[j].Name:
			p.handleExtra(dstList[j], isFile, dstParent)
			j++
		default:
			p.handleSame(srcList[i], dstList[j], isFile, srcParent, dstParent)
			i++
			j++
		}
	}
}

func (p *Pipeline) handleMissing(src filesystem.DirEntry, isFile bool, srcParent, dstParent string) {
	srcEntry := entry.New(taxonomy.Source, filepath.Join(srcParent, src.Name), isFile, src.Size)
	dstEntry := srcEntry.WithPath(taxonomy.Destination, filepath.Join(dstParent, src.Name))

	p.routeMismatch(taxonomy.Missing, entry.Pair{Src: srcEntry, Dst: dstEntry}, isFile)
}

func (p *Pipeline) handleExtra(dst filesystem.DirEntry, isFile bool, dstParent string) {
	dstEntry := entry.New(taxonomy.Destination, filepath.Join(dstParent, dst.Name), isFile, dst.Size)

	p.routeMismatch(taxonomy.Extra, entry.Pair{Dst: dstEntry}, isFile)
}

func (p *Pipeline) handleSame(src, dst filesystem.DirEntry, isFile bool, srcParent, dstParent string) {
	srcEntry := entry.New(taxonomy.Source, filepath.Join(srcParent, src.Name), isFile, src.Size)
	dstEntry := entry.New(taxonomy.Destination, filepath.Join(dstParent, dst.Name), isFile, dst.Size)
	pair := entry.Pair{Src: srcEntry, Dst: dstEntry}

	if !isFile {
		p.dirPool.Enqueue(pair)
		return
	}

	switch {
	case src.Size != dst.Size:
		p.routeMismatch(taxonomy.Size, pair, true)
	case !p.cfg.SkipFileRead && src.Size > 0:
		p.filePool.Enqueue(pair)
	}
}

// routeMismatch counts and logs a mismatch, then acts on it per the
// run's mode (§4.4's routing table).
func (p *Pipeline) routeMismatch(mismatch taxonomy.Mismatch, pair entry.Pair, isFile bool) {
	p.counts.Mismatches.CountEnum(int(mismatch), 0)

	if p.shouldLogMismatch(mismatch) {
		side := taxonomy.Destination
		path := pair.Dst.Path

		if mismatch == taxonomy.Missing {
			side = taxonomy.Source
			path = pair.Src.Path
		}

		p.sink.Emit(output.Event{
			Category: output.Mismatch,
			Name:     mismatch.String(),
			Side:     side,
			IsFile:   isFile,
			Path:     path,
		})
	}

	switch p.cfg.Mode {
	case taxonomy.Copy:
		if mismatch == taxonomy.Missing || mismatch == taxonomy.Size || mismatch == taxonomy.Modified {
			p.copyPool.Enqueue(pair)
		}
	case taxonomy.Cull:
		if mismatch == taxonomy.Extra {
			p.removePool.Enqueue(pair)
		}
	}
}

func (p *Pipeline) shouldLogMismatch(mismatch taxonomy.Mismatch) bool {
	if p.cfg.IgnoreAll {
		return false
	}

	if mismatch == taxonomy.Extra && p.cfg.IgnoreExtra {
		return false
	}

	return true
}

func (p *Pipeline) reportUnsupported(side taxonomy.Side, path string) {
	if p.cfg.IgnoreUnknown || p.cfg.IgnoreWarnings || p.cfg.IgnoreAll {
		p.counts.Errors.CountEnum(int(taxonomy.UnsupportedType), 0)
		return
	}

	p.counts.Errors.CountEnum(int(taxonomy.UnsupportedType), 0)
	p.sink.Emit(output.Event{
		Category: output.Warning,
		Name:     taxonomy.UnsupportedType.String(),
		Side:     side,
		Path:     path,
		Detail:   "unsupported entry type (symlink on Windows, device, etc.)",
	})
}

// reportError counts, classifies and logs a per-entry filesystem error.
func (p *Pipeline) reportError(kind taxonomy.ErrKind, side taxonomy.Side, path string, err error) {
	tree := p.counts.Source
	if side == taxonomy.Destination {
		tree = p.counts.Destination
	}

	access := taxonomy.IsAccessError(kind, err.Error())
	if access {
		tree.CountAccessError()
		p.counts.Errors.CountAccessError()

		if p.cfg.IgnoreAccess || p.cfg.IgnoreAll {
			return
		}
	}

	ordinal := kind
	if access {
		ordinal = taxonomy.Access
	}

	p.counts.Errors.CountEnum(int(ordinal), 0)

	p.sink.Emit(output.Event{
		Category: output.Error,
		Name:     ordinal.String(),
		Side:     side,
		Path:     path,
		Detail:   detailWithSuggestions(kind, path, err),
	})
}

// detailWithSuggestions classifies kind via pkg/errors.CategoryFor, wraps
// err as an ActionableError, and appends its remediation suggestions to the
// logged detail line.
func detailWithSuggestions(kind taxonomy.ErrKind, path string, err error) string {
	category := actionableerrors.CategoryFor(kind)
	suggestions := suggestionGenerator.Generate(category, path)
	actionable := actionableerrors.NewActionableError(err.Error(), category, suggestions, path)

	formatted := actionableerrors.FormatSuggestions(actionable)
	if formatted == "" {
		return actionable.OriginalError()
	}

	return actionable.OriginalError() + "\n" + formatted
}
