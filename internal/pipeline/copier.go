package pipeline

import (
	"io"
	"path/filepath"

	"github.com/joe/treesync/internal/entry"
	"github.com/joe/treesync/internal/output"
	"github.com/joe/treesync/internal/taxonomy"
)

const copyBufferSize = 32 * 1024

// copyTask implements C9: replace pair.Dst with pair.Src, recursively
// when Src is a directory.
func (p *Pipeline) copyTask(res *CopyResource, pair entry.Pair) bool {
	return p.copyEntry(res, pair.Src, pair.Dst)
}

func (p *Pipeline) copyEntry(res *CopyResource, src, dst entry.Entry) bool {
	if _, err := p.fs.Stat(dst.Path); err == nil {
		if !p.removeSubtree(dst.Path, dst.Side) {
			return false
		}
	}

	if src.IsFile {
		return p.copyFile(res, src, dst)
	}

	return p.copyDir(res, src, dst)
}

func (p *Pipeline) copyFile(res *CopyResource, src, dst entry.Entry) bool {
	if p.cfg.DryRun {
		p.copiedCount.Add(1)
		p.counts.Copied.CountFile(src.Extension, src.Size)
		p.sink.Emit(output.Event{Category: output.Copied, Side: dst.Side, IsFile: true, Path: dst.Path, Detail: "DryRun"})

		return true
	}

	n, err := p.copyFileContents(src.Path, dst.Path)
	if err != nil {
		p.reportError(taxonomy.ErrCopy, dst.Side, dst.Path, err)
		return false
	}

	res.addBytes(n)
	p.copiedCount.Add(1)
	p.counts.Copied.CountFile(src.Extension, n)
	p.sink.Emit(output.Event{Category: output.Copied, Side: dst.Side, IsFile: true, Path: dst.Path})

	return true
}

func (p *Pipeline) copyDir(res *CopyResource, src, dst entry.Entry) bool {
	if !p.cfg.DryRun {
		if err := p.fs.MkdirAll(dst.Path, 0o755); err != nil {
			p.reportError(taxonomy.CreateDirectory, dst.Side, dst.Path, err)
			return false
		}
	}

	files, dirs, err := p.enumerate(src, taxonomy.Source, nil, nil)
	if err != nil {
		return false
	}

	ok := true

	for _, f := range files {
		childSrc := entry.New(taxonomy.Source, filepath.Join(src.Path, f.Name), true, f.Size)
		childDst := childSrc.WithPath(dst.Side, filepath.Join(dst.Path, f.Name))

		if !p.copyEntry(res, childSrc, childDst) {
			ok = false
		}
	}

	files = nil // drop the file vector before descending into subdirectories, bounding memory

	for _, d := range dirs {
		childSrc := entry.New(taxonomy.Source, filepath.Join(src.Path, d.Name), false, 0)
		childDst := childSrc.WithPath(dst.Side, filepath.Join(dst.Path, d.Name))

		if !p.copyEntry(res, childSrc, childDst) {
			ok = false
		}
	}

	p.copiedCount.Add(1)
	p.counts.Copied.CountDir()

	return ok
}

// copyFileContents streams src to dst in fixed-size chunks, with no
// modtime/permission preservation (explicitly out of scope).
func (p *Pipeline) copyFileContents(srcPath, dstPath string) (int64, error) {
	in, err := p.fs.Open(srcPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := p.fs.Create(dstPath)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	buf := make([]byte, copyBufferSize)

	var total int64

	for {
		n, readErr := in.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return total, writeErr
			}

			total += int64(n)
		}

		if readErr != nil {
			if readErr == io.EOF {
				break
			}

			return total, readErr
		}
	}

	return total, nil
}
