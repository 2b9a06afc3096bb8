package pipeline

import (
	"bytes"
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/joe/treesync/internal/entry"
	"github.com/joe/treesync/internal/taxonomy"
)

// fileCompareTask implements C8: open both streams, then read
// exponentially-growing chunks from each side in parallel and
// byte-compare them, until the files are exhausted or a difference is
// found. Precondition (enforced by the caller, dircompare.go's
// handleSame): both sides are regular files with equal, nonzero size.
func (p *Pipeline) fileCompareTask(res *FileCompareResource, pair entry.Pair) bool {
	var err error

	res.srcFile, err = p.fs.Open(pair.Src.Path)
	if err != nil {
		p.reportError(taxonomy.Open, taxonomy.Source, pair.Src.Path, err)
		return false
	}

	res.dstFile, err = p.fs.Open(pair.Dst.Path)
	if err != nil {
		p.reportError(taxonomy.Open, taxonomy.Destination, pair.Dst.Path, err)
		res.closeStreams()

		return false
	}

	size := pair.Src.Size
	remaining := size
	chunk := minInt64(remaining, MinRead)

	for remaining > 0 {
		g, _ := errgroup.WithContext(context.Background())

		srcSlice := res.srcBuf[:chunk]
		dstSlice := res.dstBuf[:chunk]

		g.Go(func() error { return readFull(res.srcFile, srcSlice) })
		g.Go(func() error { return readFull(res.dstFile, dstSlice) })

		if err := g.Wait(); err != nil {
			p.reportError(taxonomy.Read, taxonomy.Source, pair.Src.Path, err)
			res.closeStreams()

			return false
		}

		remaining -= chunk
		res.percent = (float64(size-remaining) / float64(size)) * 100

		if !bytes.Equal(srcSlice, dstSlice) {
			res.closeStreams()
			p.routeMismatch(taxonomy.Modified, pair, true)

			return true
		}

		chunk = minInt64(minInt64(chunk*2, MaxRead), remaining)
	}

	return true
}

func readFull(r interface{ Read([]byte) (int, error) }, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n

		if err != nil && total < len(buf) {
			return err
		}

		if n == 0 && err == nil {
			break
		}
	}

	return nil
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}
