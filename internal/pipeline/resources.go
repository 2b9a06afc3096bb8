package pipeline

import (
	"time"

	"github.com/joe/treesync/pkg/filesystem"
)

// MaxRead is the largest chunk a file-compare task will read in one
// step; MinRead is the smallest (and the starting chunk size).
const (
	MaxRead = 1 << 20
	MinRead = 1 << 14
)

// CopyResource is the copy queue's per-worker scratch: just a running
// byte count, so the queue's progress_sum reflects bytes copied so far
// across every busy worker.
type CopyResource struct {
	bytesCopied int64
}

func (r *CopyResource) Reset()            { r.bytesCopied = 0 }
func (r *CopyResource) Teardown()         {}
func (r *CopyResource) Progress() float64 { return float64(r.bytesCopied) }

func (r *CopyResource) addBytes(n int64) { r.bytesCopied += n }

// RemoveResource is the remove queue's per-worker scratch: the task's
// start time, exposed as progress purely to let a status display show
// "time spent deleting" for the busiest removal.
type RemoveResource struct {
	startedAt time.Time
}

func (r *RemoveResource) Reset()            { r.startedAt = time.Time{} }
func (r *RemoveResource) Teardown()         {}
func (r *RemoveResource) Progress() float64 { return float64(r.startedAt.Unix()) }

func (r *RemoveResource) markStarted() { r.startedAt = time.Now() }

// FileCompareResource is the file-compare queue's per-worker scratch: two
// open streams (one per side) and two reusable read buffers sized to
// MaxRead, allocated once and never resized. progress is a 0-100
// percentage of the current file's bytes compared so far.
type FileCompareResource struct {
	srcFile filesystem.File
	dstFile filesystem.File
	srcBuf  []byte
	dstBuf  []byte
	percent float64
}

// NewFileCompareResource preallocates both read buffers at MaxRead.
func NewFileCompareResource() *FileCompareResource {
	return &FileCompareResource{
		srcBuf: make([]byte, MaxRead),
		dstBuf: make([]byte, MaxRead),
	}
}

func (r *FileCompareResource) Reset() {
	r.percent = 0
	r.closeStreams()
}

// Teardown is a safety net: the file-compare task itself calls
// closeStreams early on a Modified mismatch (see filecompare.go), so by
// the time the queue calls Teardown the streams are usually already nil.
func (r *FileCompareResource) Teardown() { r.closeStreams() }

func (r *FileCompareResource) Progress() float64 { return r.percent }

func (r *FileCompareResource) closeStreams() {
	if r.srcFile != nil {
		r.srcFile.Close()
		r.srcFile = nil
	}

	if r.dstFile != nil {
		r.dstFile.Close()
		r.dstFile = nil
	}
}

// DirCompareResource is the dir-compare queue's per-worker scratch: two
// pairs of pre-reserved child-entry vectors, one pair for file children
// and one for directory children, each side. It carries no progress of
// its own — directory enumeration is not something a status display
// meaningfully shows a percentage for.
type DirCompareResource struct {
	srcFiles []filesystem.DirEntry
	dstFiles []filesystem.DirEntry
	srcDirs  []filesystem.DirEntry
	dstDirs  []filesystem.DirEntry
}

func (r *DirCompareResource) Reset() {
	r.srcFiles = r.srcFiles[:0]
	r.dstFiles = r.dstFiles[:0]
	r.srcDirs = r.srcDirs[:0]
	r.dstDirs = r.dstDirs[:0]
}

func (r *DirCompareResource) Teardown()         {}
func (r *DirCompareResource) Progress() float64 { return 0 }
