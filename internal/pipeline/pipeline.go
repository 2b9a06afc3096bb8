// Package pipeline implements the parallel comparison/copy/cull engine:
// four cooperating bounded queues (directory-compare, file-compare, copy,
// remove), phase-ordered so mutation never races traversal, routed through
// a single Pipeline controller.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/joe/treesync/internal/counters"
	"github.com/joe/treesync/internal/entry"
	"github.com/joe/treesync/internal/faults"
	"github.com/joe/treesync/internal/filter"
	"github.com/joe/treesync/internal/output"
	"github.com/joe/treesync/internal/queue"
	"github.com/joe/treesync/internal/taxonomy"
	"github.com/joe/treesync/internal/worker"
	"github.com/joe/treesync/pkg/filesystem"
)

// bigDirThreshold is the child count above which an enumerated directory
// triggers a BigDir warning when verbose output is on.
const bigDirThreshold = 5000

// overloadFactor bounds how far ahead of file-compare's capacity
// dir-compare is allowed to queue work before it stalls.
const overloadFactor = 2

// Config is the pipeline's validated configuration. The CLI layer
// (internal/config) is responsible for producing one of these; the
// pipeline itself has no notion of flags or argv.
type Config struct {
	SourceRoot string
	DestRoot   string

	Mode taxonomy.Mode

	DryRun       bool
	Background   bool
	SkipFileRead bool

	ShowAbsolute bool

	Verbose bool
	Quiet   bool

	IgnoreExtra    bool
	IgnoreAccess   bool
	IgnoreUnknown  bool
	IgnoreWarnings bool
	IgnoreAll      bool
	ColorEnabled   bool
	Include        []string
	Exclude        []string
	LogDir         string
}

// threadCounts returns worker counts per §5's formulas.
func (c Config) threadCounts() (dir, file, copy, remove int) {
	total := runtime.NumCPU()
	if total < 1 {
		total = 1
	}

	if total > 64 {
		total = 64
	}

	dir = total/4 + 1
	file = total/2 + 1

	if c.Background {
		dir = halveAtLeastOne(dir)
		file = halveAtLeastOne(file)
	}

	if c.SkipFileRead {
		dir += file / 2
	}

	switch c.Mode {
	case taxonomy.Copy:
		copy = file
	case taxonomy.Cull:
		remove = file
	}

	return dir, file, copy, remove
}

func halveAtLeastOne(n int) int {
	h := n / 2
	if h < 1 {
		return 1
	}

	return h
}

// Counters groups the run's thread-safe tallies (C2).
type Counters struct {
	Source      *counters.TreeCounter
	Destination *counters.TreeCounter
	Mismatches  *counters.TreeCounter
	Errors      *counters.TreeCounter
	Copied      *counters.TreeCounter
	Removed     *counters.TreeCounter
}

func newCounters() *Counters {
	return &Counters{
		Source:      counters.NewTreeCounter(),
		Destination: counters.NewTreeCounter(),
		Mismatches:  counters.NewTreeCounter(),
		Errors:      counters.NewTreeCounter(),
		Copied:      counters.NewTreeCounter(),
		Removed:     counters.NewTreeCounter(),
	}
}

// Pipeline owns the four queues and the collaborators every worker
// closure needs: counters, the fault collector, the output sink, and the
// optional include/exclude filter. It is the only component aware of
// phase ordering.
type Pipeline struct {
	cfg    Config
	fs     filesystem.FileSystem
	filt   *filter.Filter
	sink   *output.Sink
	flt    *faults.Collector
	counts *Counters
	runID  string

	dirQueue    *queue.Queue[*DirCompareResource]
	fileQueue   *queue.Queue[*FileCompareResource]
	copyQueue   *queue.Queue[*CopyResource]
	removeQueue *queue.Queue[*RemoveResource]

	dirPool    *worker.Pool[*DirCompareResource]
	filePool   *worker.Pool[*FileCompareResource]
	copyPool   *worker.Pool[*CopyResource]
	removePool *worker.Pool[*RemoveResource]

	copiedCount  atomic.Int64
	removedCount atomic.Int64
}

// New constructs a Pipeline ready to Run. fs is the filesystem
// collaborator (RealFileSystem in production, MockFileSystem in tests).
func New(cfg Config, fs filesystem.FileSystem, sink *output.Sink) *Pipeline {
	dirWorkers, fileWorkers, copyWorkers, removeWorkers := cfg.threadCounts()

	p := &Pipeline{
		cfg:    cfg,
		fs:     fs,
		filt:   filter.New(cfg.Include, cfg.Exclude),
		sink:   sink,
		flt:    faults.New(),
		counts: newCounters(),
		runID:  uuid.NewString(),
	}

	p.dirQueue = queue.New(makeResources(dirWorkers, func() *DirCompareResource { return &DirCompareResource{} }))
	p.fileQueue = queue.New(makeResources(fileWorkers, NewFileCompareResource))
	p.copyQueue = queue.New(makeResources(copyWorkers, func() *CopyResource { return &CopyResource{} }))
	p.removeQueue = queue.New(makeResources(removeWorkers, func() *RemoveResource { return &RemoveResource{} }))

	p.dirPool = worker.New(p.dirQueue, dirWorkers, p.flt, p.dirCompareTask,
		worker.WithFinishPolicy[*DirCompareResource](func() bool { return p.dirQueue.Status().CompletedCount > 0 }),
		worker.WithWakePolicy[*DirCompareResource](func() bool {
			fileStatus := p.fileQueue.Status()
			return fileStatus.QueueSize <= overloadFactor*fileStatus.ResourceCount
		}),
	)

	p.filePool = worker.New(p.fileQueue, fileWorkers, p.flt, p.fileCompareTask,
		worker.WithFinishPolicy[*FileCompareResource](func() bool { return p.dirFinished() }),
	)

	p.copyPool = worker.New(p.copyQueue, copyWorkers, p.flt, p.copyTask,
		worker.WithFinishPolicy[*CopyResource](func() bool { return p.dirFinished() && p.fileFinished() }),
	)

	p.removePool = worker.New(p.removeQueue, removeWorkers, p.flt, p.removeTask,
		worker.WithFinishPolicy[*RemoveResource](func() bool { return p.dirFinished() && p.fileFinished() }),
	)

	return p
}

func makeResources[R any](n int, build func() R) []R {
	out := make([]R, n)
	for i := range out {
		out[i] = build()
	}

	return out
}

func (p *Pipeline) dirFinished() bool {
	st := p.dirQueue.Status()
	return st.IsDone() && st.CompletedCount > 0
}

func (p *Pipeline) fileFinished() bool {
	return p.dirFinished() && p.fileQueue.Status().IsDone()
}

// Result summarizes a completed run for the CLI's exit-code and
// final-line logic.
type Result struct {
	Aborted      bool
	AnyErrors    bool
	AnyMismatch  bool
	CopiedCount  int64
	RemovedCount int64
}

// Run seeds the dir-compare queue with the tree roots and drives every
// phase to completion, honoring ctx cancellation (e.g. SIGINT) exactly
// like a worker-raised fault: it flips the same abort flag.
func (p *Pipeline) Run(ctx context.Context) Result {
	if ctx != nil {
		go func() {
			<-ctx.Done()

			if ctx.Err() != nil {
				p.flt.Add(fmt.Errorf("run cancelled: %w", ctx.Err()))
			}
		}()
	}

	root := entry.Pair{
		Src: entry.New(taxonomy.Source, p.cfg.SourceRoot, false, 0),
		Dst: entry.New(taxonomy.Destination, p.cfg.DestRoot, false, 0),
	}

	p.dirPool.Start()
	p.filePool.Start()

	p.dirPool.Enqueue(root)

	p.dirPool.WaitUntilFinished(nil)
	p.dirPool.Stop()

	// Only once traversal has fully drained do mutation workers start —
	// a copy or remove must never be observable to the comparison phase.
	if p.cfg.Mode == taxonomy.Copy {
		p.copyPool.Start()
	}

	if p.cfg.Mode == taxonomy.Cull {
		p.removePool.Start()
	}

	p.filePool.WaitUntilFinished(nil)
	p.filePool.Stop()

	if p.cfg.Mode == taxonomy.Copy {
		p.copyPool.WaitUntilFinished(nil)
		p.copyPool.Stop()
	}

	if p.cfg.Mode == taxonomy.Cull {
		p.removePool.WaitUntilFinished(nil)
		p.removePool.Stop()
	}

	aborted := p.flt.WillAbort()

	_, _, _, accessErrors := p.counts.Errors.Totals()

	return Result{
		Aborted:      aborted,
		AnyErrors:    aborted || accessErrors > 0 || p.hasNonAccessErrors(),
		AnyMismatch:  p.hasMismatches(),
		CopiedCount:  p.copiedCount.Load(),
		RemovedCount: p.removedCount.Load(),
	}
}

func (p *Pipeline) hasMismatches() bool {
	for _, m := range []taxonomy.Mismatch{taxonomy.Missing, taxonomy.Extra, taxonomy.Size, taxonomy.Modified} {
		if p.counts.Mismatches.EnumTotal(int(m)) > 0 {
			return true
		}
	}

	return false
}

func (p *Pipeline) hasNonAccessErrors() bool {
	for _, k := range []taxonomy.ErrKind{
		taxonomy.DirIterMake, taxonomy.DirIterInc, taxonomy.Status, taxonomy.SymlinkStatus,
		taxonomy.ErrSize, taxonomy.Open, taxonomy.Read, taxonomy.CreateDirectory,
		taxonomy.ErrCopy, taxonomy.ErrRemove, taxonomy.Exists,
	} {
		if p.counts.Errors.EnumTotal(int(k)) > 0 {
			return true
		}
	}

	return false
}

// FinalizeAndReport writes the run's counter tables and final status line
// to the sink, matching §7's "user-visible final line" rules.
func (p *Pipeline) FinalizeAndReport(r Result) {
	p.sink.Table("Source tree", p.counts.Source.ExtensionSummary(10))
	p.sink.Table("Destination tree", p.counts.Destination.ExtensionSummary(10))
	p.sink.Table("Mismatches", p.counts.Mismatches.EnumSummary(10, func(n int) string { return taxonomy.Mismatch(n).String() }))
	p.sink.Table("Errors", p.counts.Errors.EnumSummary(10, func(n int) string { return taxonomy.ErrKind(n).String() }))
	p.sink.Table("Copied", p.counts.Copied.ExtensionSummary(10))
	p.sink.Table("Deleted", p.counts.Removed.ExtensionSummary(10))

	text, color := p.finalLine(r)
	p.sink.FinalLine(text, color)
}

func (p *Pipeline) finalLine(r Result) (string, taxonomy.Color) {
	suffix := ""
	if p.cfg.DryRun {
		suffix += " (dryrun)"
	}

	if p.cfg.SkipFileRead {
		suffix += " (skip_file_read…)"
	}

	switch p.cfg.Mode {
	case taxonomy.Compare:
		if !r.AnyErrors && !r.AnyMismatch {
			return "Equal" + suffix, taxonomy.ColorGreen
		}

		return "NOT equal" + suffix, taxonomy.ColorRed
	case taxonomy.Copy:
		if r.AnyErrors {
			return "FAIL" + suffix, taxonomy.ColorRed
		}

		if r.CopiedCount == 0 && !p.cfg.DryRun {
			return "Nothing to copy!" + suffix, taxonomy.ColorYellow
		}

		return "Success" + suffix, taxonomy.ColorGreen
	default: // Cull
		if r.AnyErrors {
			return "FAIL" + suffix, taxonomy.ColorRed
		}

		if r.RemovedCount == 0 && !p.cfg.DryRun {
			return "Nothing to cull!" + suffix, taxonomy.ColorYellow
		}

		return "Success" + suffix, taxonomy.ColorGreen
	}
}

// DirStatus, FileStatus, CopyStatus, RemoveStatus expose the four
// read-only status snapshots for any UI (C11/§6).
func (p *Pipeline) DirStatus() queue.Status    { return p.dirQueue.Status() }
func (p *Pipeline) FileStatus() queue.Status   { return p.fileQueue.Status() }
func (p *Pipeline) CopyStatus() queue.Status   { return p.copyQueue.Status() }
func (p *Pipeline) RemoveStatus() queue.Status { return p.removeQueue.Status() }

// HandleAll re-raises the first recorded worker fault, if any, exactly
// once. Call after Run returns.
func (p *Pipeline) HandleAll() { p.flt.HandleAll() }
