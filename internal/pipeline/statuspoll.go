package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/joe/treesync/pkg/formatters"
)

// statusPeriodStart, statusPeriodStep, and statusPeriodCap match the
// source's console status-print backoff: the first print waits
// statusPeriodStart after the run begins, and every print after that waits
// statusPeriodStep longer than the last, up to statusPeriodCap.
const (
	statusPeriodStart = 5 * time.Second
	statusPeriodStep  = 3 * time.Second
	statusPeriodCap   = 20 * time.Second
)

// RunWithConsoleStatus runs the pipeline exactly like Run, but also prints a
// one-line progress summary to the console at a growing interval (5s, 8s,
// 11s, ... capped at 20s) for the duration of the run. It is the
// non-dashboard counterpart to dashboard.Run's live view: both poll the same
// four Status snapshots, one on a steady render tick and this one on a
// backed-off print cadence so a long compare/copy/cull isn't silent but
// short runs never print anything at all.
func (p *Pipeline) RunWithConsoleStatus(ctx context.Context) Result {
	done := make(chan struct{})
	go func() {
		p.printStatusLoop(done)
	}()

	result := p.Run(ctx)
	close(done)

	return result
}

func (p *Pipeline) printStatusLoop(done <-chan struct{}) {
	period := statusPeriodStart

	timer := time.NewTimer(period)
	defer timer.Stop()

	for {
		select {
		case <-done:
			return
		case <-timer.C:
			if p.allQueuesFinished() {
				return
			}

			p.sink.StatusLine(p.statusLine())

			period += statusPeriodStep
			if period > statusPeriodCap {
				period = statusPeriodCap
			}

			timer.Reset(period)
		}
	}
}

func (p *Pipeline) allQueuesFinished() bool {
	return p.dirQueue.Status().IsDone() && p.fileQueue.Status().IsDone() &&
		p.copyQueue.Status().IsDone() && p.removeQueue.Status().IsDone()
}

func (p *Pipeline) statusLine() string {
	dir := p.DirStatus()
	file := p.FileStatus()
	cp := p.CopyStatus()
	rm := p.RemoveStatus()

	filePercent := 0.0
	if file.ResourceCount > 0 {
		filePercent = file.ProgressSum / float64(file.ResourceCount)
	}

	return fmt.Sprintf(
		"dir: %d done, %d queued | file: %.0f%% busy=%d/%d | copy: %d done, %s | remove: %d done",
		dir.CompletedCount, dir.QueueSize,
		filePercent, file.BusyCount, file.ResourceCount,
		cp.CompletedCount, formatters.FormatBytes(int64(cp.ProgressSum)),
		rm.CompletedCount,
	)
}
