// Package dashboard implements the optional terminal status dashboard
// (--dashboard): a single polling bubbletea model standing in for the
// console sink, rendering the four queue stages' live status. This tool
// has no interactive setup phase, only flags and two positional paths,
// so there is no multi-screen wizard to drive here.
package dashboard

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/treesync/internal/pipeline"
	"github.com/joe/treesync/internal/queue"
	"github.com/joe/treesync/internal/tui/shared"
)

// Run drives p.Run in the background and renders its progress until it
// finishes, returning the same Result the non-dashboard path would have
// gotten from calling p.Run directly.
func Run(ctx context.Context, p *pipeline.Pipeline) (pipeline.Result, error) {
	resultCh := make(chan pipeline.Result, 1)

	go func() { resultCh <- p.Run(ctx) }()

	m := &model{
		p:        p,
		resultCh: resultCh,
		bars: [4]progress.Model{
			shared.NewProgressModel(shared.ProgressBarWidth),
			shared.NewProgressModel(shared.ProgressBarWidth),
			shared.NewProgressModel(shared.ProgressBarWidth),
			shared.NewProgressModel(shared.ProgressBarWidth),
		},
	}

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("dashboard: %w", err)
	}

	fm, _ := final.(*model)

	return fm.result, nil
}

type resultMsg pipeline.Result

func waitForResult(ch <-chan pipeline.Result) tea.Cmd {
	return func() tea.Msg { return resultMsg(<-ch) }
}

// bar indices into model.bars, one per queue stage.
const (
	barDir = iota
	barFile
	barCopy
	barRemove
)

type model struct {
	p        *pipeline.Pipeline
	resultCh chan pipeline.Result
	bars     [4]progress.Model

	dir, file, copyS, remove queue.Status

	done   bool
	result pipeline.Result
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(shared.TickCmd(), waitForResult(m.resultCh))
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case shared.TickMsg:
		m.refresh()

		if m.done {
			return m, nil
		}

		return m, shared.TickCmd()
	case resultMsg:
		m.refresh()
		m.done = true
		m.result = pipeline.Result(msg)

		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == shared.KeyCtrlC {
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m *model) refresh() {
	m.dir = m.p.DirStatus()
	m.file = m.p.FileStatus()
	m.copyS = m.p.CopyStatus()
	m.remove = m.p.RemoveStatus()
}

func (m *model) View() string {
	lines := []string{
		shared.RenderTitle("treesync"),
		m.renderStage("Directory compare", barDir, m.dir),
		m.renderStage("File compare", barFile, m.file),
	}

	if m.copyS.ResourceCount > 0 {
		lines = append(lines, m.renderStage("Copy", barCopy, m.copyS))
	}

	if m.remove.ResourceCount > 0 {
		lines = append(lines, m.renderStage("Remove", barRemove, m.remove))
	}

	if m.done {
		lines = append(lines, "", shared.RenderDim("run finished, writing summary…"))
	}

	body := ""
	for i, l := range lines {
		if i > 0 {
			body += "\n"
		}

		body += l
	}

	return shared.RenderBox(body)
}

func (m *model) renderStage(label string, bar int, st queue.Status) string {
	percent := 0.0
	if st.ResourceCount > 0 {
		percent = st.ProgressSum / float64(st.ResourceCount)
	}

	if bar == barFile {
		percent /= 100 // file-compare progress is a 0-100 percentage
	}

	rendered := shared.RenderProgress(m.bars[bar], percent)

	return fmt.Sprintf("%s %s  busy=%d/%d  queued=%d  done=%d",
		shared.RenderLabel(label), rendered, st.BusyCount, st.ResourceCount, st.QueueSize, st.CompletedCount)
}
