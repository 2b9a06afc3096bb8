// Package output implements the pipeline's only sink for human-facing
// text: a mutex-guarded console+logfile writer, colorized on the console
// via lipgloss, plain in the logfile, truncating large tables on console
// while always writing them in full to the log.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/joe/treesync/internal/taxonomy"
)

// Category classifies one emitted event.
type Category string

const (
	Copied   Category = "Copied"
	Deleted  Category = "Deleted"
	Mismatch Category = "Mismatch"
	Error    Category = "Error"
	Warning  Category = "Warning"
)

// Event is the 6-tuple every pipeline outcome is reported as.
type Event struct {
	Category Category
	Name     string
	Side     taxonomy.Side
	IsFile   bool
	Path     string
	Detail   string
}

// consoleTableLimit is the number of table rows shown on console before
// truncation; the logfile always receives every row.
const consoleTableLimit = 9

var nonDisplayable = regexp.MustCompile(`[^\x20-\x7E\t]`)

// Sink is the pipeline's single output collaborator: every worker holds a
// pointer to the same Sink and serializes through its mutex.
type Sink struct {
	mu sync.Mutex

	console io.Writer
	logFile *os.File

	colorEnabled bool
	quiet        bool
	verbose      bool

	showAbsolute bool
	sourceRoot   string
	destRoot     string
}

// New opens a fresh logfile under logDir named
// backup--<YYYY-MM-DD>--<HH-MM-SS>--<NNN>.log, where NNN is the lowest
// unused three-digit sequence number for the current second, and sends
// console writes to the console writer passed in.
func New(logDir string, console io.Writer, colorEnabled, quiet, verbose bool) (*Sink, error) {
	if logDir == "" {
		logDir = "."
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	path, err := nextLogPath(logDir, time.Now())
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", path, err)
	}

	return &Sink{
		console:      console,
		logFile:      f,
		colorEnabled: colorEnabled,
		quiet:        quiet,
		verbose:      verbose,
		showAbsolute: true,
	}, nil
}

// ConfigurePaths records each tree's root and whether paths should be
// rendered relative to it; called once the pipeline.Config resolving
// --show-relative/--show-absolute is available, after New.
func (s *Sink) ConfigurePaths(sourceRoot, destRoot string, showAbsolute bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sourceRoot = sourceRoot
	s.destRoot = destRoot
	s.showAbsolute = showAbsolute
}

func nextLogPath(dir string, now time.Time) (string, error) {
	stamp := now.Format("2006-01-02--15-04-05")

	for seq := 0; seq < 1000; seq++ {
		name := fmt.Sprintf("backup--%s--%03d.log", stamp, seq)
		full := filepath.Join(dir, name)

		if _, err := os.Stat(full); os.IsNotExist(err) {
			return full, nil
		}
	}

	return "", fmt.Errorf("could not find an unused log sequence number under %s", dir)
}

// Emit records one event: always to the logfile, and to the console
// unless quiet suppresses this category (Mismatch/Copied/Deleted are
// suppressed in quiet mode; Error/Warning never are).
func (s *Sink) Emit(ev Event) {
	detail := nonDisplayable.ReplaceAllString(ev.Detail, "")

	s.mu.Lock()
	defer s.mu.Unlock()

	ev.Path = s.displayPath(ev.Side, ev.Path)
	line := formatEvent(ev, detail)

	fmt.Fprintln(s.logFile, line)

	if s.quiet && (ev.Category == Copied || ev.Category == Deleted || ev.Category == Mismatch) {
		return
	}

	fmt.Fprintln(s.console, s.colorize(categoryColor(ev.Category), line))
}

// displayPath renders path relative to the side's tree root when
// showAbsolute is off, falling back to the absolute path if the root is
// unset or the path does not live under it.
func (s *Sink) displayPath(side taxonomy.Side, path string) string {
	if s.showAbsolute {
		return path
	}

	root := s.sourceRoot
	if side == taxonomy.Destination {
		root = s.destRoot
	}

	if root == "" {
		return path
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}

	return rel
}

func formatEvent(ev Event, detail string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s %s", ev.Category, ev.Side, ev.Path)

	if ev.Name != "" {
		fmt.Fprintf(&b, " (%s)", ev.Name)
	}

	if detail != "" {
		fmt.Fprintf(&b, ": %s", detail)
	}

	return b.String()
}

func categoryColor(c Category) taxonomy.Color {
	switch c {
	case Copied, Deleted:
		return taxonomy.ColorGreen
	case Mismatch, Warning:
		return taxonomy.ColorYellow
	case Error:
		return taxonomy.ColorRed
	default:
		return taxonomy.ColorDefault
	}
}

// Table writes title and every line to the logfile, and to the console up
// to consoleTableLimit lines, followed by a "(N more not shown)" line if
// truncated.
func (s *Sink) Table(title string, lines []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintln(s.logFile, title)

	for _, l := range lines {
		fmt.Fprintln(s.logFile, "  "+l)
	}

	if s.quiet {
		return
	}

	fmt.Fprintln(s.console, title)

	shown := lines
	if len(lines) > consoleTableLimit {
		shown = lines[:consoleTableLimit]
	}

	for _, l := range shown {
		fmt.Fprintln(s.console, "  "+l)
	}

	if len(lines) > consoleTableLimit {
		fmt.Fprintf(s.console, "  (%d more not shown, see logfile)\n", len(lines)-consoleTableLimit)
	}
}

// StatusLine writes a transient progress line to the console only (dimmed,
// never colorized as success/failure), skipped in quiet mode and never
// written to the logfile — it has no bearing on the run's persisted record.
func (s *Sink) StatusLine(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quiet {
		return
	}

	fmt.Fprintln(s.console, s.colorize(taxonomy.ColorGray, text))
}

// FinalLine writes text, colorized by c on console, plain to the logfile.
func (s *Sink) FinalLine(text string, c taxonomy.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintln(s.logFile, text)
	fmt.Fprintln(s.console, s.colorize(c, text))
}

// Close flushes and closes the logfile.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.logFile.Close()
}

func (s *Sink) colorize(c taxonomy.Color, text string) string {
	if !s.colorEnabled {
		return text
	}

	style := lipgloss.NewStyle()

	switch c {
	case taxonomy.ColorGray:
		style = style.Foreground(lipgloss.Color("8"))
	case taxonomy.ColorGreen:
		style = style.Foreground(lipgloss.Color("2"))
	case taxonomy.ColorYellow:
		style = style.Foreground(lipgloss.Color("3"))
	case taxonomy.ColorRed:
		style = style.Foreground(lipgloss.Color("1"))
	default:
		return text
	}

	return style.Render(text)
}
