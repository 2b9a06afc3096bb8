// Package counters implements the pipeline's thread-safe tallies: a flat
// Counter keyed by an arbitrary name or enum ordinal, and a TreeCounter that
// composes two Counters (by file extension, by enum) with scalar totals for
// one side or one mismatch kind of a run.
package counters

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Counted is one row of a Counter's tally: either keyed by Name (extension
// tallies) or by Number (enum-ordinal tallies) — a row uses exactly one of
// the two keys, matching how its owning Counter was incremented.
type Counted struct {
	Name   string
	Number int
	Count  int64
	Bytes  int64
}

// Counter is a flat, unsorted tally of Counted rows. It is not itself
// safe for concurrent use — callers needing thread safety (TreeCounter)
// hold their own mutex around it.
type Counter struct {
	byName   map[string]int // name -> index into rows
	byNumber map[int]int    // number -> index into rows
	rows     []Counted
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{
		byName:   make(map[string]int),
		byNumber: make(map[int]int),
	}
}

// IncrementByName aggregates count/bytes under the string key name,
// typically a file extension.
func (c *Counter) IncrementByName(name string, count, bytes int64) {
	if idx, ok := c.byName[name]; ok {
		c.rows[idx].Count += count
		c.rows[idx].Bytes += bytes

		return
	}

	c.byName[name] = len(c.rows)
	c.rows = append(c.rows, Counted{Name: name, Count: count, Bytes: bytes})
}

// IncrementByNumber aggregates count/bytes under the integer key number,
// typically an enum ordinal (mismatch kind or error kind).
func (c *Counter) IncrementByNumber(number int, count, bytes int64) {
	if idx, ok := c.byNumber[number]; ok {
		c.rows[idx].Count += count
		c.rows[idx].Bytes += bytes

		return
	}

	c.byNumber[number] = len(c.rows)
	c.rows = append(c.rows, Counted{Number: number, Count: count, Bytes: bytes})
}

// Total sums Count across every row.
func (c *Counter) Total() int64 {
	var total int64
	for _, row := range c.rows {
		total += row.Count
	}

	return total
}

// Rows returns a sorted copy of the tallied rows: count desc, bytes desc,
// name desc, number desc — matching the source's summary ordering.
func (c *Counter) Rows() []Counted {
	sorted := make([]Counted, len(c.rows))
	copy(sorted, c.rows)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}

		if a.Bytes != b.Bytes {
			return a.Bytes > b.Bytes
		}

		if a.Name != b.Name {
			return a.Name > b.Name
		}

		return a.Number > b.Number
	})

	return sorted
}

// SummaryLines renders the top limit rows as fixed-width text lines,
// followed by an "(unlisted)" tail row aggregating anything beyond the
// limit. numberFormat, if non-nil, renders a Number key as a label (e.g. a
// Mismatch or ErrKind's String()); rows with a non-empty Name are rendered
// by name instead.
func (c *Counter) SummaryLines(limit int, numberFormat func(int) string) []string {
	rows := c.Rows()
	if len(rows) == 0 {
		return nil
	}

	shown := rows
	var tail *Counted

	if len(rows) > limit {
		shown = rows[:limit]

		var rest Counted

		rest.Name = "(unlisted)"
		for _, row := range rows[limit:] {
			rest.Count += row.Count
			rest.Bytes += row.Bytes
		}

		tail = &rest
	}

	nameWidth := len("(unlisted)")

	labelOf := func(row Counted) string {
		if row.Name != "" {
			return row.Name
		}

		if numberFormat != nil {
			return numberFormat(row.Number)
		}

		return fmt.Sprintf("#%d", row.Number)
	}

	labels := make([]string, 0, len(shown)+1)
	for _, row := range shown {
		labels = append(labels, labelOf(row))
	}

	for _, label := range labels {
		if len(label) > nameWidth {
			nameWidth = len(label)
		}
	}

	lines := make([]string, 0, len(shown)+1)
	for i, row := range shown {
		lines = append(lines, formatRow(labels[i], nameWidth, row))
	}

	if tail != nil {
		lines = append(lines, formatRow(tail.Name, nameWidth, *tail))
	}

	return lines
}

func formatRow(label string, nameWidth int, row Counted) string {
	return fmt.Sprintf("%-*s  %8d  %12d bytes", nameWidth, label, row.Count, row.Bytes)
}

// TreeCounter composes two Counters — one for file-extension tallies, one
// for enum-ordinal tallies — plus scalar counts for one side (or one
// mismatch kind) of a run. Every public method locks mu, matching the
// source's single-mutex-per-TreeCounter design.
type TreeCounter struct {
	mu sync.Mutex

	byExtension *Counter
	byEnum      *Counter

	files        int64
	dirs         int64
	bytes        int64
	accessErrors int64
}

// NewTreeCounter returns an empty TreeCounter.
func NewTreeCounter() *TreeCounter {
	return &TreeCounter{
		byExtension: NewCounter(),
		byEnum:      NewCounter(),
	}
}

// CountFile records one regular file of the given extension and size.
func (t *TreeCounter) CountFile(extension string, size int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.byExtension.IncrementByName(extension, 1, size)
	t.files++
	t.bytes += size
}

// CountDir records one directory.
func (t *TreeCounter) CountDir() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.dirs++
}

// CountEnum records one occurrence of an enum ordinal (an ErrKind or a
// Mismatch), with an optional byte weight (e.g. a Size mismatch's delta,
// or a Copied byte count attributed through the mismatch path).
func (t *TreeCounter) CountEnum(ordinal int, bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.byEnum.IncrementByNumber(ordinal, 1, bytes)
}

// CountAccessError records one access-denied-class error, in addition to
// whatever enum ordinal the caller separately records via CountEnum.
func (t *TreeCounter) CountAccessError() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.accessErrors++
}

// Totals returns the scalar counts gathered so far.
func (t *TreeCounter) Totals() (files, dirs, bytes, accessErrors int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.files, t.dirs, t.bytes, t.accessErrors
}

// ExtensionSummary renders the top limit file-extension rows.
func (t *TreeCounter) ExtensionSummary(limit int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.byExtension.SummaryLines(limit, nil)
}

// EnumSummary renders the top limit enum-ordinal rows, using label to turn
// an ordinal into display text.
func (t *TreeCounter) EnumSummary(limit int, label func(int) string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.byEnum.SummaryLines(limit, label)
}

// EnumTotal returns the total count recorded for a single enum ordinal.
func (t *TreeCounter) EnumTotal(ordinal int) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, row := range t.byEnum.rows {
		if row.Number == ordinal {
			return row.Count
		}
	}

	return 0
}

// String renders a compact one-line summary, suitable for a final report
// line alongside the run's mode result.
func (t *TreeCounter) String() string {
	files, dirs, bytes, access := t.Totals()

	var b strings.Builder

	fmt.Fprintf(&b, "%d files, %d dirs, %d bytes", files, dirs, bytes)

	if access > 0 {
		fmt.Fprintf(&b, ", %d access errors", access)
	}

	return b.String()
}
