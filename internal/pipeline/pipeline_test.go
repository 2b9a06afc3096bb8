package pipeline_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/joe/treesync/internal/output"
	"github.com/joe/treesync/internal/pipeline"
	"github.com/joe/treesync/internal/taxonomy"
	"github.com/joe/treesync/pkg/filesystem"
)

func newSink(t *testing.T) *output.Sink {
	t.Helper()

	sink, err := output.New(t.TempDir(), &bytes.Buffer{}, false, true, false)
	if err != nil {
		t.Fatalf("output.New failed: %v", err)
	}

	t.Cleanup(func() { _ = sink.Close() })

	return sink
}

func baseConfig(mode taxonomy.Mode) pipeline.Config {
	return pipeline.Config{
		SourceRoot: "/src",
		DestRoot:   "/dst",
		Mode:       mode,
	}
}

func TestCompareEqualTreesReportsNoMismatches(t *testing.T) {
	now := time.Now()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src", now)
	fs.AddDir("/dst", now)
	fs.AddFile("/src/a.txt", []byte("hello"), now)
	fs.AddFile("/dst/a.txt", []byte("hello"), now)

	p := pipeline.New(baseConfig(taxonomy.Compare), fs, newSink(t))

	r := p.Run(nil)
	p.HandleAll()

	if r.AnyMismatch {
		t.Fatal("expected equal trees to report no mismatches")
	}

	if r.AnyErrors {
		t.Fatal("expected equal trees to report no errors")
	}
}

func TestCompareDetectsMissingFile(t *testing.T) {
	now := time.Now()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src", now)
	fs.AddDir("/dst", now)
	fs.AddFile("/src/a.txt", []byte("hello"), now)

	p := pipeline.New(baseConfig(taxonomy.Compare), fs, newSink(t))

	r := p.Run(nil)
	p.HandleAll()

	if !r.AnyMismatch {
		t.Fatal("expected a missing file to be reported as a mismatch")
	}
}

func TestCompareDetectsExtraFile(t *testing.T) {
	now := time.Now()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src", now)
	fs.AddDir("/dst", now)
	fs.AddFile("/dst/b.txt", []byte("hello"), now)

	p := pipeline.New(baseConfig(taxonomy.Compare), fs, newSink(t))

	r := p.Run(nil)
	p.HandleAll()

	if !r.AnyMismatch {
		t.Fatal("expected an extra file to be reported as a mismatch")
	}
}

func TestCompareDetectsSizeMismatch(t *testing.T) {
	now := time.Now()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src", now)
	fs.AddDir("/dst", now)
	fs.AddFile("/src/a.txt", []byte("hello"), now)
	fs.AddFile("/dst/a.txt", []byte("hi"), now)

	p := pipeline.New(baseConfig(taxonomy.Compare), fs, newSink(t))

	r := p.Run(nil)
	p.HandleAll()

	if !r.AnyMismatch {
		t.Fatal("expected a size mismatch to be reported")
	}
}

func TestCompareDetectsModifiedSameSizeContent(t *testing.T) {
	now := time.Now()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src", now)
	fs.AddDir("/dst", now)
	fs.AddFile("/src/a.txt", []byte("hello"), now)
	fs.AddFile("/dst/a.txt", []byte("xello"), now)

	p := pipeline.New(baseConfig(taxonomy.Compare), fs, newSink(t))

	r := p.Run(nil)
	p.HandleAll()

	if !r.AnyMismatch {
		t.Fatal("expected same-size differing content to be reported as Modified")
	}
}

func TestCopyModeCreatesMissingFile(t *testing.T) {
	now := time.Now()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src", now)
	fs.AddDir("/dst", now)
	fs.AddFile("/src/a.txt", []byte("hello"), now)

	cfg := baseConfig(taxonomy.Copy)

	p := pipeline.New(cfg, fs, newSink(t))

	r := p.Run(nil)
	p.HandleAll()

	if r.AnyErrors {
		t.Fatal("expected copy run to finish without errors")
	}

	if r.CopiedCount == 0 {
		t.Fatal("expected at least one file to be copied")
	}

	data, _, err := fs.GetFile("/dst/a.txt")
	if err != nil {
		t.Fatalf("expected a.txt to exist at the destination, got: %v", err)
	}

	if string(data) != "hello" {
		t.Fatalf("expected copied content %q, got %q", "hello", data)
	}
}

func TestCopyModeOverwritesModifiedFile(t *testing.T) {
	now := time.Now()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src", now)
	fs.AddDir("/dst", now)
	fs.AddFile("/src/a.txt", []byte("hello"), now)
	fs.AddFile("/dst/a.txt", []byte("xello"), now)

	p := pipeline.New(baseConfig(taxonomy.Copy), fs, newSink(t))

	r := p.Run(nil)
	p.HandleAll()

	if r.AnyErrors {
		t.Fatal("expected copy run to finish without errors")
	}

	data, _, err := fs.GetFile("/dst/a.txt")
	if err != nil {
		t.Fatalf("expected a.txt to still exist at the destination, got: %v", err)
	}

	if string(data) != "hello" {
		t.Fatalf("expected overwritten content %q, got %q", "hello", data)
	}
}

func TestCullModeRemovesExtraFile(t *testing.T) {
	now := time.Now()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src", now)
	fs.AddDir("/dst", now)
	fs.AddFile("/dst/b.txt", []byte("hello"), now)

	p := pipeline.New(baseConfig(taxonomy.Cull), fs, newSink(t))

	r := p.Run(nil)
	p.HandleAll()

	if r.AnyErrors {
		t.Fatal("expected cull run to finish without errors")
	}

	if r.RemovedCount == 0 {
		t.Fatal("expected at least one item to be removed")
	}

	if fs.Exists("/dst/b.txt") {
		t.Fatal("expected the extra file to have been removed")
	}
}

func TestCullModeLeavesMatchingFilesAlone(t *testing.T) {
	now := time.Now()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src", now)
	fs.AddDir("/dst", now)
	fs.AddFile("/src/a.txt", []byte("hello"), now)
	fs.AddFile("/dst/a.txt", []byte("hello"), now)

	p := pipeline.New(baseConfig(taxonomy.Cull), fs, newSink(t))

	r := p.Run(nil)
	p.HandleAll()

	if r.RemovedCount != 0 {
		t.Fatalf("expected nothing to be removed when trees match, removed %d", r.RemovedCount)
	}

	if !fs.Exists("/dst/a.txt") {
		t.Fatal("expected the matching file to survive a cull run")
	}
}

func TestDryRunCopyCountsWithoutWriting(t *testing.T) {
	now := time.Now()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src", now)
	fs.AddDir("/dst", now)
	fs.AddFile("/src/a.txt", []byte("hello"), now)

	cfg := baseConfig(taxonomy.Copy)
	cfg.DryRun = true

	p := pipeline.New(cfg, fs, newSink(t))

	r := p.Run(nil)
	p.HandleAll()

	if r.CopiedCount == 0 {
		t.Fatal("expected a dry run to still count what it would have copied")
	}

	if fs.Exists("/dst/a.txt") {
		t.Fatal("expected a dry run to leave the destination untouched")
	}
}

func TestSkipFileReadTreatsEqualSizeAsEqual(t *testing.T) {
	now := time.Now()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src", now)
	fs.AddDir("/dst", now)
	fs.AddFile("/src/a.txt", []byte("hello"), now)
	fs.AddFile("/dst/a.txt", []byte("xello"), now)

	cfg := baseConfig(taxonomy.Compare)
	cfg.SkipFileRead = true

	p := pipeline.New(cfg, fs, newSink(t))

	r := p.Run(nil)
	p.HandleAll()

	if r.AnyMismatch {
		t.Fatal("expected --skip-file-read to treat same-size files as equal without reading them")
	}
}

func TestFinalizeAndReportPrintsCopiedAndDeletedTables(t *testing.T) {
	now := time.Now()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src", now)
	fs.AddDir("/dst", now)
	fs.AddFile("/src/a.txt", []byte("hello"), now)
	fs.AddFile("/dst/b.txt", []byte("bye"), now)

	cfg := baseConfig(taxonomy.Copy)

	console := &bytes.Buffer{}

	sink, err := output.New(t.TempDir(), console, false, false, false)
	if err != nil {
		t.Fatalf("output.New failed: %v", err)
	}

	t.Cleanup(func() { _ = sink.Close() })

	p := pipeline.New(cfg, fs, sink)

	r := p.Run(nil)
	p.HandleAll()
	p.FinalizeAndReport(r)

	out := console.String()
	if !strings.Contains(out, "Copied") {
		t.Fatalf("expected a Copied summary table, got:\n%s", out)
	}

	if !strings.Contains(out, "Deleted") {
		t.Fatalf("expected a Deleted summary table, got:\n%s", out)
	}
}

func TestUnsupportedEntryReportsWarningNotSilentFile(t *testing.T) {
	now := time.Now()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src", now)
	fs.AddDir("/dst", now)
	fs.AddUnsupported("/src/socket", now)

	console := &bytes.Buffer{}

	sink, err := output.New(t.TempDir(), console, false, false, true)
	if err != nil {
		t.Fatalf("output.New failed: %v", err)
	}

	t.Cleanup(func() { _ = sink.Close() })

	p := pipeline.New(baseConfig(taxonomy.Compare), fs, sink)

	r := p.Run(nil)
	p.HandleAll()

	if r.AnyMismatch {
		t.Fatal("an unsupported entry type is not a Missing/Extra/Size/Modified mismatch")
	}

	if !strings.Contains(console.String(), "UnsupportedType") {
		t.Fatalf("expected an UnsupportedType warning, got:\n%s", console.String())
	}
}
