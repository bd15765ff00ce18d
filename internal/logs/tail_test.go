package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"n8nexplorer/internal/logs"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()
}

func TestLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n8nexplorer.log")
	writeLog(t, path, "a\nb\nc\n")

	lines, offset, err := logs.Last(path, 2)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != 6 {
		t.Fatalf("offset = %d, want 6", offset)
	}

	lines, offset, err = logs.Last(path, 0)
	if err != nil || len(lines) != 0 || offset != 6 {
		t.Fatalf("Last(0) = %#v, %d, %v", lines, offset, err)
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := logs.Last(filepath.Join(t.TempDir(), "missing.log"), 10)
	if err != nil || len(lines) != 0 || offset != 0 {
		t.Fatalf("Last(missing) = %#v, %d, %v", lines, offset, err)
	}
}

func TestLastRejectsDirectory(t *testing.T) {
	if _, _, err := logs.Last(t.TempDir(), 1); err == nil {
		t.Fatal("expected error for directory path")
	}
}

func TestSinceHoldsPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n8nexplorer.log")
	writeLog(t, path, "first\nsec")

	lines, offset, err := logs.Since(path, 0)
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if len(lines) != 1 || lines[0] != "first" || offset != 6 {
		t.Fatalf("Since = %#v, %d", lines, offset)
	}

	appendLog(t, path, "ond\n")
	lines, offset, err = logs.Since(path, offset)
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if len(lines) != 1 || lines[0] != "second" || offset != 13 {
		t.Fatalf("Since = %#v, %d", lines, offset)
	}
}

func TestSinceRestartsAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n8nexplorer.log")
	writeLog(t, path, "one\ntwo\nthree\n")
	writeLog(t, path, "new\n")

	lines, _, err := logs.Since(path, 14)
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if len(lines) != 1 || lines[0] != "new" {
		t.Fatalf("unexpected lines after rotation: %#v", lines)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n8nexplorer.log")
	writeLog(t, path, "start\n")
	_, offset, err := logs.Last(path, 1)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var (
		mu  sync.Mutex
		got []string
	)
	seen := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 10*time.Millisecond, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
			select {
			case seen <- struct{}{}:
			default:
			}
		})
	}()

	appendLog(t, path, "later\n")
	select {
	case <-seen:
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not emit the appended line")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "later" {
		t.Fatalf("unexpected followed lines: %#v", got)
	}
}

func TestFilter(t *testing.T) {
	lines := []string{
		"level=INFO msg=\"refresh started\" correlation_id=abc",
		"level=WARN msg=\"workflow fetch failed\" correlation_id=abc",
		"level=INFO msg=\"refresh started\" correlation_id=def",
	}
	got := logs.Filter(lines, "correlation_id=abc", "")
	if len(got) != 2 {
		t.Fatalf("Filter = %#v", got)
	}
	if got := logs.Filter(lines, "WARN", "abc"); len(got) != 1 {
		t.Fatalf("Filter = %#v", got)
	}
	if got := logs.Filter(lines); len(got) != 3 {
		t.Fatalf("Filter without needles = %#v", got)
	}
}
