package cli

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestSimpleProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(3)
	progress.Done(nil)
	progress.Done(errors.New("timeout"))
	progress.Done(nil)
	progress.Finish()

	done, failed := progress.Counts()
	if done != 3 || failed != 1 {
		t.Errorf("Counts() = %d, %d; want 3, 1", done, failed)
	}

	output := buf.String()
	if !strings.Contains(output, "Progress:") {
		t.Errorf("expected progress output, got %q", output)
	}
	if !strings.Contains(output, "(3/3, 1 failed)") {
		t.Errorf("expected final counts in output, got %q", output)
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("Finish should terminate the line")
	}
}

func TestSimpleProgress_ZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(0)
	progress.Finish()

	if buf.String() != "\n" {
		t.Errorf("expected only a newline, got %q", buf.String())
	}
}

func TestSimpleProgress_Concurrent(t *testing.T) {
	progress := NewProgressReporter(&bytes.Buffer{})
	progress.Start(100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			progress.Done(nil)
		}()
	}
	wg.Wait()

	if done, _ := progress.Counts(); done != 100 {
		t.Errorf("done = %d, want 100", done)
	}
}

func TestNewProgressReporter_NilWriter(t *testing.T) {
	var _ ProgressReporter = NewProgressReporter(nil)
}
