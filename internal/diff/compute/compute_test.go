package compute

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func TestComputerDiff(t *testing.T) {
	requireGit(t)

	c := New(nil)
	oldText := "one\ntwo\nthree\n"
	newText := "one\nTWO\nthree\n"

	result, err := c.Diff(context.Background(), oldText, newText, Options{})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if len(result.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(result.Chunks))
	}

	chunk := result.Chunks[0]
	if chunk.Old.Start != 1 || chunk.Old.End != 2 {
		t.Errorf("expected old [1,2), got %s", chunk.Old)
	}
	if chunk.New.Start != 1 || chunk.New.End != 2 {
		t.Errorf("expected new [1,2), got %s", chunk.New)
	}
}

func TestComputerDiffIdentical(t *testing.T) {
	requireGit(t)

	c := New(nil)
	text := "alpha\nbeta\n"

	result, err := c.Diff(context.Background(), text, text, Options{})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if len(result.Chunks) != 0 {
		t.Errorf("expected no chunks for identical content, got %d", len(result.Chunks))
	}
}

func TestComputerIgnoreWhitespace(t *testing.T) {
	requireGit(t)

	c := New(nil)
	oldText := "keep  this\n"
	newText := "keep this\n"

	result, err := c.Diff(context.Background(), oldText, newText, Options{IgnoreWhitespace: true})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if len(result.Chunks) != 0 {
		t.Errorf("whitespace-only change should yield no chunks, got %d", len(result.Chunks))
	}
}

func TestComputerCancelledContext(t *testing.T) {
	requireGit(t)

	c := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Diff(ctx, "a\n", "b\n", Options{})
	if !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected ErrSuperseded for cancelled context, got %v", err)
	}
}

func TestComputerSupersedeCancelsOnlyOlderRequest(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	c := New(nil)

	// First request parks until it is cancelled.
	first := make(chan error, 1)
	go func() {
		_, err := c.Diff(context.Background(), "a\n", "b\n", Options{
			Command: []string{"sh", "-c", "sleep 5"},
		})
		first <- err
	}()
	time.Sleep(50 * time.Millisecond)

	// The second request supersedes the first and keeps running while
	// the first one unwinds. It must still complete.
	res, err := c.Diff(context.Background(), "a\n", "b\n", Options{
		Command: []string{"sh", "-c", `sleep 1; echo '{"chunks":[]}'`},
	})
	if err != nil {
		t.Fatalf("newest request failed: %v", err)
	}
	if len(res.Chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(res.Chunks))
	}

	if err := <-first; !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected first request superseded, got %v", err)
	}
}

func TestComputerCancelPendingIdle(t *testing.T) {
	c := New(nil)
	// Must be safe with nothing in flight.
	c.CancelPending()
	c.CancelPending()
}
