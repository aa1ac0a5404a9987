// Package compute runs the external diff process for a pair of buffer
// snapshots and parses its output into the structured chunk model.
//
// The default tool is git diff --no-index over two temp files, parsed
// from unified output. A custom command can be configured instead; its
// output is expected in the JSON chunk protocol (see jsonproto.go).
// At most one computation is in flight per Computer: a new request
// synchronously cancels the previous one. Failures are recoverable;
// callers surface them as warnings and keep the prior diff state.
package compute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/splitdiff/internal/diff"
)

// Options configures one diff computation.
type Options struct {
	// IgnoreWhitespace passes the tool's ignore-all-whitespace flag.
	IgnoreWhitespace bool

	// Command overrides the default git invocation. The two snapshot
	// paths are appended as the final arguments. Output must follow the
	// JSON chunk protocol.
	Command []string
}

// Computer executes diff computations, one in flight at a time.
type Computer struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
	logger *zap.Logger
}

// New creates a Computer. A nil logger disables logging.
func New(logger *zap.Logger) *Computer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Computer{logger: logger}
}

// Diff writes the two snapshots to temp files, runs the external tool,
// and parses the result. Any computation already in flight is cancelled
// first and fails with ErrSuperseded.
func (c *Computer) Diff(ctx context.Context, oldText, newText string, opts Options) (*diff.Result, error) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	// A superseded request unwinding late must only release its own
	// registration. The generation check keeps it from cancelling the
	// request that replaced it.
	defer func() {
		cancel()
		c.mu.Lock()
		if c.gen == gen {
			c.cancel = nil
		}
		c.mu.Unlock()
	}()

	oldPath, err := writeSnapshot("splitdiff-old-*", oldText)
	if err != nil {
		return nil, fmt.Errorf("snapshot old buffer: %w", err)
	}
	defer os.Remove(oldPath)

	newPath, err := writeSnapshot("splitdiff-new-*", newText)
	if err != nil {
		return nil, fmt.Errorf("snapshot new buffer: %w", err)
	}
	defer os.Remove(newPath)

	if len(opts.Command) > 0 {
		return c.runCustom(ctx, opts, oldPath, newPath)
	}
	return c.runGit(ctx, opts, oldPath, newPath)
}

// CancelPending cancels any in-flight computation without starting a
// new one. Used by session teardown.
func (c *Computer) CancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// runGit shells out to git diff --no-index with zero context lines so
// every hunk maps directly onto one chunk.
func (c *Computer) runGit(ctx context.Context, opts Options, oldPath, newPath string) (*diff.Result, error) {
	args := []string{"diff", "--no-index", "--no-color", "-U0"}
	if opts.IgnoreWhitespace {
		args = append(args, "-w")
	}
	args = append(args, "--", oldPath, newPath)

	cmd := exec.CommandContext(ctx, "git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrSuperseded, ctx.Err())
	}
	if err != nil {
		// git diff exits 1 when the files differ; only >1 is a failure.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() > 1 {
			c.logger.Warn("diff tool failed",
				zap.Error(err),
				zap.String("stderr", stderr.String()))
			return nil, fmt.Errorf("%w: %v", ErrToolFailed, err)
		}
	}

	result, perr := parseUnified(stdout.String())
	if perr != nil {
		return nil, perr
	}
	c.logger.Debug("diff computed", zap.Int("chunks", len(result.Chunks)))
	return result, nil
}

// runCustom executes a user-configured diff command that speaks the
// JSON chunk protocol.
func (c *Computer) runCustom(ctx context.Context, opts Options, oldPath, newPath string) (*diff.Result, error) {
	args := append([]string{}, opts.Command[1:]...)
	if opts.IgnoreWhitespace {
		args = append(args, "--ignore-whitespace")
	}
	args = append(args, oldPath, newPath)

	cmd := exec.CommandContext(ctx, opts.Command[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrSuperseded, ctx.Err())
		}
		c.logger.Warn("custom diff tool failed",
			zap.String("command", opts.Command[0]),
			zap.Error(err),
			zap.String("stderr", stderr.String()))
		return nil, fmt.Errorf("%w: %v", ErrToolFailed, err)
	}

	return parseJSON(stdout.Bytes())
}

// writeSnapshot persists buffer content to a temp file for the tool.
func writeSnapshot(pattern, content string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
