// Package block executes a block's external command and captures its
// output into the block's display fields.
package block

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/tinybar/tinybar/internal/model"
)

// Runner executes block commands synchronously. The scheduler calls it
// directly from the loop, so a single execution blocks the whole cycle;
// the per-command timeout bounds that.
type Runner struct {
	timeout time.Duration
	now     func() time.Time
}

// NewRunner constructs a Runner. A nonpositive timeout falls back to
// model.DefaultCommandTimeout.
func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = model.DefaultCommandTimeout
	}
	return &Runner{
		timeout: timeout,
		now:     time.Now,
	}
}

// Update runs b's command and fills in its output fields. The command
// sees the block identity and any pending click through BLOCK_*
// environment variables. Stdout is read as up to three lines: full
// text, short text, color override.
//
// A command that exits nonzero still has its output applied but marks
// the block urgent, and LastUpdate is not advanced — the block stays
// due and is retried on its next natural cycle. A command that cannot
// be started leaves the block untouched.
func (r *Runner) Update(b *model.Block) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", b.Command)
	cmd.Env = append(os.Environ(),
		"BLOCK_NAME="+b.Name,
		"BLOCK_INSTANCE="+b.Instance,
		"BLOCK_BUTTON="+b.Click.Button,
		"BLOCK_X="+b.Click.X,
		"BLOCK_Y="+b.Click.Y,
	)

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("block: spawning %s[%s]: %w", b.Name, b.Instance, err)
		}
		applyOutput(b, out)
		b.Urgent = true
		return fmt.Errorf("block: %s[%s] exited with status %d", b.Name, b.Instance, exitErr.ExitCode())
	}

	applyOutput(b, out)
	b.LastUpdate = r.now().Unix()
	return nil
}

// applyOutput maps the first three stdout lines onto the block's
// display fields. Missing lines leave the corresponding field empty,
// matching the reset performed before dispatch.
func applyOutput(b *model.Block, out []byte) {
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")

	if len(lines) > 0 {
		b.FullText = lines[0]
	}
	if len(lines) > 1 {
		b.ShortText = lines[1]
	}
	if len(lines) > 2 && lines[2] != "" {
		b.Color = lines[2]
	}
}
