package console

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	cronrunner "dealroom/internal/cron"
)

// ErrQuit is returned by an edit flow that wants the terminal to exit
// instead of resuming the polling view.
var ErrQuit = errors.New("quit requested")

type State int32

const (
	StatePolling State = iota
	StateEditing
)

// keySource is the keyboard surface the coordinator needs; tests stub it.
type keySource interface {
	Attach() error
	Detach() error
	Keys() <-chan byte
}

// Coordinator runs one terminal's two-state loop. In the polling state it
// repaints the view on a fixed interval and watches single key presses;
// the edit key hands the terminal to the Edit flow (cooked mode, readline
// prompts), and after a short settle pause the polling view resumes. The
// coordinator never carries state between ticks: every repaint re-reads
// the store, so edits from other terminals appear without coordination.
type Coordinator struct {
	Interval    time.Duration
	SettlePause time.Duration

	// Render repaints the polling view from a fresh store read.
	Render func(ctx context.Context) error
	// Edit runs one interactive edit flow; return ErrQuit to exit.
	Edit func(ctx context.Context) error

	EditKey  byte
	QuitKeys []byte

	Logger   *zap.Logger
	Keyboard keySource

	state atomic.Int32
}

func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Run drives the loop until a quit key, ErrQuit from the edit flow, or
// context cancellation. Renders that fail log and keep the loop alive;
// the store usually comes back.
func (c *Coordinator) Run(ctx context.Context) error {
	if c.Keyboard == nil {
		c.Keyboard = NewKeyboard()
	}
	c.state.Store(int32(StatePolling))

	if err := c.Render(ctx); err != nil {
		return fmt.Errorf("initial render: %w", err)
	}

	runner := cronrunner.New(c.Logger, ctx)
	_, err := runner.Add(fmt.Sprintf("@every %s", c.Interval), func(jobCtx context.Context) {
		// Ticks fire while an edit flow owns the terminal; skip them
		// rather than repaint over the prompt.
		if c.State() != StatePolling {
			return
		}
		if err := c.Render(jobCtx); err != nil && c.Logger != nil {
			c.Logger.Warn("refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	runner.Start()
	defer runner.Stop()

	if err := c.Keyboard.Attach(); err != nil {
		return fmt.Errorf("attach keyboard: %w", err)
	}
	defer c.Keyboard.Detach()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case key, ok := <-c.Keyboard.Keys():
			if !ok {
				return nil
			}
			if c.isQuit(key) {
				return nil
			}
			if key != c.EditKey {
				continue
			}

			if err := c.runEdit(ctx); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
		}
	}
}

func (c *Coordinator) runEdit(ctx context.Context) error {
	c.state.Store(int32(StateEditing))
	defer c.state.Store(int32(StatePolling))

	// The edit flow needs cooked mode and exclusive stdin.
	if err := c.Keyboard.Detach(); err != nil {
		return fmt.Errorf("detach keyboard: %w", err)
	}

	editErr := c.Edit(ctx)
	if errors.Is(editErr, ErrQuit) {
		return editErr
	}
	if editErr != nil {
		// A failed mutation rolled back; the store is unchanged. Report
		// and resume polling instead of tearing the terminal down.
		fmt.Printf("No changes applied: %v\n", editErr)
		if c.Logger != nil {
			c.Logger.Warn("edit failed", zap.Error(editErr))
		}
	}

	// Let the edit flow's last message stay on screen before the next
	// repaint.
	if c.SettlePause > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.SettlePause):
		}
	}

	if err := c.Render(ctx); err != nil && c.Logger != nil {
		c.Logger.Warn("refresh failed", zap.Error(err))
	}
	return c.Keyboard.Attach()
}

func (c *Coordinator) isQuit(key byte) bool {
	if key == KeyCtrlC {
		return true
	}
	for _, q := range c.QuitKeys {
		if key == q {
			return true
		}
	}
	return false
}
