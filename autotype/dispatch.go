package autotype

import (
	"context"
	"fmt"
	"time"

	"github.com/mobile-next/autotype/types"
	"github.com/mobile-next/autotype/utils"
)

// PerformOptions tunes a single auto-type.
type PerformOptions struct {
	// HideWindow is our own window to get out of the way before typing.
	HideWindow types.WindowID
	// Sequence overrides the entry's selected sequence.
	Sequence string
	// Window is the target; zero adopts whatever is active after the
	// settle delay.
	Window types.WindowID
}

// Perform types entry into the target window.
//
// Typing stops as soon as the active window is no longer the target and
// returns an *InterruptedError; keystrokes already sent stay sent.
func (e *Engine) Perform(ctx context.Context, entry Entry, opts PerformOptions) error {
	if e.platform == nil {
		return ErrUnavailable
	}
	if err := e.begin(StateDispatching); err != nil {
		return err
	}
	defer e.finish()

	return e.perform(ctx, entry, opts)
}

// perform runs with the session already marked as dispatching.
func (e *Engine) perform(ctx context.Context, entry Entry, opts PerformOptions) error {
	sequence := opts.Sequence
	if sequence == "" && entry != nil {
		sequence = e.selector.Select(entry, "")
	}

	var resolver PlaceholderResolver
	if entry != nil {
		resolver = entry
	}

	actions, err := ParseSequence(sequence, resolver)
	if err != nil {
		utils.Warn("Not typing: %v", err)
		return err
	}

	if opts.HideWindow != 0 {
		e.platform.HideWindow(opts.HideWindow)
	}

	if err := sleepContext(ctx, e.initialDelay()); err != nil {
		return fmt.Errorf("auto-type cancelled before typing: %w", err)
	}

	window := opts.Window
	if window == 0 {
		window = e.platform.ActiveWindow()
	}

	e.platform.ProcessEvents(e.cfg.YieldTimeout)

	utils.Verbose("Typing %d actions into window %d", len(actions), window)

	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("auto-type cancelled after %d of %d actions: %w", i, len(actions), err)
		}

		if e.platform.ActiveWindow() != window {
			utils.Warn("Active window changed, interrupting auto-type")
			return &InterruptedError{Executed: i, Total: len(actions)}
		}

		if err := execute(e.executor, action); err != nil {
			return fmt.Errorf("failed to type %s: %w", action, err)
		}

		e.platform.ProcessEvents(e.cfg.YieldTimeout)
	}

	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
