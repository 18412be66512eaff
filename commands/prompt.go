package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/mobile-next/autotype/autotype"
	"github.com/mobile-next/autotype/utils"
)

// ErrSelectionCancelled is reported when the user declines every match.
var ErrSelectionCancelled = errors.New("selection cancelled")

// PromptChooser asks on a terminal which match to type. The question runs
// on its own goroutine, so Choose returns at once.
type PromptChooser struct {
	ctx    context.Context
	engine *autotype.Engine
	out    io.Writer

	inMu sync.Mutex
	in   *bufio.Reader

	results chan error
}

// NewPromptChooser creates a chooser reading answers from in and writing
// the question to out. ctx bounds the typing that follows a choice.
func NewPromptChooser(ctx context.Context, engine *autotype.Engine, in io.Reader, out io.Writer) *PromptChooser {
	return &PromptChooser{
		ctx:     ctx,
		engine:  engine,
		out:     out,
		in:      bufio.NewReader(in),
		results: make(chan error, 1),
	}
}

// Choose asks on its own goroutine. Only one outcome is kept for Wait;
// later ones are logged and dropped while it is unread.
func (c *PromptChooser) Choose(req autotype.SelectionRequest) {
	go func() {
		err := c.prompt(req)
		select {
		case c.results <- err:
		default:
			outcome := "typed"
			if err != nil {
				outcome = err.Error()
			}
			utils.Verbose("Selection %s finished (%s) with no one waiting", req.ID, outcome)
		}
	}()
}

// Wait blocks until a selection handed to Choose was typed or cancelled.
// It is meant for one-shot commands; a long-running listener that never
// calls it only gets the outcomes logged.
func (c *PromptChooser) Wait(ctx context.Context) error {
	select {
	case err := <-c.results:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *PromptChooser) prompt(req autotype.SelectionRequest) error {
	fmt.Fprintf(c.out, "Several entries match %q:\n", req.WindowTitle)
	for i, m := range req.Matches {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, m.Entry.Title())
	}
	fmt.Fprintf(c.out, "Type which one? [1-%d, empty cancels]: ", len(req.Matches))

	c.inMu.Lock()
	line, readErr := c.in.ReadString('\n')
	c.inMu.Unlock()

	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(req.Matches) {
		if readErr != nil && readErr != io.EOF {
			fmt.Fprintf(c.out, "\nfailed to read answer: %v\n", readErr)
		}
		_ = c.engine.CancelSelection(req.ID)
		return ErrSelectionCancelled
	}

	return c.engine.ConfirmSelection(c.ctx, req.ID, choice-1)
}
