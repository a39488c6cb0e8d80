package tournament

import (
	"fmt"
	"log/slog"
	"sync"
)

// Controller owns the authoritative state of one tournament. Dispatch runs
// one event at a time to completion and swaps in the resulting state whole.
type Controller struct {
	mu     sync.Mutex
	state  State
	logger *slog.Logger
}

func NewController(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		state:  Initial(),
		logger: logger,
	}
}

func (c *Controller) Dispatch(e Event) State {
	_, next := c.Transition(e)
	return next
}

// Transition is Dispatch that also returns the state e was applied to.
func (c *Controller) Transition(e Event) (prev, next State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev = c.state
	c.state = Reduce(prev, e)

	c.logger.Debug("tournament transition",
		"event", fmt.Sprintf("%T", e),
		"from", prev.screen,
		"to", c.state.screen,
		"round", c.state.cursor.Round,
		"matchup", c.state.cursor.Matchup,
	)
	return prev, c.state
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
