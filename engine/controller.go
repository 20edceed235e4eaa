package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"rtcfix/transfer"
)

// FrameInterval is one display refresh of the console: 280896 cycles at 16.78MHz.
const FrameInterval = time.Duration(280896) * time.Second / 16777216

// ErrRestart is returned by Run after the restart directive has been handed off.
var ErrRestart = errors.New("engine: device restart requested")

type Controller struct {
	machine *transfer.Machine

	// collaborators:
	presenter Presenter
	input     Input
	restarter Restarter

	lastScene transfer.Scene
	Ticks     int
}

func NewController(machine *transfer.Machine, presenter Presenter, input Input, restarter Restarter) *Controller {
	if machine == nil || presenter == nil || input == nil {
		panic("engine: machine, presenter and input are required")
	}
	return &Controller{
		machine:   machine,
		presenter: presenter,
		input:     input,
		restarter: restarter,
		lastScene: -1,
	}
}

func (c *Controller) Machine() *transfer.Machine {
	return c.machine
}

// Step runs exactly one tick.
func (c *Controller) Step() transfer.Directive {
	d := c.machine.Tick(c.input.Confirmed())
	c.Ticks++

	if d.Scene != c.lastScene {
		log.Printf("engine: tick %d: scene %s\n", c.Ticks, d.Scene)
		c.lastScene = d.Scene
	}
	c.presenter.Present(d.Scene)

	if pp, ok := c.presenter.(ProgressPresenter); ok && d.State == transfer.StateTransmitting {
		pp.PresentProgress(c.machine.Progress())
	}

	if d.Restart && c.restarter != nil {
		c.restarter.Restart()
	}
	return d
}

// Run ticks once per frame until ctx is done or the device is restarted.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if d := c.Step(); d.Restart {
				return ErrRestart
			}
		}
	}
}
