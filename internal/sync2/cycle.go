// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information

package sync2

import (
	"context"
	"sync"
	"time"
)

// Cycle implements a controllable recurring event.
//
// Cycle control methods may be called before Run is started, they
// block until the loop picks up the message or the cycle is closed.
type Cycle struct {
	interval time.Duration

	init    sync.Once
	control chan interface{}
	stop    chan struct{}

	closeOnce sync.Once
}

type (
	// cycle control messages
	cycleStop     struct{}
	cyclePause    struct{}
	cycleContinue struct{}
	cycleTrigger  struct {
		done chan struct{}
	}
)

// NewCycle creates a new cycle with the specified interval.
func NewCycle(interval time.Duration) *Cycle {
	cycle := &Cycle{}
	cycle.SetInterval(interval)
	return cycle
}

// SetInterval allows to change the interval before starting.
func (cycle *Cycle) SetInterval(interval time.Duration) {
	cycle.interval = interval
}

func (cycle *Cycle) initialize() {
	cycle.init.Do(func() {
		cycle.control = make(chan interface{})
		cycle.stop = make(chan struct{})
	})
}

// sendControl sends a control message
func (cycle *Cycle) sendControl(message interface{}) {
	cycle.initialize()
	select {
	case cycle.control <- message:
	case <-cycle.stop:
	}
}

// Run runs fn once immediately and then on every tick until the context
// is canceled, the cycle is stopped or fn returns an error.
func (cycle *Cycle) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	cycle.initialize()
	defer cycle.Close()

	currentInterval := cycle.interval
	ticker := time.NewTicker(currentInterval)
	defer func() { ticker.Stop() }()

	if err := fn(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				return err
			}

		case message := <-cycle.control:
			switch message := message.(type) {
			case cycleStop:
				return nil

			case time.Duration:
				currentInterval = message
				ticker.Stop()
				ticker = time.NewTicker(currentInterval)

			case cyclePause:
				ticker.Stop()
				// ensure we don't have ticks left
				select {
				case <-ticker.C:
				default:
				}

			case cycleContinue:
				ticker.Stop()
				ticker = time.NewTicker(currentInterval)

			case cycleTrigger:
				if err := fn(ctx); err != nil {
					return err
				}
				if message.done != nil {
					close(message.done)
				}
			}

		case <-cycle.stop:
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops a running cycle and releases everything waiting on it.
func (cycle *Cycle) Close() {
	cycle.initialize()
	cycle.closeOnce.Do(func() { close(cycle.stop) })
}

// Stop stops the cycle permanently
func (cycle *Cycle) Stop() {
	cycle.sendControl(cycleStop{})
}

// ChangeInterval allows to change the ticker interval after it has started.
func (cycle *Cycle) ChangeInterval(interval time.Duration) {
	cycle.sendControl(interval)
}

// Pause pauses the cycle.
func (cycle *Cycle) Pause() {
	cycle.sendControl(cyclePause{})
}

// Restart restarts the ticker from 0.
func (cycle *Cycle) Restart() {
	cycle.sendControl(cycleContinue{})
}

// Trigger ensures that the loop is done at least once.
// If it's currently running it waits for the previous to complete and then runs.
func (cycle *Cycle) Trigger() {
	cycle.sendControl(cycleTrigger{})
}

// TriggerWait ensures that the loop is done at least once and waits for completion.
// If it's currently running it waits for the previous to complete and then runs.
func (cycle *Cycle) TriggerWait() {
	done := make(chan struct{})
	cycle.sendControl(cycleTrigger{done})
	select {
	case <-done:
	case <-cycle.stop:
	}
}
