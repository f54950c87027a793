package cli

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/reflections/pkg/clock"
)

// teaClock is a clock.Clock whose callbacks run on the bubbletea event loop.
// A due timer only posts a timerMsg; the editor runs the callback from
// Update, so the machine is never touched from two goroutines.
type teaClock struct {
	send func(tea.Msg)
}

var _ clock.Clock = (*teaClock)(nil)

// timerMsg delivers a due timer to the event loop.
type timerMsg struct{ t *teaTimer }

const (
	timerPending int32 = iota
	timerQueued
	timerDone
	timerStopped
)

type teaTimer struct {
	timer *time.Timer
	fn    func()
	state atomic.Int32
}

// AfterFunc implements clock.Clock.
func (c *teaClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	t := &teaTimer{fn: f}
	t.timer = time.AfterFunc(d, func() {
		if t.state.CompareAndSwap(timerPending, timerQueued) {
			c.send(timerMsg{t: t})
		}
	})
	return t
}

// Stop implements clock.Timer. A timer whose message is already queued is
// still stopped: the message is dropped when it arrives.
func (t *teaTimer) Stop() bool {
	if t.state.CompareAndSwap(timerPending, timerStopped) {
		t.timer.Stop()
		return true
	}
	return t.state.CompareAndSwap(timerQueued, timerStopped)
}

// fire runs the callback unless the timer was stopped after it was queued.
func (t *teaTimer) fire() {
	if t.state.CompareAndSwap(timerQueued, timerDone) {
		t.fn()
	}
}
