package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// spinnerFrames cycle like light turning on a facet.
var spinnerFrames = []string{"◐", "◓", "◑", "◒"}

const spinnerInterval = 100 * time.Millisecond

// spinner animates one status line while a request to the server runs.
// It ends when stop is called or ctx is done, whichever comes first.
type spinner struct {
	w       io.Writer
	message string

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	exited chan struct{}
	mu     sync.Mutex // guards writes to w
}

// startSpinner draws message on w until the returned spinner is stopped.
func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{w: w, message: message, ctx: ctx, cancel: cancel, exited: make(chan struct{})}
	go s.loop()
	return s
}

func (s *spinner) loop() {
	defer close(s.exited)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()
	for i := 0; ; i++ {
		s.draw(styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]) + " " + StyleDim.Render(s.message))
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-tick.C:
		}
	}
}

func (s *spinner) draw(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s", line)
}

func (s *spinner) clear() {
	s.draw(strings.Repeat(" ", len(s.message)+2) + "\r")
}

// stop ends the animation and waits for the line to be cleared. Repeated
// calls are no-ops.
func (s *spinner) stop() {
	s.once.Do(s.cancel)
	<-s.exited
}

// fail stops the spinner and reports msg as an error.
func (s *spinner) fail(msg string) {
	s.stop()
	printError("%s", msg)
}
