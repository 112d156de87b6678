package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// spinner animates a status line until it is stopped or its context ends.
// The line is always cleared afterwards.
type spinner struct {
	out  io.Writer
	msg  string
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// startSpinner starts a spinner on out.
func startSpinner(ctx context.Context, out io.Writer, msg string) *spinner {
	s := &spinner{out: out, msg: msg, quit: make(chan struct{}), done: make(chan struct{})}
	go s.run(ctx)
	return s
}

// spin starts a spinner on the status writer.
func (c *CLI) spin(ctx context.Context, msg string) *spinner {
	return startSpinner(ctx, c.Status, msg)
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()
	for frame := 0; ; frame++ {
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-s.quit:
			s.clear()
			return
		case <-tick.C:
			r := spinnerFrames[frame%len(spinnerFrames)]
			fmt.Fprintf(s.out, "\r%s %s", styleSpinner.Render(string(r)), StyleDim.Render(s.msg))
		}
	}
}

func (s *spinner) clear() {
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", len(s.msg)+4)+"\r")
}

// Stop ends the animation and waits for the line to clear. Later calls do
// nothing.
func (s *spinner) Stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}

// Fail stops the spinner and reports msg in its place.
func (s *spinner) Fail(msg string) {
	s.Stop()
	console{w: s.out}.fail("%s", msg)
}
