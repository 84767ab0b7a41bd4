package utils

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/logrusorgru/aurora"
	"golang.org/x/term"
)

// Spinner initializes the process indicator.
type Spinner struct {
	writer   io.Writer
	enabled  bool
	stopChan chan struct{}
	done     chan struct{}
}

// NewSpinner instantiates a new Spinner struct writing to stderr. The
// spinner stays silent when stderr is not a terminal.
func NewSpinner() *Spinner {
	return &Spinner{
		writer:  os.Stderr,
		enabled: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Start starts the process indicator.
func (s *Spinner) Start(message string) {
	if !s.enabled {
		return
	}
	s.stopChan = make(chan struct{}, 1)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		for {
			for _, r := range `-\|/` {
				select {
				case <-s.stopChan:
					fmt.Fprint(s.writer, "\r\033[K")
					return
				default:
					fmt.Fprintf(s.writer, "\r%s %s", message, aurora.Green(string(r)))
					time.Sleep(time.Millisecond * 100)
				}
			}
		}
	}()
}

// Stop stops the process indicator and clears its line.
func (s *Spinner) Stop() {
	if !s.enabled || s.stopChan == nil {
		return
	}
	s.stopChan <- struct{}{}
	<-s.done
	s.stopChan = nil
}
