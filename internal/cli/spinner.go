package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates "⠋ message 1.2s" on statusOut while a step runs. Output
// that is not a terminal gets no animation at all, so logs and captured
// output stay clean.
type spinner struct {
	message string
	animate bool
	start   time.Time

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	width  int
}

func startSpinner(ctx context.Context, message string, animate bool) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		message: message,
		animate: animate,
		start:   time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	if !animate {
		close(s.done)
		return s
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	for frame := 0; ; frame++ {
		select {
		case <-ctx.Done():
			if s.width > 0 {
				fmt.Fprintf(statusOut, "\r%s\r", strings.Repeat(" ", s.width))
			}
			return
		case <-ticker.C:
			line := fmt.Sprintf("%s %s %s",
				styleSpinner.Render(spinnerFrames[frame%len(spinnerFrames)]),
				StyleDim.Render(s.message),
				StyleDim.Render(s.elapsed().String()))
			s.width = max(s.width, len(line))
			fmt.Fprint(statusOut, "\r"+line)
		}
	}
}

func (s *spinner) elapsed() time.Duration {
	return time.Since(s.start).Round(100 * time.Millisecond)
}

// stop ends the animation and clears its line. Calling it again is a no-op.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// spin runs fn behind a spinner. When fn fails, failed replaces the line,
// unless ctx was cancelled, which is reported as an interruption.
func spin(ctx context.Context, message, failed string, fn func() error) error {
	s := startSpinner(ctx, message, isTerminal(statusOut))
	err := fn()
	s.stop()
	switch {
	case err == nil:
	case ctx.Err() != nil:
		printWarning("Interrupted after %s", s.elapsed())
	default:
		printError("%s", failed)
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
