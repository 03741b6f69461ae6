package dashboard

import (
	"io"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

// Live keeps the most recent frame on screen. On a terminal each Update
// replaces the previous frame in place; otherwise frames are appended.
//
// Live is also an io.Writer: text written while a frame is shown appears
// above it and the frame is redrawn underneath.
type Live struct {
	mu      sync.Mutex
	out     *termenv.Output
	inPlace bool
	frame   string
	lines   int
	hidden  bool
}

// NewLive creates a live region on w. inPlace should be true only when w is
// an interactive terminal.
func NewLive(w io.Writer, inPlace bool) *Live {
	return &Live{out: termenv.NewOutput(w), inPlace: inPlace}
}

// Update replaces the displayed frame.
func (l *Live) Update(frame string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !strings.HasSuffix(frame, "\n") {
		frame += "\n"
	}
	if l.inPlace && !l.hidden {
		l.out.HideCursor()
		l.hidden = true
	}
	l.clear()
	l.frame = frame
	l.draw()
}

// Write prints p above the current frame.
func (l *Live) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clear()
	n, err := l.out.Write(p)
	if err != nil {
		return n, err
	}
	l.draw()
	return n, nil
}

// Stop leaves the last frame on screen and restores the cursor. Output
// written afterwards goes below the frame.
func (l *Live) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.hidden {
		l.out.ShowCursor()
		l.hidden = false
	}
	l.frame = ""
	l.lines = 0
}

func (l *Live) clear() {
	if !l.inPlace || l.lines == 0 {
		return
	}
	l.out.ClearLines(l.lines)
	l.lines = 0
}

func (l *Live) draw() {
	if l.frame == "" {
		return
	}
	if !l.inPlace {
		// Appending mode only prints a frame once per Update.
		_, _ = l.out.WriteString(l.frame)
		l.frame = ""
		return
	}
	_, _ = l.out.WriteString(l.frame)
	l.lines = strings.Count(l.frame, "\n")
}
