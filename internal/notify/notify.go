// Package notify raises best-effort desktop notifications.
package notify

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"buildwatchdog/internal/shell"
)

const notifyTimeout = 5 * time.Second

// Notifier delivers a notification. Delivery is best effort; callers never
// see a failure.
type Notifier interface {
	Notify(ctx context.Context, title, message string)
}

// Desktop dispatches to the native notification command of the host OS:
// osascript on macOS, notify-send on Linux, nothing elsewhere.
type Desktop struct {
	goos   string
	runner shell.Runner
	onErr  func(error)
}

// Option customises a Desktop notifier.
type Option func(*Desktop)

// WithGOOS overrides the detected operating system.
func WithGOOS(goos string) Option {
	return func(d *Desktop) { d.goos = goos }
}

// WithErrorHandler receives delivery failures, which are otherwise dropped.
func WithErrorHandler(fn func(error)) Option {
	return func(d *Desktop) { d.onErr = fn }
}

// NewDesktop creates a desktop notifier that runs commands through runner.
func NewDesktop(runner shell.Runner, opts ...Option) *Desktop {
	if runner == nil {
		runner = shell.Exec{}
	}
	d := &Desktop{goos: runtime.GOOS, runner: runner}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Command returns the command used on this platform, or ok=false when the
// platform has no notification support.
func (d *Desktop) Command(title, message string) (name string, args []string, ok bool) {
	switch d.goos {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", appleScriptQuote(message), appleScriptQuote(title))
		return "osascript", []string{"-e", script}, true
	case "linux":
		return "notify-send", []string{title, message}, true
	default:
		return "", nil, false
	}
}

// Notify runs the platform command and swallows any failure.
func (d *Desktop) Notify(ctx context.Context, title, message string) {
	name, args, ok := d.Command(title, message)
	if !ok {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	res, err := d.runner.Run(callCtx, name, args...)
	if err == nil && res.ExitCode != 0 {
		err = fmt.Errorf("%s exited with code %d: %s", name, res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}
	if err != nil && d.onErr != nil {
		d.onErr(err)
	}
}

func appleScriptQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// Nop discards notifications.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, string, string) {}
