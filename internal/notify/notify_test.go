package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildwatchdog/internal/shell"
)

type recordingRunner struct {
	calls [][]string
	res   shell.Result
	err   error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) (shell.Result, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.res, r.err
}

func TestDesktopLinuxUsesNotifySend(t *testing.T) {
	runner := &recordingRunner{}
	NewDesktop(runner, WithGOOS("linux")).Notify(context.Background(), "BuildWatchDog", "Status changed to FAILED")

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"notify-send", "BuildWatchDog", "Status changed to FAILED"}, runner.calls[0])
}

func TestDesktopDarwinUsesOsascript(t *testing.T) {
	runner := &recordingRunner{}
	NewDesktop(runner, WithGOOS("darwin")).Notify(context.Background(), "BuildWatchDog", `say "hi"`)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"osascript", "-e", `display notification "say \"hi\"" with title "BuildWatchDog"`,
	}, runner.calls[0])
}

func TestDesktopOtherPlatformIsNoop(t *testing.T) {
	runner := &recordingRunner{}
	NewDesktop(runner, WithGOOS("windows")).Notify(context.Background(), "t", "m")
	assert.Empty(t, runner.calls)
}

func TestDesktopSwallowsFailures(t *testing.T) {
	var reported []error
	runner := &recordingRunner{err: errors.New("exec: \"notify-send\": executable file not found in $PATH")}
	d := NewDesktop(runner, WithGOOS("linux"), WithErrorHandler(func(err error) { reported = append(reported, err) }))

	assert.NotPanics(t, func() { d.Notify(context.Background(), "t", "m") })
	require.Len(t, reported, 1)

	runner.err = nil
	runner.res = shell.Result{ExitCode: 1, Stderr: []byte("no dbus")}
	d.Notify(context.Background(), "t", "m")
	require.Len(t, reported, 2)
	assert.Contains(t, reported[1].Error(), "no dbus")
}
