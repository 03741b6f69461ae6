package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildwatchdog/internal/config"
	"buildwatchdog/internal/models"
)

func execute(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var got config.Config
	cmd := newRootCmd(func(_ context.Context, cfg config.Config) error {
		got = cfg
		return nil
	})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return got, err
}

func TestRootDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := execute(t, "--build-id", "demo:1234")
	require.NoError(t, err)

	assert.Equal(t, "demo:1234", cfg.BuildID)
	assert.Equal(t, 10, cfg.IntervalSeconds)
	assert.Equal(t, models.NotifyBoth, cfg.Notify)
	assert.Equal(t, config.SourceCLI, cfg.Source)
	assert.Empty(t, cfg.Profile)
}

func TestRootPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "watch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("build_id: demo:file\ninterval_seconds: 20\nprofile: file-profile\nnotify: desktop\n"), 0o600))
	t.Setenv("BUILDWATCHDOG_PROFILE", "env-profile")
	t.Setenv("BUILDWATCHDOG_INTERVAL", "15")

	cfg, err := execute(t, "--config", path, "--interval", "3")
	require.NoError(t, err)

	assert.Equal(t, "demo:file", cfg.BuildID, "file value kept")
	assert.Equal(t, "env-profile", cfg.Profile, "env beats file")
	assert.Equal(t, 3, cfg.IntervalSeconds, "flag beats env")
	assert.Equal(t, models.NotifyDesktop, cfg.Notify, "unset flag does not reset file value")
}

func TestRootRequiresBuildID(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build id is required")
}

func TestRootRejectsInvalidValues(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := execute(t, "--build-id", "demo:1", "--notify", "email")
	assert.Error(t, err)

	_, err = execute(t, "--build-id", "demo:1", "--interval", "0")
	assert.Error(t, err)

	_, err = execute(t, "--build-id", "demo:1", "extra")
	assert.Error(t, err)
}

func TestRootShortIntervalWithQuietLogging(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := execute(t, "--build-id", "demo:1", "--interval", "3", "--log-level", "error")
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Interval())
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, log.ErrorLevel, level)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
