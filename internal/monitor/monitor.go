package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"buildwatchdog/internal/dashboard"
	"buildwatchdog/internal/events"
	"buildwatchdog/internal/fetcher"
	"buildwatchdog/internal/metrics"
	"buildwatchdog/internal/models"
)

// MinSafeInterval is the shortest polling interval that does not warn.
const MinSafeInterval = 5 * time.Second

// IntervalWarning is printed before the banner when the interval is below
// MinSafeInterval.
const IntervalWarning = "Warning: Interval less than 5 seconds may cause rate limiting."

// DefaultSettleDelay is how long to wait after a terminal status before the
// confirmatory fetch, giving CodeBuild time to finalise phase data.
const DefaultSettleDelay = 3 * time.Second

const (
	errorStatus      = "ERROR"
	fetchFailedMsg   = "Failed to fetch build info"
	stoppedByUserMsg = "Monitoring stopped by user."
	unknownProject   = "Unknown"
	defaultInterval  = 10 * time.Second
)

// ErrInitialFetch is returned by Run when the very first fetch fails.
var ErrInitialFetch = errors.New("initial build fetch failed")

// Display shows rendered frames.
type Display interface {
	Update(frame string)
	Stop()
}

// Publisher receives the dashboard state after every render.
type Publisher interface {
	Publish(state models.DashboardState)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configures a Monitor. Fetcher and Events are required.
type Options struct {
	BuildID     string
	Interval    time.Duration
	SettleDelay time.Duration

	Fetcher   fetcher.Fetcher
	Events    *events.Log
	Renderer  *dashboard.Renderer
	Display   Display
	Publisher Publisher
	Logger    *log.Logger

	// Out receives the interval warning, the start banner and the closing line.
	Out       io.Writer
	Sleep     SleepFunc
	SessionID string
}

// Monitor polls a single build until it reaches a terminal status.
type Monitor struct {
	buildID  string
	interval time.Duration
	settle   time.Duration

	fetcher   fetcher.Fetcher
	events    *events.Log
	renderer  *dashboard.Renderer
	display   Display
	publisher Publisher
	log       *log.Logger
	out       io.Writer
	sleep     SleepFunc
	sessionID string

	projectName string
	snapshot    *models.BuildSnapshot
}

// New creates a monitor. Zero options fall back to working defaults.
func New(opts Options) *Monitor {
	m := &Monitor{
		buildID:   opts.BuildID,
		interval:  opts.Interval,
		settle:    opts.SettleDelay,
		fetcher:   opts.Fetcher,
		events:    opts.Events,
		renderer:  opts.Renderer,
		display:   opts.Display,
		publisher: opts.Publisher,
		log:       opts.Logger,
		out:       opts.Out,
		sleep:     opts.Sleep,
		sessionID: opts.SessionID,
	}
	if m.interval <= 0 {
		m.interval = defaultInterval
	}
	if m.settle <= 0 {
		m.settle = DefaultSettleDelay
	}
	if m.events == nil {
		m.events = events.NewLog(models.NotifyTerminal, nil)
	}
	if m.renderer == nil {
		m.renderer = dashboard.NewRenderer(nil)
	}
	if m.out == nil {
		m.out = io.Discard
	}
	if m.display == nil {
		m.display = dashboard.NewLive(m.out, false)
	}
	if m.log == nil {
		m.log = log.New(io.Discard)
	}
	if m.sleep == nil {
		m.sleep = Sleep
	}
	if m.sessionID == "" {
		m.sessionID = uuid.NewString()
	}
	return m
}

// SessionID identifies this monitoring run.
func (m *Monitor) SessionID() string {
	return m.sessionID
}

// Snapshot returns the most recent successful snapshot, or nil.
func (m *Monitor) Snapshot() *models.BuildSnapshot {
	return m.snapshot
}

// Run monitors the build until it finishes or ctx is cancelled. Both are a
// clean exit and return nil. Only a failed first fetch is an error.
func (m *Monitor) Run(ctx context.Context) error {
	if m.interval < MinSafeInterval {
		fmt.Fprintln(m.out, IntervalWarning)
	}
	fmt.Fprintln(m.out, "Starting BuildWatchDog...")
	fmt.Fprintf(m.out, "Monitoring build: %s\n\n", m.buildID)

	snap, err := m.fetcher.Fetch(ctx, m.buildID)
	if err != nil {
		if ctx.Err() != nil {
			m.stopped()
			return nil
		}
		m.logFetchError(err)
		return fmt.Errorf("%w: %w", ErrInitialFetch, err)
	}

	m.projectName = snap.ProjectName
	if m.projectName == "" {
		m.projectName = unknownProject
	}
	m.snapshot = &snap
	m.events.Seed(snap.Status.String())
	m.events.Append(ctx, snap.Status.String(), "Started monitoring - "+snap.Status.String())
	m.render(m.snapshot)
	m.log.Debug("monitoring started", "session", m.sessionID, "project", m.projectName, "status", snap.Status)

	for {
		if ctx.Err() != nil {
			m.stopped()
			return nil
		}

		snap, err := m.fetcher.Fetch(ctx, m.buildID)
		if ctx.Err() != nil {
			m.stopped()
			return nil
		}
		if err != nil {
			m.logFetchError(err)
			m.events.Append(ctx, errorStatus, fetchFailedMsg)
			m.render(nil)
			if err := m.sleep(ctx, m.interval); err != nil {
				m.stopped()
				return nil
			}
			continue
		}

		status := snap.Status
		if last, _ := m.events.Last(); status.String() != last {
			m.events.Append(ctx, status.String(), "Status changed to "+status.String())
		}
		m.snapshot = &snap
		m.render(m.snapshot)

		if status.IsTerminal() {
			return m.finalize(ctx, status)
		}

		if err := m.sleep(ctx, m.interval); err != nil {
			m.stopped()
			return nil
		}
	}
}

func (m *Monitor) finalize(ctx context.Context, status models.BuildStatus) error {
	if err := m.sleep(ctx, m.settle); err != nil {
		m.stopped()
		return nil
	}

	final, err := m.fetcher.Fetch(ctx, m.buildID)
	if err == nil {
		m.snapshot = &final
		m.render(m.snapshot)
	} else {
		m.log.Debug("final fetch failed, keeping last render", "err", err)
	}

	m.display.Stop()
	fmt.Fprintf(m.out, "\nBuild %s! (%s)\n", status, metrics.Summarize(m.snapshot))
	return nil
}

func (m *Monitor) render(snap *models.BuildSnapshot) {
	recent := m.events.Recent(events.DisplayLimit)
	m.display.Update(m.renderer.Render(dashboard.View{
		BuildID:     m.buildID,
		ProjectName: m.projectName,
		Interval:    m.interval,
		Snapshot:    snap,
		Events:      recent,
	}))

	if m.publisher == nil {
		return
	}
	m.publisher.Publish(models.DashboardState{
		SessionID:       m.sessionID,
		BuildID:         m.buildID,
		ProjectName:     m.projectName,
		IntervalSeconds: int(m.interval / time.Second),
		Snapshot:        snap,
		Events:          recent,
		UpdatedAt:       time.Now().UTC(),
	})
}

func (m *Monitor) logFetchError(err error) {
	var fe *fetcher.Error
	if errors.As(err, &fe) && fe.Warning() {
		m.log.Warn(fe.Message, "build_id", m.buildID)
		return
	}
	m.log.Error(err.Error(), "kind", fetcher.KindOf(err), "build_id", m.buildID)
}

func (m *Monitor) stopped() {
	m.display.Stop()
	fmt.Fprintf(m.out, "\n%s\n", stoppedByUserMsg)
}

// Sleep waits for d, returning ctx.Err() if ctx is done first.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
