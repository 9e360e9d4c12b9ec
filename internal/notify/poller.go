package notify

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	appLog "calplan/internal/log"
	"calplan/internal/model"
)

// DefaultSchedule polls once per second.
const DefaultSchedule = "@every 1s"

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

// EventSource lists the current event collection.
type EventSource interface {
	List(ctx context.Context) ([]model.Event, error)
}

// Sink receives each newly raised notification.
type Sink func(model.Notification)

// LogSink writes notifications to the application log.
func LogSink(n model.Notification) {
	appLog.Info("notification", "id", n.ID, "message", n.Message)
}

// Poller evaluates a Session against an EventSource on a cron schedule.
// Runs never overlap: a tick that is still running causes the next one to
// be skipped.
type Poller struct {
	src      EventSource
	session  *Session
	clock    Clock
	sink     Sink
	schedule string
}

// NewPoller returns a Poller with the system clock, LogSink and
// DefaultSchedule. Use the With* methods to override them.
func NewPoller(src EventSource, session *Session) *Poller {
	return &Poller{
		src:      src,
		session:  session,
		clock:    SystemClock{},
		sink:     LogSink,
		schedule: DefaultSchedule,
	}
}

func (p *Poller) WithClock(c Clock) *Poller {
	p.clock = c
	return p
}

func (p *Poller) WithSink(s Sink) *Poller {
	p.sink = s
	return p
}

// WithSchedule sets a cron spec. Both 5-field and 6-field (seconds)
// expressions as well as descriptors like "@every 30s" are accepted.
func (p *Poller) WithSchedule(spec string) *Poller {
	if spec != "" {
		p.schedule = spec
	}
	return p
}

// RunOnce performs a single evaluation and returns the new notifications.
func (p *Poller) RunOnce(ctx context.Context) ([]model.Notification, error) {
	events, err := p.src.List(ctx)
	if err != nil {
		return nil, err
	}
	raised := p.session.Tick(events, p.clock.Now())
	for _, n := range raised {
		p.sink(n)
	}
	return raised, nil
}

// Start runs the poll loop until ctx is cancelled. It returns an error only
// if the schedule cannot be parsed.
func (p *Poller) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.SecondOptional|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
		)),
		cron.WithLogger(appLog.CronLogger{}),
		cron.WithChain(
			cron.Recover(appLog.CronLogger{}),
			cron.SkipIfStillRunning(appLog.CronLogger{}),
		),
	)

	if _, err := c.AddFunc(p.schedule, func() {
		if _, err := p.RunOnce(ctx); err != nil {
			appLog.Error("notify: tick failed", err)
		}
	}); err != nil {
		return err
	}

	appLog.Info("notify poller started", "schedule", p.schedule)
	c.Start()

	<-ctx.Done()

	// Wait for a running tick to finish.
	<-c.Stop().Done()
	appLog.Info("notify poller stopped")
	return nil
}
