package auth

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventLoginRequested ActivityEventType = "auth.login.requested"
	ActivityEventLoginThrottled ActivityEventType = "auth.login.throttled"
	ActivityEventLoginFailure   ActivityEventType = "auth.login.failure"
	ActivityEventLinkSent       ActivityEventType = "auth.login.link_sent"
	ActivityEventPromoted       ActivityEventType = "auth.session.promoted"
	ActivityEventLogout         ActivityEventType = "auth.session.logout"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     string
	TokenID    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

type multiActivitySink struct {
	sinks []ActivitySink
}

// MultiActivitySink fans every event out to all sinks concurrently and
// returns the first error, if any.
func MultiActivitySink(sinks ...ActivitySink) ActivitySink {
	return multiActivitySink{sinks: sinks}
}

func (m multiActivitySink) Record(ctx context.Context, event ActivityEvent) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, sink := range m.sinks {
		g.Go(func() error {
			return sink.Record(gctx, event)
		})
	}
	return g.Wait()
}
