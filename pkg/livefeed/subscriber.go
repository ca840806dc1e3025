package livefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"go.uber.org/multierr"

	"github.com/rbarrios/fleetduty-backend/pkg/config"
	"github.com/rbarrios/fleetduty-backend/pkg/logger"
)

// Subscriber consumes the live trip feed and delivers decoded events on a
// typed channel. Route filtering happens downstream; the subscriber listens
// on the whole {prefix}.> wildcard so subscription changes never require a
// NATS resubscribe.
type Subscriber struct {
	nc      *nats.Conn
	prefix  string
	logg    *logger.Logger
	metrics FeedMetrics

	events chan Event
	sub    *nats.Subscription
}

func NewSubscriber(cfg config.LiveConfig, logg *logger.Logger, m FeedMetrics, buffer int) (*Subscriber, error) {
	if buffer <= 0 {
		buffer = 256
	}
	nc, err := connect(cfg.NATSURL, "fleetduty-liveboard", logg, m)
	if err != nil {
		return nil, err
	}
	return &Subscriber{
		nc:      nc,
		prefix:  subjectToken(cfg.SubjectPrefix),
		logg:    logg,
		metrics: m,
		events:  make(chan Event, buffer),
	}, nil
}

// Events is the delivery channel. It is closed when Close is called.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Start subscribes to the feed wildcard. Malformed messages and messages on
// unrecognized subjects are logged and skipped, never fatal.
func (s *Subscriber) Start(ctx context.Context) error {
	if s.sub != nil {
		return fmt.Errorf("subscriber already started")
	}
	subject := s.prefix + ".>"
	sub, err := s.nc.Subscribe(subject, func(msg *nats.Msg) {
		ev, ok := s.decode(ctx, msg)
		if !ok {
			return
		}
		select {
		case s.events <- ev:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	s.sub = sub
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"subject": subject})
		s.logg.Info(logCtx, "live feed subscribed")
	}
	return nil
}

func (s *Subscriber) decode(ctx context.Context, msg *nats.Msg) (Event, bool) {
	switch {
	case strings.HasSuffix(msg.Subject, ".start"):
		var ev TripStarted
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			s.warnDecode(ctx, msg.Subject, err)
			return Event{}, false
		}
		return Event{Kind: KindTripStarted, Started: &ev}, true
	case strings.HasSuffix(msg.Subject, ".end"):
		var ev TripEnded
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			s.warnDecode(ctx, msg.Subject, err)
			return Event{}, false
		}
		return Event{Kind: KindTripEnded, Ended: &ev}, true
	default:
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"subject": msg.Subject})
			s.logg.Warn(logCtx, "live feed message on unknown subject")
		}
		return Event{}, false
	}
}

func (s *Subscriber) warnDecode(ctx context.Context, subject string, err error) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{"subject": subject, "error": err.Error()})
	s.logg.Warn(logCtx, "live feed message decode failed")
}

// Close unsubscribes, drains the connection, and closes the event channel.
func (s *Subscriber) Close() error {
	if s == nil || s.nc == nil {
		return nil
	}
	var errs error
	if s.sub != nil {
		errs = multierr.Append(errs, s.sub.Unsubscribe())
		s.sub = nil
	}
	errs = multierr.Append(errs, s.nc.Drain())
	s.nc.Close()
	close(s.events)
	return errs
}
