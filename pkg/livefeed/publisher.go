package livefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rbarrios/fleetduty-backend/pkg/config"
	"github.com/rbarrios/fleetduty-backend/pkg/logger"
)

// FeedMetrics is implemented by pkg/metrics. All methods must be safe for
// concurrent use; a nil metrics sink disables instrumentation.
type FeedMetrics interface {
	PublishedInc(kind string)
	PublishErrInc(kind string)
	PublishObserve(d time.Duration)
	SetConnected(connected bool)
}

// Publisher pushes live trip events onto NATS subjects of the form
// {prefix}.{routeToken}.start and {prefix}.{routeToken}.end.
type Publisher struct {
	nc          *nats.Conn
	prefix      string
	logSubjects bool
	logg        *logger.Logger
	metrics     FeedMetrics
}

func NewPublisher(cfg config.LiveConfig, logg *logger.Logger, m FeedMetrics) (*Publisher, error) {
	nc, err := connect(cfg.NATSURL, "fleetduty-api", logg, m)
	if err != nil {
		return nil, err
	}
	return &Publisher{
		nc:          nc,
		prefix:      subjectToken(cfg.SubjectPrefix),
		logSubjects: cfg.LogSubjects,
		logg:        logg,
		metrics:     m,
	}, nil
}

func connect(url, name string, logg *logger.Logger, m FeedMetrics) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.DisconnectErrHandler(func(_ *nats.Conn, _ error) {
			if m != nil {
				m.SetConnected(false)
			}
			if logg != nil {
				logg.Warn(context.Background(), "nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetConnected(true)
			}
			if logg != nil {
				logg.Info(context.Background(), "nats reconnected")
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetConnected(false)
			}
			if logg != nil {
				logg.Info(context.Background(), "nats connection closed")
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	if m != nil {
		m.SetConnected(true)
	}
	return nc, nil
}

func (p *Publisher) PublishTripStarted(ctx context.Context, ev TripStarted) error {
	subject := fmt.Sprintf("%s.%s.start", p.prefix, subjectToken(ev.RouteID.String()))
	return p.publish(ctx, string(KindTripStarted), subject, ev)
}

func (p *Publisher) PublishTripEnded(ctx context.Context, ev TripEnded) error {
	subject := fmt.Sprintf("%s.%s.end", p.prefix, subjectToken(ev.RouteID.String()))
	return p.publish(ctx, string(KindTripEnded), subject, ev)
}

func (p *Publisher) publish(ctx context.Context, kind, subject string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if p.logSubjects && p.logg != nil {
		p.logg.Info(p.logg.WithFields(ctx, map[string]any{"subject": subject}), "nats publish")
	}
	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.PublishErrInc(kind)
		} else {
			p.metrics.PublishedInc(kind)
		}
	}
	return err
}

// Close drains in-flight messages before closing the connection.
func (p *Publisher) Close() error {
	if p == nil || p.nc == nil {
		return nil
	}
	err := p.nc.Drain()
	p.nc.Close()
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS tokens cannot contain spaces, '>', '*', or '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
