package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/nats-io/nats.go"
)

// NATSConfig configures the NATS publisher.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	Name          string
	FlushTimeout  time.Duration
}

// NATSPublisher publishes events as JSON on <prefix>.<created|updated|deleted>.
type NATSPublisher struct {
	nc           *nats.Conn
	prefix       string
	flushTimeout time.Duration
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to cfg.URL (nats.DefaultURL when empty).
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = "todos"
	}
	flushTimeout := cfg.FlushTimeout
	if flushTimeout <= 0 {
		flushTimeout = 2 * time.Second
	}

	nc, err := nats.Connect(url, func(o *nats.Options) error {
		o.Name = cfg.Name
		if o.Name == "" {
			o.Name = "todos"
		}
		o.MaxReconnect = -1
		o.ReconnectWait = time.Second
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}

	return &NATSPublisher{nc: nc, prefix: prefix, flushTimeout: flushTimeout}, nil
}

// Subject returns the subject an event of type t is published on.
func (p *NATSPublisher) Subject(t Type) string {
	return p.prefix + "." + t.Suffix()
}

func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := nats.NewMsg(p.Subject(ev.Type))
	msg.Data = data
	if ev.RequestID != "" {
		msg.Header.Set(core.RequestIDHeader, ev.RequestID)
	}
	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

// Close flushes buffered messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if err := p.nc.FlushTimeout(p.flushTimeout); err != nil {
		p.nc.Close()
		return fmt.Errorf("flush nats: %w", err)
	}
	return p.nc.Drain()
}
