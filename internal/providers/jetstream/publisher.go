package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/nextup-labs/nxt-ledger/internal/adapter"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
	"github.com/nextup-labs/nxt-ledger/internal/messaging"
)

// DEFAULT_SUBJECT_PREFIX prefixes every published subject: <prefix>.<event_type>
const DEFAULT_SUBJECT_PREFIX = "ledger"

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type publisher struct {
	nc     adapter.NatsConn
	js     adapter.JetStream
	prefix string
	json   adapter.JSON
}

// NewPublisher connects to NATS and makes sure the ledger stream exists
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = DEFAULT_SUBJECT_PREFIX
	}

	if cfg.StreamName != "" {
		if err := js.EnsureStream(ctx, cfg.StreamName, []string{prefix + ".>"}); err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
		}
	}

	return &publisher{
		nc:     nc,
		js:     js,
		prefix: prefix,
		json:   jsonAdapter,
	}, nil
}

// PublishEvent publishes a ledger event. The event id is the JetStream message id,
// so a republished event is dropped by the stream's duplicate window.
func (p *publisher) PublishEvent(ctx context.Context, event *messaging.LedgerEvent) error {
	logger.DebugCtx(ctx, "Publishing ledger event",
		zap.String("id", event.ID),
		zap.String("event_type", string(event.Event.Type)))

	data, err := p.json.MarshalCanonical(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = p.js.Publish(ctx, p.Subject(event), data, jetstream.WithMsgID(event.ID))
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subject returns the subject an event is published on, e.g. ledger.utility_token_purchased
func (p *publisher) Subject(event *messaging.LedgerEvent) string {
	return fmt.Sprintf("%s.%s", p.prefix, event.Event.Type)
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}
	p.nc.Close()
}
