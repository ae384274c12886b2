package adapter

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsConn is the subset of *nats.Conn the publisher uses
//
//go:generate mockgen -source=nats.go -destination=../mocks/nats.go -package=mocks -mock_names=NatsConn=MockNatsConn,JetStream=MockJetStream,NatsJetStream=MockNatsJetStream
type NatsConn interface {
	Close()
	LastError() error
	ConnectedUrl() string
}

// JetStream is the subset of jetstream.JetStream the publisher uses
type JetStream interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
	// EnsureStream creates the stream or updates its subjects
	EnsureStream(ctx context.Context, name string, subjects []string) error
}

// NatsJetStream opens NATS connections with a JetStream context
type NatsJetStream interface {
	Connect(url string, options ...nats.Option) (NatsConn, JetStream, error)
}

// RealNatsJetStream implements NatsJetStream with the nats packages
type RealNatsJetStream struct{}

// NewNatsJetStream creates a real NATS JetStream connector
func NewNatsJetStream() NatsJetStream {
	return &RealNatsJetStream{}
}

func (n *RealNatsJetStream) Connect(url string, options ...nats.Option) (NatsConn, JetStream, error) {
	nc, err := nats.Connect(url, options...)
	if err != nil {
		return nil, nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	return nc, &jetStreamAdapter{js: js}, nil
}

type jetStreamAdapter struct {
	js jetstream.JetStream
}

func (a *jetStreamAdapter) Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	return a.js.Publish(ctx, subject, data, opts...)
}

func (a *jetStreamAdapter) EnsureStream(ctx context.Context, name string, subjects []string) error {
	_, err := a.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: subjects,
	})
	return err
}
