package jetstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextup-labs/nxt-ledger/internal/adapter"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/messaging"
	"github.com/nextup-labs/nxt-ledger/internal/mocks"
	js "github.com/nextup-labs/nxt-ledger/internal/providers/jetstream"
)

type testPublisherMocks struct {
	ctrl   *gomock.Controller
	natsJS *mocks.MockNatsJetStream
	conn   *mocks.MockNatsConn
	stream *mocks.MockJetStream
}

func setupPublisherMocks(t *testing.T) *testPublisherMocks {
	ctrl := gomock.NewController(t)
	return &testPublisherMocks{
		ctrl:   ctrl,
		natsJS: mocks.NewMockNatsJetStream(ctrl),
		conn:   mocks.NewMockNatsConn(ctrl),
		stream: mocks.NewMockJetStream(ctrl),
	}
}

func testEvent() *messaging.LedgerEvent {
	return &messaging.LedgerEvent{
		ID:            messaging.EventID("01HX0000000000000000000000", 2),
		TransactionID: "01HX0000000000000000000000",
		Sequence:      9,
		Method:        "purchase",
		Timestamp:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Event: domain.Event{
			Type:     domain.EventTypeUtilityTokenPurchased,
			Contract: common.HexToAddress("0x00000000000000000000000000000000000000a1"),
			LogIndex: 2,
			Attributes: map[string]string{
				"buyer":  "0x00000000000000000000000000000000000000b2",
				"amount": "10",
			},
		},
	}
}

func TestNewPublisher_EnsuresStream(t *testing.T) {
	m := setupPublisherMocks(t)
	defer m.ctrl.Finish()

	m.natsJS.EXPECT().Connect("nats://localhost:4222", gomock.Any()).Return(m.conn, m.stream, nil)
	m.stream.EXPECT().EnsureStream(gomock.Any(), "LEDGER", []string{"ledger.>"}).Return(nil)

	pub, err := js.NewPublisher(context.Background(), js.Config{
		URL:        "nats://localhost:4222",
		StreamName: "LEDGER",
	}, m.natsJS, adapter.NewJSON())
	require.NoError(t, err)
	require.NotNil(t, pub)

	m.conn.EXPECT().Close()
	pub.Close()
}

func TestNewPublisher_StreamFailureClosesConnection(t *testing.T) {
	m := setupPublisherMocks(t)
	defer m.ctrl.Finish()

	m.natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(m.conn, m.stream, nil)
	m.stream.EXPECT().EnsureStream(gomock.Any(), "LEDGER", []string{"nxt.>"}).Return(errors.New("no jetstream"))
	m.conn.EXPECT().Close()

	_, err := js.NewPublisher(context.Background(), js.Config{StreamName: "LEDGER", SubjectPrefix: "nxt"}, m.natsJS, adapter.NewJSON())
	assert.Error(t, err)
}

func TestNewPublisher_ConnectError(t *testing.T) {
	m := setupPublisherMocks(t)
	defer m.ctrl.Finish()

	m.natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(nil, nil, errors.New("connection refused"))

	_, err := js.NewPublisher(context.Background(), js.Config{}, m.natsJS, adapter.NewJSON())
	assert.Error(t, err)
}

func TestPublisher_PublishEvent(t *testing.T) {
	m := setupPublisherMocks(t)
	defer m.ctrl.Finish()

	m.natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(m.conn, m.stream, nil)
	pub, err := js.NewPublisher(context.Background(), js.Config{}, m.natsJS, adapter.NewJSON())
	require.NoError(t, err)

	event := testEvent()
	m.stream.EXPECT().
		Publish(gomock.Any(), "ledger.utility_token_purchased", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
			assert.Len(t, opts, 1)

			var decoded messaging.LedgerEvent
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, event.ID, decoded.ID)
			assert.Equal(t, uint64(9), decoded.Sequence)
			assert.Equal(t, "10", decoded.Event.Attr("amount"))
			return &jetstream.PubAck{Stream: "LEDGER", Sequence: 1}, nil
		})

	assert.NoError(t, pub.PublishEvent(context.Background(), event))
}

func TestPublisher_PublishEventMarshalError(t *testing.T) {
	m := setupPublisherMocks(t)
	defer m.ctrl.Finish()

	jsonMock := mocks.NewMockJSON(m.ctrl)
	m.natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(m.conn, m.stream, nil)
	pub, err := js.NewPublisher(context.Background(), js.Config{}, m.natsJS, jsonMock)
	require.NoError(t, err)

	jsonMock.EXPECT().MarshalCanonical(gomock.Any()).Return(nil, errors.New("boom"))

	assert.Error(t, pub.PublishEvent(context.Background(), testEvent()))
}

func TestPublisher_PublishEventBrokerError(t *testing.T) {
	m := setupPublisherMocks(t)
	defer m.ctrl.Finish()

	m.natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(m.conn, m.stream, nil)
	pub, err := js.NewPublisher(context.Background(), js.Config{}, m.natsJS, adapter.NewJSON())
	require.NoError(t, err)

	m.stream.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	assert.Error(t, pub.PublishEvent(context.Background(), testEvent()))
}
