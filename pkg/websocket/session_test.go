package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veiloq/coinbase-connector/pkg/exchanges/interfaces"
	"github.com/veiloq/coinbase-connector/pkg/logging"
)

func newTestSession(t *testing.T) (*Session, *FeedServer) {
	t.Helper()
	server := NewFeedServer()
	t.Cleanup(server.Close)

	session := NewSession(Config{
		URL:          server.URL(),
		DialAttempts: 1,
		DialDelay:    10 * time.Millisecond,
		Logger:       logging.NopLogger(),
	})
	t.Cleanup(func() { _ = session.Disconnect() })
	return session, server
}

func TestSessionNotConnected(t *testing.T) {
	session := NewSession(Config{URL: "ws://unused.test", Logger: logging.NopLogger()})

	_, err := session.ReadNext()
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrNotConnected))

	err = session.Subscribe([]string{"BTC-USD"}, []string{"ticker"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrNotConnected))

	err = session.Unsubscribe([]string{"BTC-USD"}, []string{"ticker"})
	assert.True(t, errors.Is(err, interfaces.ErrNotConnected))

	err = session.AuthenticatedSubscribe([]string{"BTC-USD"}, []string{"user"}, SubscribeAuth{})
	assert.True(t, errors.Is(err, interfaces.ErrNotConnected))

	assert.Equal(t, interfaces.KindNotConnected, interfaces.KindOf(err))
}

func TestSessionConnectIdempotent(t *testing.T) {
	session, server := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, session.Connect(ctx))
	assert.True(t, session.IsConnected())

	// Second connect must not open a second socket.
	require.NoError(t, session.Connect(ctx))
	assert.True(t, session.IsConnected())

	require.Eventually(t, func() bool {
		return server.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSessionConnectFailure(t *testing.T) {
	session := NewSession(Config{
		URL:          "ws://127.0.0.1:1", // nothing listens here
		DialAttempts: 2,
		DialDelay:    time.Millisecond,
		Logger:       logging.NopLogger(),
	})

	err := session.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, interfaces.KindNetwork, interfaces.KindOf(err))
	assert.False(t, session.IsConnected())
}

func TestSessionSubscribeProtocol(t *testing.T) {
	session, server := newTestSession(t)
	require.NoError(t, session.Connect(context.Background()))

	require.NoError(t, session.Subscribe([]string{"BTC-USD", "ETH-USD"}, []string{"ticker"}))

	require.Eventually(t, func() bool {
		return len(server.Received()) == 1
	}, time.Second, 10*time.Millisecond)

	var msg struct {
		Type       string   `json:"type"`
		ProductIDs []string `json:"product_ids"`
		Channels   []string `json:"channels"`
		Signature  string   `json:"signature"`
	}
	require.NoError(t, json.Unmarshal(server.Received()[0], &msg))
	assert.Equal(t, "subscribe", msg.Type)
	assert.Equal(t, []string{"BTC-USD", "ETH-USD"}, msg.ProductIDs)
	assert.Equal(t, []string{"ticker"}, msg.Channels)
	assert.Empty(t, msg.Signature)

	require.NoError(t, session.Unsubscribe([]string{"ETH-USD"}, []string{"ticker"}))
	require.Eventually(t, func() bool {
		return len(server.Received()) == 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, json.Unmarshal(server.Received()[1], &msg))
	assert.Equal(t, "unsubscribe", msg.Type)
}

func TestSessionAuthenticatedSubscribe(t *testing.T) {
	session, server := newTestSession(t)
	require.NoError(t, session.Connect(context.Background()))

	auth := SubscribeAuth{
		Key:        "key",
		Passphrase: "phrase",
		Signature:  "sig==",
		Timestamp:  "1700000000",
	}
	require.NoError(t, session.AuthenticatedSubscribe([]string{"BTC-USD"}, []string{"user"}, auth))

	require.Eventually(t, func() bool {
		return len(server.Received()) == 1
	}, time.Second, 10*time.Millisecond)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(server.Received()[0], &msg))
	assert.Equal(t, "subscribe", msg["type"])
	assert.Equal(t, "sig==", msg["signature"])
	assert.Equal(t, "key", msg["key"])
	assert.Equal(t, "phrase", msg["passphrase"])
	assert.Equal(t, "1700000000", msg["timestamp"])
}

func TestSessionReadNext(t *testing.T) {
	session, server := newTestSession(t)
	require.NoError(t, session.Connect(context.Background()))

	payload := []byte(`{"type":"ticker","product_id":"BTC-USD"}`)
	go func() {
		time.Sleep(50 * time.Millisecond)
		server.Broadcast(payload)
	}()

	frame, err := session.ReadNext()
	require.NoError(t, err)
	assert.True(t, frame.IsText())
	assert.Equal(t, payload, frame.Data)
}

func TestSessionPeerClose(t *testing.T) {
	session, server := newTestSession(t)
	require.NoError(t, session.Connect(context.Background()))

	go func() {
		time.Sleep(50 * time.Millisecond)
		server.CloseClients()
	}()

	_, err := session.ReadNext()
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrSessionClosed))
	assert.False(t, session.IsConnected())
}

func TestSessionDisconnect(t *testing.T) {
	session, _ := newTestSession(t)
	require.NoError(t, session.Connect(context.Background()))

	require.NoError(t, session.Disconnect())
	assert.False(t, session.IsConnected())

	// Disconnecting again is a no-op.
	require.NoError(t, session.Disconnect())

	_, err := session.ReadNext()
	assert.True(t, errors.Is(err, interfaces.ErrNotConnected))
}

func TestMockSession(t *testing.T) {
	mock := NewMockSession()

	mock.PushText(`{"product_id":"BTC-USD"}`)
	mock.PushFrame(Frame{Type: websocket.BinaryMessage, Data: []byte{0x1}})
	mock.EndFeed()

	frame, err := mock.ReadNext()
	require.NoError(t, err)
	assert.True(t, frame.IsText())

	frame, err = mock.ReadNext()
	require.NoError(t, err)
	assert.False(t, frame.IsText())

	_, err = mock.ReadNext()
	assert.True(t, errors.Is(err, interfaces.ErrSessionClosed))

	mock.SetConnected(false)
	_, err = mock.ReadNext()
	assert.True(t, errors.Is(err, interfaces.ErrNotConnected))
}
