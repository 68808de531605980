package coinbase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veiloq/coinbase-connector/pkg/exchanges/interfaces"
	"github.com/veiloq/coinbase-connector/pkg/logging"
	"github.com/veiloq/coinbase-connector/pkg/websocket"
)

func TestLevel2Feed(t *testing.T) {
	server := websocket.NewFeedServer()
	t.Cleanup(server.Close)

	session := websocket.NewSession(websocket.Config{
		URL:          server.URL(),
		DialAttempts: 1,
		Logger:       logging.NopLogger(),
	})
	feed := NewLevel2Feed(session, logging.NopLogger())

	// Reading before Open is a state error, not a hang.
	_, err := feed.NextChange()
	assert.True(t, errors.Is(err, interfaces.ErrNotConnected))

	require.NoError(t, feed.Open(context.Background(), []string{"BTC-USD"}))
	t.Cleanup(func() { _ = feed.Close() })

	// Open both connects and subscribes to the level2 channel.
	require.Eventually(t, func() bool {
		return len(server.Received()) == 1
	}, time.Second, 10*time.Millisecond)

	var control struct {
		Type     string   `json:"type"`
		Channels []string `json:"channels"`
	}
	require.NoError(t, json.Unmarshal(server.Received()[0], &control))
	assert.Equal(t, "subscribe", control.Type)
	assert.Equal(t, []string{"level2"}, control.Channels)

	// A subscription ack is not a delta.
	server.Broadcast([]byte(`{"type":"subscriptions","channels":[]}`))
	change, err := feed.NextChange()
	require.NoError(t, err)
	assert.Nil(t, change)

	server.Broadcast([]byte(`{"type":"l2update","product_id":"BTC-USD","changes":[["buy","30010.50","0.25"]]}`))
	change, err = feed.NextChange()
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, "buy", change.Side)
	assert.Equal(t, "30010.50", change.Price)
	assert.Equal(t, "0.25", change.Size)

	// Malformed triples are skipped, not fatal.
	server.Broadcast([]byte(`{"type":"l2update","changes":[["buy","30010.50"]]}`))
	change, err = feed.NextChange()
	require.NoError(t, err)
	assert.Nil(t, change)
}
