package coinbase

import (
	"context"
	"encoding/json"

	"github.com/veiloq/coinbase-connector/pkg/exchanges/interfaces"
	"github.com/veiloq/coinbase-connector/pkg/logging"
	"github.com/veiloq/coinbase-connector/pkg/websocket"
)

// Change is one order-book delta from the level2 channel: a side ("buy" or
// "sell"), a price level, and the new size at that level. Sizes are absolute
// replacements, not increments.
type Change struct {
	Side  string
	Price string
	Size  string
}

// Level2Feed reads order-book deltas from the level2 channel over a
// streaming session. It reuses the session primitive as-is and adds only
// frame interpretation; book reconstruction is out of scope.
type Level2Feed struct {
	session *websocket.Session
	logger  logging.Logger
	open    bool
}

// NewLevel2Feed wraps a session. The session may be connected already;
// otherwise Open connects it.
func NewLevel2Feed(session *websocket.Session, logger logging.Logger) *Level2Feed {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &Level2Feed{session: session, logger: logger}
}

// Open subscribes the given products to the level2 channel, connecting the
// session first when needed.
func (f *Level2Feed) Open(ctx context.Context, products []string) error {
	if !f.session.IsConnected() {
		if err := f.session.Connect(ctx); err != nil {
			return err
		}
	}
	if err := f.session.Subscribe(products, []string{"level2"}); err != nil {
		return err
	}
	f.open = true
	return nil
}

// Close unsubscribes nothing and tears the session down; the exchange drops
// subscriptions with the connection.
func (f *Level2Feed) Close() error {
	f.open = false
	return f.session.Disconnect()
}

// NextChange blocks for the next frame and returns its first change triple.
// Frames that are not level2 deltas (subscription acks, heartbeats,
// malformed text) yield (nil, nil) so callers can poll in a loop. The stream
// ends with interfaces.ErrSessionClosed.
func (f *Level2Feed) NextChange() (*Change, error) {
	if !f.open {
		return nil, interfaces.ErrNotConnected
	}

	frame, err := f.session.ReadNext()
	if err != nil {
		return nil, err
	}
	if !frame.IsText() {
		return nil, nil
	}

	var msg struct {
		Changes [][]string `json:"changes"`
	}
	if err := json.Unmarshal(frame.Data, &msg); err != nil {
		f.logger.Debug("dropping malformed level2 frame", logging.Error(err))
		return nil, nil
	}
	if len(msg.Changes) == 0 || len(msg.Changes[0]) != 3 {
		return nil, nil
	}

	first := msg.Changes[0]
	return &Change{Side: first[0], Price: first[1], Size: first[2]}, nil
}
