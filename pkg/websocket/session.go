// Package websocket implements the streaming session: ownership of a single
// WebSocket connection to the exchange feed, channel subscription control
// messages, and a blocking read primitive. The session performs no JSON
// interpretation of inbound frames, so the same primitive serves the ticker
// drive loop and the level2 feed reader without duplicating socket handling.
package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/gorilla/websocket"

	"github.com/veiloq/coinbase-connector/pkg/exchanges/interfaces"
	"github.com/veiloq/coinbase-connector/pkg/logging"
)

// Frame is a single inbound WebSocket frame. Type is one of the gorilla
// message type constants (TextMessage, BinaryMessage, ...).
type Frame struct {
	Type int
	Data []byte
}

// IsText reports whether the frame carries JSON text.
func (f Frame) IsText() bool {
	return f.Type == websocket.TextMessage
}

// FrameReader is the read side of a streaming session. The drive loop in
// pkg/strategy depends on this interface only.
type FrameReader interface {
	// ReadNext blocks until the next frame arrives. It returns
	// interfaces.ErrSessionClosed when the stream has ended gracefully
	// (peer close frame or local Disconnect) and interfaces.ErrNotConnected
	// when called on a session that was never connected.
	ReadNext() (Frame, error)
}

// SubscribeAuth carries the signed fields attached to an authenticated
// subscription control message. Build it with coinbase.Client.FeedAuth.
type SubscribeAuth struct {
	Key        string
	Passphrase string
	Signature  string
	Timestamp  string
}

// Config holds session configuration.
type Config struct {
	// URL of the exchange feed endpoint (wss://...).
	URL string

	// HandshakeTimeout bounds the WebSocket handshake. Defaults to 10s.
	HandshakeTimeout time.Duration

	// DialAttempts bounds how many times Connect tries to dial before
	// giving up. Defaults to 3. The session never reconnects on its own
	// after a successful Connect; a dead socket ends the frame stream and
	// the owner decides whether to reconnect.
	DialAttempts uint

	// DialDelay is the base backoff between dial attempts. Defaults to 2s.
	DialDelay time.Duration

	Logger logging.Logger
}

type sessionState int

const (
	stateDisconnected sessionState = iota
	stateConnected
)

// Session owns one WebSocket connection and its subscription state. It is a
// two-state machine (Disconnected, Connected); every streaming operation is
// valid only while Connected and fails with interfaces.ErrNotConnected
// otherwise. Connectivity is tracked explicitly and never inferred from the
// presence of a socket handle.
//
// A session has a single owner: concurrent ReadNext calls are not supported.
// Control-message writes are serialized internally so that a subscription
// change may race a read, but not another write.
type Session struct {
	config Config
	logger logging.Logger

	mu    sync.Mutex
	conn  *websocket.Conn
	state sessionState
}

// NewSession creates a session for the given feed endpoint. The connection
// is not opened until Connect is called.
func NewSession(config Config) *Session {
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = 10 * time.Second
	}
	if config.DialAttempts == 0 {
		config.DialAttempts = 3
	}
	if config.DialDelay <= 0 {
		config.DialDelay = 2 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &Session{
		config: config,
		logger: logger,
	}
}

// IsConnected reports the state machine's view of the connection.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateConnected
}

// Connect transitions the session from Disconnected to Connected by opening
// a TLS WebSocket to the feed endpoint. Calling Connect on a session that is
// already Connected is a no-op, observable only as a warning; no second
// socket is created.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateConnected {
		s.logger.Warn("already connected to socket", logging.String("url", s.config.URL))
		return nil
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: s.config.HandshakeTimeout,
	}

	var conn *websocket.Conn
	err := retry.Do(
		func() error {
			var err error
			conn, _, err = dialer.DialContext(ctx, s.config.URL, nil)
			return err
		},
		retry.Attempts(s.config.DialAttempts),
		retry.Delay(s.config.DialDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("dial attempt failed",
				logging.Int("attempt", int(n+1)),
				logging.Error(err),
			)
		}),
	)
	if err != nil {
		return interfaces.NewNetworkError(err)
	}

	s.conn = conn
	s.state = stateConnected
	s.logger.Info("socket connected", logging.String("url", s.config.URL))
	return nil
}

// Disconnect transitions the session to Disconnected and closes the
// underlying socket. It is a no-op when already Disconnected. A ReadNext
// blocked on the socket observes the close and returns ErrSessionClosed.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateConnected {
		s.logger.Debug("already disconnected from socket")
		return nil
	}

	// Best effort close handshake before tearing the socket down.
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect"))

	err := s.conn.Close()
	s.conn = nil
	s.state = stateDisconnected
	s.logger.Info("socket disconnected")
	if err != nil {
		return interfaces.NewNetworkError(err)
	}
	return nil
}

// controlMessage is the outbound subscription protocol frame. The auth
// fields are present only on authenticated subscriptions.
type controlMessage struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channels   []string `json:"channels"`
	Signature  string   `json:"signature,omitempty"`
	Key        string   `json:"key,omitempty"`
	Passphrase string   `json:"passphrase,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
}

// Subscribe asks the feed to start streaming the given channels for the
// given products. Re-subscribing extends the active subscription set rather
// than replacing it; use Unsubscribe to shrink it.
func (s *Session) Subscribe(products, channels []string) error {
	return s.sendControl(controlMessage{
		Type:       "subscribe",
		ProductIDs: products,
		Channels:   channels,
	})
}

// Unsubscribe asks the feed to stop streaming the given channels for the
// given products.
func (s *Session) Unsubscribe(products, channels []string) error {
	return s.sendControl(controlMessage{
		Type:       "unsubscribe",
		ProductIDs: products,
		Channels:   channels,
	})
}

// AuthenticatedSubscribe subscribes to private channels by attaching the
// signed fields required by the exchange's private-channel contract.
//
// The signing contract (a pseudo-request over GET /accounts) follows the
// exchange documentation but is unverified against the live feed; validate
// it with contract tests before relying on private channels.
func (s *Session) AuthenticatedSubscribe(products, channels []string, auth SubscribeAuth) error {
	return s.sendControl(controlMessage{
		Type:       "subscribe",
		ProductIDs: products,
		Channels:   channels,
		Signature:  auth.Signature,
		Key:        auth.Key,
		Passphrase: auth.Passphrase,
		Timestamp:  auth.Timestamp,
	})
}

func (s *Session) sendControl(msg controlMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateConnected {
		return interfaces.ErrNotConnected
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return interfaces.NewNetworkError(err)
	}
	s.logger.Debug("sent control message",
		logging.String("type", msg.Type),
		logging.Int("products", len(msg.ProductIDs)),
		logging.Int("channels", len(msg.Channels)),
	)
	return nil
}

// ReadNext implements FrameReader. It blocks until the next frame arrives.
// A peer close frame (or a read failure caused by a concurrent local
// Disconnect) ends the stream with interfaces.ErrSessionClosed and leaves
// the session Disconnected; any other read failure tears the session down
// and surfaces a network error.
func (s *Session) ReadNext() (Frame, error) {
	s.mu.Lock()
	if s.state != stateConnected {
		s.mu.Unlock()
		return Frame{}, interfaces.ErrNotConnected
	}
	conn := s.conn
	s.mu.Unlock()

	messageType, data, err := conn.ReadMessage()
	if err != nil {
		s.mu.Lock()
		alreadyDown := s.state != stateConnected
		if !alreadyDown {
			_ = s.conn.Close()
			s.conn = nil
			s.state = stateDisconnected
		}
		s.mu.Unlock()

		var closeErr *websocket.CloseError
		if alreadyDown || errors.As(err, &closeErr) {
			return Frame{}, interfaces.ErrSessionClosed
		}
		return Frame{}, interfaces.NewNetworkError(err)
	}

	return Frame{Type: messageType, Data: data}, nil
}
