package websocket

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/veiloq/coinbase-connector/pkg/exchanges/interfaces"
)

// MockSession is an in-memory FrameReader for consumers' tests. Frames are
// queued with the Push helpers and handed out by ReadNext in order; EndFeed
// terminates the stream the way a peer close frame would.
type MockSession struct {
	mu        sync.Mutex
	connected bool
	frames    chan Frame

	subscribeCalls   int
	unsubscribeCalls int
}

// NewMockSession creates a connected mock session with a buffered frame
// queue.
func NewMockSession() *MockSession {
	return &MockSession{
		connected: true,
		frames:    make(chan Frame, 128),
	}
}

// PushText queues a text frame.
func (m *MockSession) PushText(data string) {
	m.frames <- Frame{Type: websocket.TextMessage, Data: []byte(data)}
}

// PushFrame queues an arbitrary frame.
func (m *MockSession) PushFrame(f Frame) {
	m.frames <- f
}

// EndFeed closes the frame queue; once drained, ReadNext reports
// interfaces.ErrSessionClosed.
func (m *MockSession) EndFeed() {
	close(m.frames)
}

// SetConnected overrides the connection state.
func (m *MockSession) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = connected
}

// Subscribe records the call.
func (m *MockSession) Subscribe(products, channels []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return interfaces.ErrNotConnected
	}
	m.subscribeCalls++
	return nil
}

// Unsubscribe records the call.
func (m *MockSession) Unsubscribe(products, channels []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return interfaces.ErrNotConnected
	}
	m.unsubscribeCalls++
	return nil
}

// SubscribeCalls returns how many times Subscribe was called.
func (m *MockSession) SubscribeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribeCalls
}

// ReadNext implements FrameReader.
func (m *MockSession) ReadNext() (Frame, error) {
	m.mu.Lock()
	connected := m.connected
	m.mu.Unlock()
	if !connected {
		return Frame{}, interfaces.ErrNotConnected
	}

	frame, ok := <-m.frames
	if !ok {
		return Frame{}, interfaces.ErrSessionClosed
	}
	return frame, nil
}
