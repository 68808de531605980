package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// FeedServer is an in-process WebSocket feed for session and driver tests.
// It records inbound control messages and lets tests broadcast frames or
// close connections the way the exchange would.
type FeedServer struct {
	server *httptest.Server
	url    string

	mu       sync.Mutex
	conns    map[*websocket.Conn]bool
	received [][]byte
}

// NewFeedServer starts a mock feed on a loopback listener.
func NewFeedServer() *FeedServer {
	fs := &FeedServer{
		conns: make(map[*websocket.Conn]bool),
	}
	fs.server = httptest.NewServer(http.HandlerFunc(fs.handle))
	fs.url = "ws" + strings.TrimPrefix(fs.server.URL, "http")
	return fs
}

// URL returns the ws:// endpoint of the feed.
func (fs *FeedServer) URL() string {
	return fs.url
}

// Close shuts down the server and all client connections.
func (fs *FeedServer) Close() {
	fs.server.Close()
}

// ConnectionCount returns the number of live client connections.
func (fs *FeedServer) ConnectionCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.conns)
}

// Received returns a copy of all control messages received so far.
func (fs *FeedServer) Received() [][]byte {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([][]byte, len(fs.received))
	copy(out, fs.received)
	return out
}

// Broadcast sends a text frame to every connected client.
func (fs *FeedServer) Broadcast(message []byte) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for conn := range fs.conns {
		_ = conn.WriteMessage(websocket.TextMessage, message)
	}
}

// CloseClients performs a server-initiated close handshake on every
// connection, simulating the exchange ending the stream.
func (fs *FeedServer) CloseClients() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for conn := range fs.conns {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "feed closed"))
		_ = conn.Close()
	}
	fs.conns = make(map[*websocket.Conn]bool)
}

func (fs *FeedServer) handle(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	fs.mu.Lock()
	fs.conns[conn] = true
	fs.mu.Unlock()

	defer func() {
		fs.mu.Lock()
		delete(fs.conns, conn)
		fs.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType == websocket.TextMessage {
			fs.mu.Lock()
			fs.received = append(fs.received, message)
			fs.mu.Unlock()
		}
	}
}
