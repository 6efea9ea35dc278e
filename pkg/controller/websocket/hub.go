package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	websocket_model "github.com/secmon-lab/bqchat/pkg/domain/model/websocket"
	"github.com/secmon-lab/bqchat/pkg/domain/types"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
)

const (
	// Maximum message size allowed from peer (64KB)
	maxMessageSize = 64 * 1024

	// Buffer size for client send channel
	clientSendBufferSize = 256

	// Chat messages waiting for the previous turn to finish
	clientInboxSize = 16
)

// Hub keeps the connected clients so that they can be closed on shutdown.
type Hub struct {
	mu      sync.Mutex
	clients map[types.SessionID]*Client

	ctx    context.Context
	cancel context.CancelFunc
}

// Client is one websocket connection bound to one chat session.
type Client struct {
	conn    *websocket.Conn
	session *chat.Session

	// Buffered channel of outbound messages
	send chan []byte
	// Chat messages processed one by one
	inbox chan string

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func NewHub(ctx context.Context) *Hub {
	ctx, cancel := context.WithCancel(ctx)
	return &Hub{
		clients: make(map[types.SessionID]*Client),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// NewClient binds conn to ssn. The client lives until the connection or the hub is closed.
func (h *Hub) NewClient(ctx context.Context, conn *websocket.Conn, ssn *chat.Session) *Client {
	// Keep the request logger but detach from the request lifetime.
	ctx = logging.With(h.ctx, logging.From(ctx).With("session_id", ssn.ID))
	ctx, cancel := context.WithCancel(ctx)

	return &Client{
		conn:    conn,
		session: ssn,
		send:    make(chan []byte, clientSendBufferSize),
		inbox:   make(chan string, clientInboxSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.session.ID] = client

	logging.From(client.ctx).Info("Client registered", "total_clients", len(h.clients))
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if h.clients[client.session.ID] == client {
		delete(h.clients, client.session.ID)
	}
	h.mu.Unlock()

	client.close()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() error {
	h.cancel()

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[types.SessionID]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	return nil
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	close(c.send)
}

// Send queues resp. It reports false when the client is closed or its queue is full.
func (c *Client) Send(resp *websocket_model.ChatResponse) bool {
	data, err := resp.ToBytes()
	if err != nil {
		logging.From(c.ctx).Error("failed to encode websocket response", logging.ErrAttr(err))
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		logging.From(c.ctx).Warn("client send buffer is full, dropping message", "type", resp.Type)
		return false
	}
}

func (c *Client) SessionID() types.SessionID {
	return c.session.ID
}
