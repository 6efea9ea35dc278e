package websocket

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	websocket_model "github.com/secmon-lab/bqchat/pkg/domain/model/websocket"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"github.com/secmon-lab/bqchat/pkg/utils/msg"
)

// Handler serves chat over websocket. Each connection starts a new chat session.
type Handler struct {
	hub      *Hub
	useCases interfaces.ChatUseCases
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, useCases interfaces.ChatUseCases) *Handler {
	return &Handler{
		hub:      hub,
		useCases: useCases,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10
)

// HandleChat upgrades the request and starts a session with the profile
// given by the `profile` query parameter.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.From(ctx)

	profile := r.URL.Query().Get("profile")
	ssn, err := h.useCases.NewSession(ctx, profile)
	if err != nil {
		switch {
		case goerr.HasTag(err, errs.TagNotFound):
			logger.Warn("unknown chat profile", "profile", profile)
			http.Error(w, err.Error(), http.StatusNotFound)
		case goerr.HasTag(err, errs.TagValidation):
			logger.Warn("chat profile is not available", "profile", profile, logging.ErrAttr(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			errs.Handle(ctx, err)
			http.Error(w, "Failed to start chat session", http.StatusInternalServerError)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("failed to upgrade connection",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
			"session_id", ssn.ID)
		h.useCases.CloseSession(ctx, ssn)
		// Don't call http.Error here as upgrader may have already written headers
		return
	}

	client := h.hub.NewClient(ctx, conn, ssn)
	h.hub.Register(client)

	logging.From(client.ctx).Info("WebSocket connection established", "profile", ssn.Profile, "mode", ssn.Mode)

	go h.writePump(client)
	go h.chatWorker(client)
	go h.readPump(client)

	client.Send(websocket_model.NewSessionResponse(client.ctx, ssn.ID.String()))
	h.useCases.Welcome(h.clientContext(client), ssn)
}

// clientContext routes msg.Notify and msg.Trace output to the client.
func (h *Handler) clientContext(client *Client) context.Context {
	return msg.With(client.ctx,
		func(ctx context.Context, message string) {
			client.Send(websocket_model.NewChatResponse(ctx, websocket_model.TypeMessage, message))
		},
		func(ctx context.Context, message string) {
			client.Send(websocket_model.NewChatResponse(ctx, websocket_model.TypeTrace, message))
		},
	)
}

// readPump pumps messages from the websocket connection to the chat worker
func (h *Handler) readPump(client *Client) {
	logger := logging.From(client.ctx)

	defer func() {
		h.hub.Unregister(client)
		if err := client.conn.Close(); err != nil {
			logger.Debug("failed to close connection in readPump", "error", err)
		}
	}()

	client.conn.SetReadLimit(maxMessageSize)
	if err := client.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Error("failed to set read deadline", "error", err)
		return
	}
	client.conn.SetPongHandler(func(string) error {
		if err := client.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, messageBytes, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("unexpected WebSocket close", "error", err)
			}
			return
		}

		var chatMessage websocket_model.ChatMessage
		if err := chatMessage.FromBytes(messageBytes); err != nil {
			logger.Warn("invalid message format", "error", err)
			client.Send(websocket_model.NewChatResponse(client.ctx, websocket_model.TypeError, "Invalid message format"))
			continue
		}

		if !chatMessage.IsValidMessageType() {
			logger.Warn("invalid message type", "type", chatMessage.Type)
			client.Send(websocket_model.NewChatResponse(client.ctx, websocket_model.TypeError, "Invalid message type"))
			continue
		}

		switch chatMessage.Type {
		case websocket_model.TypePing:
			client.Send(websocket_model.NewChatResponse(client.ctx, websocket_model.TypePong, ""))

		case websocket_model.TypeMessage:
			select {
			case client.inbox <- chatMessage.Content:
			default:
				logger.Warn("chat inbox is full, rejecting message")
				client.Send(websocket_model.NewChatResponse(client.ctx, websocket_model.TypeError, "Too many pending messages"))
			}
		}
	}
}

// chatWorker answers chat messages in arrival order. It ends the session
// when the client goes away.
func (h *Handler) chatWorker(client *Client) {
	ctx := h.clientContext(client)
	logger := logging.From(ctx)

	defer h.useCases.CloseSession(context.WithoutCancel(ctx), client.session)

	for {
		select {
		case <-client.ctx.Done():
			return

		case content := <-client.inbox:
			logger.Debug("Processing chat message", "content", content)
			if err := h.useCases.Chat(ctx, client.session, content); err != nil {
				errs.Handle(ctx, err)
				client.Send(websocket_model.NewChatResponse(ctx, websocket_model.TypeError, "Failed to process message"))
			}
		}
	}
}

// writePump pumps messages from the client queue to the websocket connection
func (h *Handler) writePump(client *Client) {
	logger := logging.From(client.ctx)
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := client.conn.Close(); err != nil {
			logger.Debug("failed to close connection in writePump", "error", err)
		}
	}()

	for {
		select {
		case message, ok := <-client.send:
			if err := client.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Error("failed to set write deadline", "error", err)
				return
			}
			if !ok {
				// The client was closed
				if err := client.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logger.Debug("failed to write close message", "error", err)
				}
				return
			}

			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := client.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Error("failed to set write deadline for ping", "error", err)
				return
			}
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
