package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	server "github.com/secmon-lab/bqchat/pkg/controller/http"
	websocket_ctrl "github.com/secmon-lab/bqchat/pkg/controller/websocket"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/secmon-lab/bqchat/pkg/usecase"
)

type sessionBody struct {
	Session  chat.Session `json:"session"`
	Messages []string     `json:"messages"`
}

type postBody struct {
	SessionID string   `json:"session_id"`
	Messages  []string `json:"messages"`
	Traces    []string `json:"traces"`
}

func newServer(t *testing.T) *server.Server {
	t.Helper()
	s, _ := newServerWithUseCases(t)
	return s
}

func newServerWithUseCases(t *testing.T) (*server.Server, *usecase.UseCases) {
	t.Helper()
	uc := usecase.New(usecase.WithProfiles([]*chat.Profile{
		{Name: "Echo", Mode: chat.ModeEcho, Welcome: "ready"},
		{Name: "Direct", Mode: chat.ModeDirect},
	}))
	hub := websocket_ctrl.NewHub(t.Context())
	t.Cleanup(func() { gt.NoError(t, hub.Close()) })
	return server.New(uc, server.WithWebSocketHandler(websocket_ctrl.NewHandler(hub, uc))), uc
}

func do(t *testing.T, s *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(t, newServer(t), http.MethodGet, "/health", "")
	gt.V(t, w.Code).Equal(http.StatusOK)
	gt.S(t, w.Body.String()).Contains(`"status":"ok"`)
}

func TestProfiles(t *testing.T) {
	w := do(t, newServer(t), http.MethodGet, "/api/profiles", "")
	gt.V(t, w.Code).Equal(http.StatusOK)
	gt.S(t, w.Body.String()).Contains(`"name":"Echo"`)
}

func TestSessionAPI(t *testing.T) {
	s := newServer(t)

	w := do(t, s, http.MethodPost, "/api/sessions", `{"profile":"Echo"}`)
	gt.V(t, w.Code).Equal(http.StatusCreated).Required()

	var created sessionBody
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &created)).Required()
	gt.V(t, created.Session.Mode).Equal(chat.ModeEcho)
	gt.V(t, created.Messages).Equal([]string{"ready"})

	base := "/api/sessions/" + created.Session.ID.String() + "/messages"

	t.Run("post message", func(t *testing.T) {
		w := do(t, s, http.MethodPost, base, `{"content":"hello"}`)
		gt.V(t, w.Code).Equal(http.StatusOK).Required()

		var resp postBody
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)).Required()
		gt.V(t, resp.SessionID).Equal(created.Session.ID.String())
		gt.V(t, resp.Messages).Equal([]string{"You said: hello"})
	})

	t.Run("empty content", func(t *testing.T) {
		w := do(t, s, http.MethodPost, base, `{"content":""}`)
		gt.V(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("broken body", func(t *testing.T) {
		w := do(t, s, http.MethodPost, base, `{`)
		gt.V(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("history", func(t *testing.T) {
		w := do(t, s, http.MethodGet, base, "")
		gt.V(t, w.Code).Equal(http.StatusOK).Required()

		var resp struct {
			Messages []chat.Message `json:"messages"`
		}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)).Required()
		gt.A(t, resp.Messages).Length(3).Required()
		gt.V(t, resp.Messages[0].Content).Equal("ready")
		gt.V(t, resp.Messages[2].Content).Equal("You said: hello")
	})
}

func TestSessionAPIErrors(t *testing.T) {
	s := newServer(t)

	t.Run("unknown profile", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/sessions", `{"profile":"Nobody"}`)
		gt.V(t, w.Code).Equal(http.StatusNotFound)
	})

	t.Run("profile needs LLM", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/sessions", `{"profile":"Direct"}`)
		gt.V(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown session", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/sessions/missing/messages", `{"content":"hi"}`)
		gt.V(t, w.Code).Equal(http.StatusNotFound)
	})

	t.Run("default profile without body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewReader(nil))
		w := httptest.NewRecorder()
		s.ServeHTTP(w, req)
		gt.V(t, w.Code).Equal(http.StatusCreated)
	})
}

func TestDeleteSession(t *testing.T) {
	s, uc := newServerWithUseCases(t)

	w := do(t, s, http.MethodPost, "/api/sessions", `{"profile":"Echo"}`)
	gt.V(t, w.Code).Equal(http.StatusCreated).Required()
	var created sessionBody
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &created)).Required()
	gt.V(t, uc.ActiveSessions()).Equal(1)

	path := "/api/sessions/" + created.Session.ID.String()

	w = do(t, s, http.MethodDelete, path, "")
	gt.V(t, w.Code).Equal(http.StatusNoContent)
	gt.V(t, uc.ActiveSessions()).Equal(0)

	t.Run("messages are read without a runtime", func(t *testing.T) {
		w := do(t, s, http.MethodGet, path+"/messages", "")
		gt.V(t, w.Code).Equal(http.StatusOK)
		gt.S(t, w.Body.String()).Contains(`"ready"`)
		gt.V(t, uc.ActiveSessions()).Equal(0)
	})

	t.Run("posting reopens the session", func(t *testing.T) {
		w := do(t, s, http.MethodPost, path+"/messages", `{"content":"again"}`)
		gt.V(t, w.Code).Equal(http.StatusOK)
		gt.S(t, w.Body.String()).Contains("You said: again")
		gt.V(t, uc.ActiveSessions()).Equal(1)
	})

	t.Run("unknown session", func(t *testing.T) {
		w := do(t, s, http.MethodDelete, "/api/sessions/missing", "")
		gt.V(t, w.Code).Equal(http.StatusNotFound)
	})
}
