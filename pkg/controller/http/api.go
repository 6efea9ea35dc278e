package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/domain/types"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"github.com/secmon-lab/bqchat/pkg/utils/msg"
)

type createSessionRequest struct {
	Profile string `json:"profile"`
}

type sessionResponse struct {
	Session  *chat.Session `json:"session"`
	Messages []string      `json:"messages"`
}

type postMessageRequest struct {
	Content string `json:"content"`
}

type postMessageResponse struct {
	SessionID types.SessionID `json:"session_id"`
	Messages  []string        `json:"messages"`
	Traces    []string        `json:"traces"`
}

type messagesResponse struct {
	Messages []*chat.Message `json:"messages"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.From(r.Context()).Warn("failed to write response", logging.ErrAttr(err))
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(err, "invalid request body", goerr.T(errs.TagValidation))
	}
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func profilesHandler(uc interfaces.ChatUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]any{"profiles": uc.Profiles()})
	}
}

func createSessionHandler(uc interfaces.ChatUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if r.ContentLength != 0 {
			if err := decodeBody(r, &req); err != nil {
				handleError(w, r, err)
				return
			}
		}

		ssn, err := uc.NewSession(r.Context(), req.Profile)
		if err != nil {
			handleError(w, r, err)
			return
		}

		var collector msg.Collector
		uc.Welcome(collector.With(r.Context()), ssn)

		writeJSON(w, r, http.StatusCreated, &sessionResponse{
			Session:  ssn,
			Messages: collector.Messages(),
		})
	}
}

func postMessageHandler(uc interfaces.ChatUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := types.SessionID(chi.URLParam(r, "sessionID"))

		var req postMessageRequest
		if err := decodeBody(r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		if req.Content == "" {
			handleError(w, r, goerr.New("content is required", goerr.T(errs.TagValidation)))
			return
		}

		ssn, err := uc.RestoreSession(ctx, sessionID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		var collector msg.Collector
		if err := uc.Chat(collector.With(ctx), ssn, req.Content); err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, &postMessageResponse{
			SessionID: ssn.ID,
			Messages:  collector.Messages(),
			Traces:    collector.Traces(),
		})
	}
}

func getMessagesHandler(uc interfaces.ChatUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := types.SessionID(chi.URLParam(r, "sessionID"))

		if _, err := uc.Session(ctx, sessionID); err != nil {
			handleError(w, r, err)
			return
		}

		messages, err := uc.Messages(ctx, sessionID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		if messages == nil {
			messages = []*chat.Message{}
		}

		writeJSON(w, r, http.StatusOK, &messagesResponse{Messages: messages})
	}
}

func deleteSessionHandler(uc interfaces.ChatUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := types.SessionID(chi.URLParam(r, "sessionID"))

		ssn, err := uc.Session(ctx, sessionID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		uc.CloseSession(ctx, ssn)

		w.WriteHeader(http.StatusNoContent)
	}
}
