package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/domain/types"
	"github.com/secmon-lab/bqchat/pkg/utils/safe"
)

const SchemaVersion = "v1"

// Service persists LLM conversation history of chat sessions.
type Service struct {
	prefix        string
	storageClient interfaces.StorageClient
}

func New(storageClient interfaces.StorageClient, opts ...Option) *Service {
	s := &Service{storageClient: storageClient}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Option func(*Service)

func WithPrefix(prefix string) Option {
	return func(s *Service) {
		s.prefix = prefix
	}
}

func pathToHistory(prefix string, sessionID types.SessionID) string {
	return fmt.Sprintf("%s%s/session/%s/history.json", prefix, SchemaVersion, sessionID)
}

func (s *Service) PutHistory(ctx context.Context, sessionID types.SessionID, history *gollem.History) error {
	path := pathToHistory(s.prefix, sessionID)
	w := s.storageClient.PutObject(ctx, path)

	if err := json.NewEncoder(w).Encode(history); err != nil {
		safe.Close(ctx, w)
		return goerr.Wrap(err, "failed to encode history",
			goerr.TV(errs.SessionIDKey, sessionID.String()),
			goerr.V("path", path))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to save history",
			goerr.TV(errs.SessionIDKey, sessionID.String()),
			goerr.V("path", path),
			goerr.T(errs.TagExternal))
	}
	return nil
}

// GetHistory returns nil without error when the session has no stored history.
func (s *Service) GetHistory(ctx context.Context, sessionID types.SessionID) (*gollem.History, error) {
	path := pathToHistory(s.prefix, sessionID)

	r, err := s.storageClient.GetObject(ctx, path)
	if err != nil {
		if goerr.HasTag(err, errs.TagNotFound) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get history",
			goerr.TV(errs.SessionIDKey, sessionID.String()),
			goerr.V("path", path))
	}
	defer safe.Close(ctx, r)

	var history gollem.History
	if err := json.NewDecoder(r).Decode(&history); err != nil {
		opts := []goerr.Option{
			goerr.TV(errs.SessionIDKey, sessionID.String()),
			goerr.V("path", path),
		}
		// Written by another gollem release. The caller may start over.
		if errors.Is(err, gollem.ErrHistoryVersionMismatch) {
			opts = append(opts, goerr.T(errs.TagValidation))
		}
		return nil, goerr.Wrap(err, "failed to decode history", opts...)
	}
	return &history, nil
}
