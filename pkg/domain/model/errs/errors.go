package errs

import (
	"errors"
)

var (
	ErrClientNotInitialized = errors.New("bigquery client not initialized")
	ErrSessionNotFound      = errors.New("chat session not found")
	ErrProfileNotFound      = errors.New("chat profile not found")
	ErrLLMNotConfigured     = errors.New("llm client is not configured")
)
