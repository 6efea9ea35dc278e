package errs

import "github.com/m-mizutani/goerr/v2"

var (
	TagNotFound   = goerr.NewTag("not_found")
	TagValidation = goerr.NewTag("validation")

	TagInternal = goerr.NewTag("internal")
	TagExternal = goerr.NewTag("external")
	TagDatabase = goerr.NewTag("database")
	TagLLMError = goerr.NewTag("llm_error")
)

var (
	SessionIDKey  = goerr.NewTypedKey[string]("session_id")
	TableIDKey    = goerr.NewTypedKey[string]("table_id")
	QueryKey      = goerr.NewTypedKey[string]("query")
	RepositoryKey = goerr.NewTypedKey[string]("repository")
	ProfileKey    = goerr.NewTypedKey[string]("profile")
)
