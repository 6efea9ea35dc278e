package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
)

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.From(r.Context())

	switch {
	case goerr.HasTag(err, errs.TagNotFound):
		logger.Warn("Not Found", "error", err)
		writeError(w, r, http.StatusNotFound, err.Error())

	case goerr.HasTag(err, errs.TagValidation):
		logger.Warn("Bad Request", "error", err)
		writeError(w, r, http.StatusBadRequest, err.Error())

	case goerr.HasTag(err, errs.TagExternal), goerr.HasTag(err, errs.TagLLMError):
		logger.Error("External Service Error", "error", err)
		writeError(w, r, http.StatusBadGateway, err.Error())

	default:
		errs.Handle(r.Context(), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, map[string]string{"error": message})
}
