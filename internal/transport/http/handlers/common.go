package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/avelichko/matchbook/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeForbidden(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func writeUnavailable(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{Code: code, Message: message})
}

func matchIDParam(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "matchID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
