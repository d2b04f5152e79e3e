package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// errorBody maps an error onto the JSON shape the front-ends read: "error" is
// always present; "stage", "missing" and "detail" appear when they apply.
func errorBody(err error) map[string]any {
	body := map[string]any{
		"ok":    false,
		"error": apperrors.MessageOf(err),
		"code":  apperrors.KindOf(err),
	}

	var cfgErr *apperrors.ConfigurationError
	var upstream *apperrors.UpstreamError
	var parseErr *apperrors.ParseError
	var validation *apperrors.ValidationError
	switch {
	case errors.As(err, &cfgErr):
		body["stage"] = "config"
		body["missing"] = cfgErr.Missing
	case errors.As(err, &upstream):
		body["stage"] = "upstream"
		body["detail"] = upstream.Body
	case errors.As(err, &parseErr):
		body["detail"] = parseErr.Excerpt
	case errors.As(err, &validation):
		if fields, ok := validation.Context["fields"]; ok {
			body["fields"] = fields
		}
	}
	return body
}

func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.StatusOf(err)
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}

	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("code", apperrors.KindOf(err)),
		zap.Error(err),
	}
	if status >= 500 {
		h.logger.Error("Request failed", fields...)
	} else {
		h.logger.Info("Request rejected", fields...)
	}

	writeJSON(w, status, errorBody(err))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	if err := dec.Decode(dest); err != nil {
		verr := apperrors.NewValidationError("invalid JSON body", "body", nil)
		verr.Cause = err
		return verr
	}
	return nil
}
