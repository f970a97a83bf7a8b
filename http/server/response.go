package server

import (
	"encoding/json"
	"net/http"

	"github.com/gclaussn/go-bpmn-history/http/common"
	"github.com/rs/zerolog"
)

func encodeJSONResponseBody(w http.ResponseWriter, r *http.Request, v any, statusCode int) {
	w.Header().Set(common.HeaderContentType, common.ContentTypeJson)
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("failed to create JSON response body")
	}
}

func encodeTextResponseBody(w http.ResponseWriter, r *http.Request, s string) {
	w.Header().Set(common.HeaderContentType, common.ContentTypeText+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(s)); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("failed to write text response body")
	}
}
