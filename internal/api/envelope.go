// Package api exposes the back-office HTTP surface. Every response body is
// wrapped in the envelope {cod_retorno, mensagem, data}: cod_retorno 0 means
// success with the payload in data, 1 means an application failure with the
// message in mensagem. Application failures ride HTTP 200; only transport
// problems (panics, unknown routes) produce non-enveloped responses.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// envelope is the uniform response wrapper.
type envelope struct {
	Code    int     `json:"cod_retorno"`
	Message *string `json:"mensagem"`
	Data    any     `json:"data"`
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

// respondData writes a success envelope around data.
func respondData(w http.ResponseWriter, r *http.Request, data any) {
	writeEnvelope(w, r, envelope{Code: 0, Data: data})
}

// respondError writes an application failure envelope carrying msg verbatim.
func respondError(w http.ResponseWriter, r *http.Request, msg string) {
	zctx.From(r.Context()).Warn("request rejected", zap.String("reason", msg))
	writeEnvelope(w, r, envelope{Code: 1, Message: &msg})
}

// respondInternal logs the unexpected error and writes a generic failure
// envelope, never leaking internals to the caller.
func respondInternal(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("internal error", zap.Error(err))
	msg := "Internal server error"
	writeEnvelope(w, r, envelope{Code: 1, Message: &msg})
}
