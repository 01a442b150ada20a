// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package search

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/searchgate/internal/logging"
)

// ResponseHeader opens every engine response.
type ResponseHeader struct {
	Status int               `json:"status"`
	QTime  int64             `json:"QTime"`
	Params map[string]string `json:"params,omitempty"`
}

// ErrorBody is the error member of a failed engine response.
type ErrorBody struct {
	Msg  string `json:"msg"`
	Code int    `json:"code"`
}

type errorResponse struct {
	ResponseHeader ResponseHeader `json:"responseHeader"`
	Error          ErrorBody      `json:"error"`
}

func header(start time.Time) ResponseHeader {
	return ResponseHeader{QTime: time.Since(start).Milliseconds()}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Failed to encode engine response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, start time.Time, status int, msg string) {
	h := header(start)
	h.Status = status
	writeJSON(w, r, status, errorResponse{
		ResponseHeader: h,
		Error:          ErrorBody{Msg: msg, Code: status},
	})
}
