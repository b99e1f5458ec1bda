package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

const contentTypeMsgpack = "application/msgpack"

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeNegotiated writes msgpack when the client asks for it and JSON
// otherwise.
func (s *Server) writeNegotiated(w http.ResponseWriter, r *http.Request, data any) {
	if !strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack) {
		s.writeJSON(w, http.StatusOK, data)
		return
	}

	b, err := msgpack.Marshal(data)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode msgpack response")
		s.writeError(w, http.StatusInternalServerError, "encode failed")
		return
	}
	w.Header().Set("Content-Type", contentTypeMsgpack)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
