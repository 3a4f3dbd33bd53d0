package api

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/codeGROOVE-dev/tzapi/pkg/tzconvert"
)

// ConvertResponse is the success body of the convert endpoint.
type ConvertResponse struct {
	ConvertedDate string `json:"converted_date"`
}

// DateDiffResponse is the success body of the datediff endpoint.
type DateDiffResponse struct {
	SecondsDifference int64 `json:"seconds_difference"`
}

// ErrorResponse is the 400 body of both POST endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleNow(w http.ResponseWriter, r *http.Request) {
	zone := strings.TrimPrefix(r.URL.Path, "/")

	reading, err := s.engine.Now(zone)
	if err != nil {
		s.logger.Info("Current time rejected",
			"request_id", w.Header().Get("X-Request-ID"),
			"tz", zone,
			"error", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		s.write(w, []byte("Unknown timezone"))
		return
	}

	// html/template would escape the '+' of the offset; only the label
	// carries caller input.
	page := fmt.Sprintf("<html><body><h1>Current time in %s: %s</h1></body></html>",
		html.EscapeString(reading.Label), reading.Formatted())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.write(w, []byte(page))
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	req, err := decodeConvert(w, r)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	converted, err := s.engine.Convert(req)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ConvertResponse{ConvertedDate: tzconvert.Display(converted)})
}

func (s *Server) handleDateDiff(w http.ResponseWriter, r *http.Request) {
	req, err := decodeDateDiff(w, r)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	diff, err := s.engine.Diff(req)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, DateDiffResponse{SecondsDifference: diff})
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	s.write(w, []byte("404 Not Found"))
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.logger.Info("Request rejected",
		"request_id", w.Header().Get("X-Request-ID"),
		"kind", tzconvert.KindOf(err).String(),
		"error", err)
	s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response",
			"request_id", w.Header().Get("X-Request-ID"),
			"error", err)
	}
}

func (s *Server) write(w http.ResponseWriter, b []byte) {
	if _, err := w.Write(b); err != nil {
		s.logger.Debug("Failed to write response",
			"request_id", w.Header().Get("X-Request-ID"),
			"error", err)
	}
}
