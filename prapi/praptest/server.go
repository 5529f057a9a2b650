// Package praptest runs a fake PhotoRoom API for tests.
package praptest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Request is what the fake server saw for one call
type Request struct {
	Method   string
	Path     string
	Fields   map[string]string
	FileName string
	FileType string
	FileData []byte
}

// Server fakes the segment, edit and account endpoints.
//
// Image names steer the response: a name containing "fail" gets a 402 JSON
// error, "broken" gets a 500 with a plain text body and "human" gets an
// uncertainty score of -1.
type Server struct {
	*httptest.Server
	APIKey       string
	Available    int64
	Subscription int64

	mu       sync.Mutex
	requests []Request
}

// NewServer starts a fake API accepting key
func NewServer(key string) *Server {
	s := &Server{APIKey: key, Available: 120, Subscription: 500}

	r := chi.NewRouter()
	r.Use(s.requireKey)
	r.Post("/v1/segment", s.segment)
	r.Post("/v2/edit", s.edit)
	r.Get("/v1/account", s.account)

	s.Server = httptest.NewServer(r)
	return s
}

// Requests returns the calls received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) record(req Request) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") == s.APIKey {
			next.ServeHTTP(w, r)
			return
		}
		s.record(Request{Method: r.Method, Path: r.URL.Path})
		if r.URL.Path == "/v1/account" {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error": map[string]any{"message": "Invalid API key"},
			})
			return
		}
		writeJSON(w, http.StatusForbidden, map[string]any{
			"detail":      "Invalid API key",
			"status_code": http.StatusForbidden,
			"type":        "invalid_api_key",
		})
	})
}

// readForm parses a multipart request, taking the image from fileField
func readForm(r *http.Request, fileField string) (Request, error) {
	req := Request{Method: r.Method, Path: r.URL.Path, Fields: make(map[string]string)}
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		return req, err
	}
	for name, values := range r.MultipartForm.Value {
		req.Fields[name] = values[0]
	}

	file, header, err := r.FormFile(fileField)
	if err != nil {
		return req, nil // URL-based request
	}
	defer file.Close()
	req.FileName = header.Filename
	req.FileType = header.Header.Get("Content-Type")
	req.FileData, err = io.ReadAll(file)
	return req, err
}

// fail writes the error a steering name asks for, reporting whether it did
func fail(w http.ResponseWriter, name string) bool {
	switch {
	case strings.Contains(name, "fail"):
		writeJSON(w, http.StatusPaymentRequired, map[string]any{
			"detail":      "Not enough credits",
			"status_code": http.StatusPaymentRequired,
			"type":        "payment_required",
		})
		return true
	case strings.Contains(name, "broken"):
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "upstream exploded")
		return true
	}
	return false
}

func (s *Server) segment(w http.ResponseWriter, r *http.Request) {
	req, err := readForm(r, "image_file")
	s.record(req)
	if err != nil || req.FileName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"detail":      "image_file is required",
			"status_code": http.StatusBadRequest,
			"type":        "invalid_request_error",
		})
		return
	}
	if fail(w, req.FileName) {
		return
	}

	score := "0.12"
	if strings.Contains(req.FileName, "human") {
		score = "-1"
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("x-uncertainty-score", score)
	fmt.Fprintf(w, "segmented:%s:%s", req.FileName, req.Fields["format"])
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	req, err := readForm(r, "imageFile")
	s.record(req)
	source := req.FileName
	if source == "" {
		source = req.Fields["imageUrl"]
	}
	if err != nil || source == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"detail":      "imageFile or imageUrl is required",
				"status_code": http.StatusBadRequest,
				"type":        "invalid_request_error",
			},
		})
		return
	}
	if fail(w, source) {
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("pr-ai-background-seed", "42")
	w.Header().Set("pr-edit-further-url", "https://example.test/edit/1")
	w.Header().Set("pr-texts-detected", "0")
	fmt.Fprintf(w, "edited:%s", source)
}

func (s *Server) account(w http.ResponseWriter, r *http.Request) {
	s.record(Request{Method: r.Method, Path: r.URL.Path})
	writeJSON(w, http.StatusOK, map[string]any{
		"credits": map[string]any{
			"available":    s.Available,
			"subscription": s.Subscription,
		},
	})
}
