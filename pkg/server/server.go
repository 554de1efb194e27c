// Package server exposes the scan service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/rajivksingh13/darbiter/pkg/attest"
	"github.com/rajivksingh13/darbiter/pkg/config"
	"github.com/rajivksingh13/darbiter/pkg/report"
	"github.com/rajivksingh13/darbiter/pkg/rules"
	"github.com/rajivksingh13/darbiter/pkg/scan"
)

// Server routes the HTTP API to the scan service.
type Server struct {
	service scan.Service
	logger  *zap.SugaredLogger
	cfg     config.HTTPServerConfig
	signer  attest.Signer
	mux     *http.ServeMux
	http    *http.Server
}

// Option configures the server.
type Option func(*Server)

// WithSigner makes the certify endpoint return signed certificates.
func WithSigner(signer attest.Signer) Option {
	return func(s *Server) {
		s.signer = signer
	}
}

// New builds the server and its routes.
func New(service scan.Service, logger *zap.SugaredLogger, cfg config.HTTPServerConfig, opts ...Option) *Server {
	s := &Server{
		service: service,
		logger:  logger,
		cfg:     cfg,
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      chain(s.mux, requestLogging(logger), cors()),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/scan/path", s.handleScanPath)
	s.mux.HandleFunc("POST /api/scan/text", s.handleScanText)
	s.mux.HandleFunc("POST /api/scan/files", s.handleScanFiles)
	s.mux.HandleFunc("GET /api/scan/{scanId}", s.handleGetScan)
	s.mux.HandleFunc("GET /api/rulesets", s.handleRulesets)
	s.mux.HandleFunc("GET /api/report/{scanId}", s.handleReport)
	s.mux.HandleFunc("GET /api/certify/{scanId}", s.handleCertify)
	s.mux.HandleFunc("POST /api/certify/verify", s.handleVerifyCertificate)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the routed handler with middleware applied, for tests and
// embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Infow("http server listening", "addr", s.cfg.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleScanPath(w http.ResponseWriter, r *http.Request) {
	var req scan.PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		http.Error(w, "missing path", http.StatusBadRequest)
		return
	}
	result, err := s.service.ScanPath(r.Context(), req)
	if err != nil {
		s.writeScanError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleScanText(w http.ResponseWriter, r *http.Request) {
	var req scan.TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "missing content", http.StatusBadRequest)
		return
	}
	result, err := s.service.ScanText(r.Context(), req)
	if err != nil {
		s.writeScanError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleScanFiles(w http.ResponseWriter, r *http.Request) {
	maxUpload := s.cfg.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		http.Error(w, "missing files", http.StatusBadRequest)
		return
	}

	req := scan.FileSetRequest{
		ApprovedForAI: r.FormValue("approvedForAi") == "true",
		Ruleset:       r.FormValue("ruleset"),
		Usage:         scan.Usage(r.FormValue("usage")),
		Categories:    parseCategories(r.FormValue("categories")),
	}
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, fmt.Sprintf("reading upload %s", fh.Filename), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, fmt.Sprintf("reading upload %s", fh.Filename), http.StatusBadRequest)
			return
		}
		req.Files = append(req.Files, scan.FilePayload{Name: fh.Filename, Data: data})
	}

	result, err := s.service.ScanFiles(r.Context(), req)
	if err != nil {
		s.writeScanError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	result, ok := s.service.Find(r.PathValue("scanId"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRulesets(w http.ResponseWriter, r *http.Request) {
	infos, err := s.service.Rulesets()
	if err != nil {
		s.writeScanError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	result, ok := s.service.Find(r.PathValue("scanId"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	html, err := report.ToHTML(result)
	if err != nil {
		s.logger.Errorw("rendering report", "scan_id", result.ScanID, "error", err)
		http.Error(w, "rendering report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, html)
}

func (s *Server) handleCertify(w http.ResponseWriter, r *http.Request) {
	cert, ok := s.service.Certify(r.PathValue("scanId"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if s.signer == nil {
		if r.URL.Query().Get("format") == "token" {
			http.Error(w, "certificate signing is not configured", http.StatusBadRequest)
			return
		}
		s.writeJSON(w, http.StatusOK, cert)
		return
	}

	signed, err := attest.Attach(s.signer, cert)
	if err != nil {
		s.logger.Errorw("signing certificate", "scan_id", cert.ScanID, "error", err)
		http.Error(w, "signing certificate", http.StatusInternalServerError)
		return
	}
	if r.URL.Query().Get("format") == "token" {
		token, err := attest.Encode(signed)
		if err != nil {
			s.logger.Errorw("encoding certificate token", "scan_id", cert.ScanID, "error", err)
			http.Error(w, "encoding certificate token", http.StatusInternalServerError)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
		return
	}
	s.writeJSON(w, http.StatusOK, signed)
}

// handleVerifyCertificate checks a previously issued certificate token. A
// decode failure or signature mismatch reports valid=false rather than an
// error, so callers can treat the response uniformly.
func (s *Server) handleVerifyCertificate(w http.ResponseWriter, r *http.Request) {
	if s.signer == nil {
		http.Error(w, "certificate signing is not configured", http.StatusBadRequest)
		return
	}
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		http.Error(w, "missing token", http.StatusBadRequest)
		return
	}

	signed, err := attest.Decode(req.Token)
	if err != nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"valid": false, "reason": "malformed token"})
		return
	}
	if err := s.signer.Verify(&signed.Certificate, signed.Signature); err != nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"valid": false, "reason": "signature mismatch"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"valid": true, "certificate": signed.Certificate})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeScanError maps request-shape problems to 400 and everything else,
// including filesystem failures, to 500.
func (s *Server) writeScanError(w http.ResponseWriter, err error) {
	var cfgErr *rules.ConfigError
	if errors.As(err, &cfgErr) {
		http.Error(w, cfgErr.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Errorw("scan failed", "error", err)
	http.Error(w, "scan failed", http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorw("encoding response", "error", err)
	}
}

// parseCategories splits a comma-separated category list. Whitespace is
// trimmed and values are upper-cased; validity is checked by the service.
func parseCategories(raw string) []rules.Category {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var categories []rules.Category
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		categories = append(categories, rules.Category(strings.ToUpper(entry)))
	}
	return categories
}
