// Package syncserver is the remote authority: it keeps one uploaded ledger
// document with its version and answers the sync client's checks.
package syncserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/duoledger/internal/auth"
	"github.com/mmynk/duoledger/internal/metrics"
	"github.com/mmynk/duoledger/internal/middleware"
)

// maxUploadBytes bounds an uploaded document.
const maxUploadBytes = 32 << 20

// Server serves the sync routes.
type Server struct {
	files    *FileStore
	verifier *auth.TokenVerifier
	metrics  *metrics.Server
	gatherer prometheus.Gatherer
	now      func() time.Time
}

// New creates a Server. gatherer backs the /metrics endpoint.
func New(files *FileStore, verifier *auth.TokenVerifier, m *metrics.Server, gatherer prometheus.Gatherer) *Server {
	return &Server{
		files:    files,
		verifier: verifier,
		metrics:  m,
		gatherer: gatherer,
		now:      time.Now,
	}
}

// Handler returns the routed and instrumented HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	requireToken := middleware.RequireToken(s.verifier)

	public := func(pattern, route string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Instrument(s.metrics, route)(h))
	}
	protected := func(pattern, route string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Instrument(s.metrics, route)(requireToken(h)))
	}

	public("GET /status", "/status", s.handleStatus)
	protected("GET /check", "/check", s.handleStatus)
	protected("GET /last-sync", "/last-sync", s.handleLastSync)
	protected("GET /sync-state/{version}", "/sync-state", s.handleSyncState)
	protected("GET /download", "/download", s.handleDownload)
	protected("POST /upload/{version}", "/upload", s.handleUpload)
	protected("DELETE /reset", "/reset", s.handleReset)

	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return middleware.Logging(mux)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, middleware.Message("ok"))
}

func (s *Server) handleLastSync(w http.ResponseWriter, r *http.Request) {
	status, err := s.files.Status()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int64{
		"timestamp": status.LastSync,
		"version":   status.Version,
	})
}

func (s *Server) handleSyncState(w http.ResponseWriter, r *http.Request) {
	version, ok := parseVersion(w, r)
	if !ok {
		return
	}

	status, err := s.files.Status()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	newest := "server"
	if status.Version < version {
		newest = "client"
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"whoHasNewest": newest})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	doc, err := s.files.ReadData()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	version, ok := parseVersion(w, r)
	if !ok {
		return
	}

	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.Message(err.Error()))
		return
	}

	status, err := s.files.WriteData(version, doc, s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	slog.Info("Document uploaded",
		"version", status.Version,
		"bytes", len(doc),
		"request_id", middleware.RequestID(r.Context()),
	)
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "file uploaded",
		"timestamp": status.LastSync,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.files.Reset(); err != nil {
		s.fail(w, r, err)
		return
	}
	slog.Info("Sync data reset", "request_id", middleware.RequestID(r.Context()))
	middleware.WriteJSON(w, http.StatusOK, middleware.Message("reset with success"))
}

// fail maps file store errors to responses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInUse), errors.Is(err, ErrNoData), errors.Is(err, ErrInvalidDocument):
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.Message(err.Error()))
	default:
		slog.Error("Sync request failed",
			"path", r.URL.Path,
			"request_id", middleware.RequestID(r.Context()),
			"error", err,
		)
		middleware.WriteJSON(w, http.StatusInternalServerError, middleware.Message(err.Error()))
	}
}

func parseVersion(w http.ResponseWriter, r *http.Request) (int64, bool) {
	version, err := strconv.ParseInt(r.PathValue("version"), 10, 64)
	if err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, middleware.Message("invalid version number"))
		return 0, false
	}
	return version, true
}

// ResolveToken returns configured when set, otherwise a freshly generated
// token. generated reports which.
func ResolveToken(configured string) (token string, generated bool, err error) {
	if configured != "" {
		return configured, false, nil
	}
	token, err = auth.GenerateToken()
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

// ListenAndServe serves h on addr until ctx is done, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Sync server starting", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	slog.Info("Sync server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
