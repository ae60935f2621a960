// Package httpapi exposes the publish pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkarpovs/tubecast/internal/common"
	"github.com/mkarpovs/tubecast/internal/logging"
	"github.com/mkarpovs/tubecast/internal/pipeline"
)

// Runner executes one publish invocation.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Server is the HTTP front for the pipeline.
type Server struct {
	addr   string
	runner Runner
	logger logging.Logger
}

func NewServer(addr string, runner Runner, logger logging.Logger) *Server {
	return &Server{addr: addr, runner: runner, logger: logger}
}

type publishRequest struct {
	SourceKey     string `json:"source_key"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	PrivacyStatus string `json:"privacy_status"`
	WebhookURL    string `json:"webhook_url"`
}

type publishResponse struct {
	SourceKey       string  `json:"source_key"`
	FileSize        int64   `json:"file_size"`
	VideoID         string  `json:"video_id"`
	VideoURL        string  `json:"video_url"`
	ThumbnailURL    *string `json:"thumbnail_url"`
	Duration        *int64  `json:"duration"`
	WebhookResponse *int    `json:"webhook_response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Router builds the chi router for the service.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/publish", s.handlePublish)

	return r
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	res, err := s.runner.Run(ctx, pipeline.Request{
		SourceKey:     req.SourceKey,
		Title:         req.Title,
		Description:   req.Description,
		PrivacyStatus: req.PrivacyStatus,
		WebhookURL:    req.WebhookURL,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, common.ErrValidation) {
			status = http.StatusBadRequest
		}
		s.logger.Error(ctx, "publish invocation failed", "source_key", req.SourceKey, "status", status, "error", err)
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, publishResponse{
		SourceKey:       res.SourceKey,
		FileSize:        res.FileSize,
		VideoID:         res.VideoID,
		VideoURL:        res.VideoURL,
		ThumbnailURL:    res.ThumbnailURL,
		Duration:        res.DurationMS,
		WebhookResponse: res.WebhookStatus,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "http server started", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
