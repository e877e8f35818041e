// Package server exposes the session API over HTTP: upload documents, run
// the cross-document analysis and fetch the assembled report.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/tradedoc-cli/internal/catalog"
	"github.com/sells-group/tradedoc-cli/internal/config"
	"github.com/sells-group/tradedoc-cli/internal/extract"
	"github.com/sells-group/tradedoc-cli/internal/ocr"
	"github.com/sells-group/tradedoc-cli/internal/store"
)

// Server wires the extraction pipeline, reconciliation and session store
// behind the HTTP API.
type Server struct {
	cfg      config.Config
	cat      *catalog.Catalog
	resolver *extract.Resolver
	acquirer ocr.Acquirer
	st       store.Store
	log      *zap.Logger
}

// New assembles a Server from its dependencies.
func New(cfg config.Config, cat *catalog.Catalog, resolver *extract.Resolver, acquirer ocr.Acquirer, st store.Store, log *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		cat:      cat,
		resolver: resolver,
		acquirer: acquirer,
		st:       st,
		log:      log,
	}
}

// Router builds the chi router with middleware and all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/session", s.handleCreateSession)
		r.Route("/session/{sessionID}", func(r chi.Router) {
			r.Post("/doc/{docType}", s.handleUploadDocument)
			r.Post("/analyze", s.handleAnalyze)
			r.Get("/report", s.handleReport)
		})
	})
	return r
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts it
// down gracefully. It also sweeps expired sessions in the background.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepExpired(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) sweepExpired(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.st.DeleteExpiredSessions(ctx)
			if err != nil {
				s.log.Warn("expired session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.log.Info("deleted expired sessions", zap.Int("count", n))
			}
		}
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
