package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/awantoch/flowviz/api"
	"github.com/awantoch/flowviz/config"
	"github.com/awantoch/flowviz/constants"
	"github.com/awantoch/flowviz/telemetry"
	"github.com/awantoch/flowviz/utils"
	"github.com/google/uuid"
)

const shutdownTimeout = 10 * time.Second

// NewHandler returns the flowviz HTTP surface: every operation route,
// the health check and the Prometheus endpoint.
func NewHandler(svc api.ConverterService) http.Handler {
	mux := http.NewServeMux()
	api.AttachHTTPHandlers(mux, svc)
	mux.Handle(constants.HTTPMethodGET+" "+constants.HTTPPathMetrics, telemetry.MetricsHandler())
	return withRequestID(mux)
}

// withRequestID propagates X-Request-Id, generating one when absent.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(constants.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(constants.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(utils.WithRequestID(r.Context(), id)))
	})
}

// StartServer serves on cfg.HTTP until ctx is done, then shuts down.
func StartServer(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := telemetry.Init(&cfg.Tracing)
	if err != nil {
		return utils.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			utils.Warn("Failed to flush traces: %v", err)
		}
	}()

	svc, cleanup, err := api.InitializeDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           NewHandler(svc),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.New(&utils.LoggerWriter{Fn: utils.Warn, Prefix: "http: "}, "", 0),
	}
	return serve(ctx, srv)
}

func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		utils.Info(constants.MsgServerStarting, srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
