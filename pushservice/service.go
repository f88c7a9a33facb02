// Package pushservice assembles the HTTP service around the dispatch core.
package pushservice

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tinywideclouds/go-microservice-base/pkg/microservice"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"

	"github.com/jpco-admin/go-push-service/internal/api"
	"github.com/jpco-admin/go-push-service/internal/dispatch"
	"github.com/jpco-admin/go-push-service/pkg/push"
	"github.com/jpco-admin/go-push-service/pushservice/config"
)

type Wrapper struct {
	*microservice.BaseServer
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// New assembles the service: dispatcher core, HTTP handlers, CORS and auth.
func New(
	cfg *config.Config,
	tokenStore push.TokenStore,
	provider push.Provider,
	historyStore push.HistoryStore,
	historyReader push.HistoryReader,
	authMiddleware func(http.Handler) http.Handler,
	logger *slog.Logger,
) (*Wrapper, error) {

	// 1. Base Server
	baseServer := microservice.NewBaseServer(logger, cfg.ListenAddr)

	// 2. Dispatcher core
	dispatcher := dispatch.NewDispatcher(tokenStore, provider, historyStore, dispatch.Config{
		ProviderTimeout: cfg.Dispatch.ProviderTimeout,
		StoreTimeout:    cfg.Dispatch.StoreTimeout,
		BatchTimeout:    cfg.Dispatch.BatchTimeout,
	}, logger)

	// 3. APIs
	notificationAPI := api.NewNotificationAPI(dispatcher, historyReader, logger)
	tokenAPI := api.NewTokenAPI(tokenStore, logger)

	// Register Routes
	mux := baseServer.Mux()
	corsMiddleware := middleware.NewCorsMiddleware(cfg.CorsConfig, logger)

	// Helper for clean route definition
	handle := func(pattern string, handlerFunc http.HandlerFunc) {
		mux.Handle(pattern, corsMiddleware(authMiddleware(handlerFunc)))
	}

	// 1. Fan-out dispatch (the dashboard's "notify these users" call)
	handle("POST /api/v1/notifications/send", notificationAPI.Send)

	// 2. Per-user history view
	handle("GET /api/v1/notifications/history", notificationAPI.ListHistory)

	// 3. Token lifecycle
	handle("POST /api/v1/tokens/register", tokenAPI.RegisterToken)
	handle("POST /api/v1/tokens/unregister", tokenAPI.UnregisterToken)

	// 4. Global OPTIONS for the API namespace (CORS preflight)
	mux.Handle("OPTIONS /api/v1/", corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Just returns 200 OK with CORS headers handled by middleware
	})))

	return &Wrapper{
		BaseServer: baseServer,
		dispatcher: dispatcher,
		logger:     logger,
	}, nil
}

// Dispatcher exposes the core for in-process callers (the dashboard's request
// handlers invoke it directly, without going through HTTP).
func (w *Wrapper) Dispatcher() *dispatch.Dispatcher {
	return w.dispatcher
}

func (w *Wrapper) Start(_ context.Context) error {
	w.SetReady(true)
	w.logger.Info("Service is now ready.")
	return w.BaseServer.Start()
}

func (w *Wrapper) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down service components...")
	if err := w.BaseServer.Shutdown(ctx); err != nil {
		w.logger.Error("HTTP server shutdown failed.", "err", err)
		return err
	}
	w.logger.Info("Service shutdown complete.")
	return nil
}
