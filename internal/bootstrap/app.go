package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	postureinadapter "posturetrack/internal/modules/posture/adapter/in"
	postureoutadapter "posturetrack/internal/modules/posture/adapter/out"
	posturein "posturetrack/internal/modules/posture/port/in"
	postureservice "posturetrack/internal/modules/posture/service"
	postureusecase "posturetrack/internal/modules/posture/usecase"
	streaminadapter "posturetrack/internal/modules/stream/adapter/in"
	streamoutadapter "posturetrack/internal/modules/stream/adapter/out"
	streamservice "posturetrack/internal/modules/stream/service"
	"posturetrack/internal/platform/clock"
	"posturetrack/internal/platform/config"
	"posturetrack/internal/platform/telemetry"
)

type App struct {
	Posture  posturein.Usecase
	Registry *streamservice.Registry

	store *postureoutadapter.SQLiteRecordStore
	http  *postureinadapter.HTTPHandler
	ws    *streaminadapter.WSHandler
}

func New(cfg config.Config) (*App, error) {
	store, err := postureoutadapter.NewSQLiteRecordStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new record store: %w", err)
	}

	registry := streamservice.NewRegistry()
	publisher := streamoutadapter.NewRecordPublisher(registry)
	uc := postureusecase.NewInteractor(
		postureservice.NewTrackerService(clock.SystemClock{}, store, publisher))

	return &App{
		Posture:  uc,
		Registry: registry,
		store:    store,
		http:     postureinadapter.NewHTTPHandler(uc),
		ws:       streaminadapter.NewWSHandler(registry, uc, cfg.ObserverBuffer, cfg.WriteTimeout),
	}, nil
}

// Handler assembles the full HTTP surface: history API plus both WebSocket
// endpoints.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	a.http.Register(mux)
	a.ws.Register(mux)
	return mux
}

func (a *App) Close() error {
	a.Registry.Shutdown()
	return a.store.Close()
}

// RunServer serves until ctx is canceled, then drains sessions and shuts the
// listener down.
func RunServer(ctx context.Context, cfg config.Config, app *App) error {
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger := telemetry.GetLogger()
	logger.InfoContext(ctx, "server listening", "addr", cfg.ListenAddr, "db", cfg.DBPath)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	app.Registry.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
