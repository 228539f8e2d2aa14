package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/susu3304/chipbot/internal/db"
	"github.com/susu3304/chipbot/internal/session"
)

const shutdownTimeout = 5 * time.Second

// StateProvider exposes the running game.
type StateProvider interface {
	State() session.State
}

// History reads archived settlements.
type History interface {
	ListSettlements(ctx context.Context, limit int) ([]db.Settlement, error)
	GetSettlement(ctx context.Context, id uuid.UUID) (*db.Settlement, error)
}

// API is the read-only status server. history may be nil when no database is
// configured.
type API struct {
	router       *mux.Router
	state        StateProvider
	history      History
	historyLimit int
	logger       *zap.Logger
}

func New(state StateProvider, history History, historyLimit int, logger *zap.Logger) *API {
	api := &API{
		router:       mux.NewRouter(),
		state:        state,
		history:      history,
		historyLimit: historyLimit,
		logger:       logger.Named("api"),
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")
	a.router.HandleFunc("/api/game", a.handleGame).Methods("GET")
	a.router.HandleFunc("/api/settlements", a.handleListSettlements).Methods("GET")
	a.router.HandleFunc("/api/settlements/{id}", a.handleGetSettlement).Methods("GET")
}

// Handler returns the router wrapped with CORS.
func (a *API) Handler() http.Handler {
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(a.router)
}

// Run serves on bind until ctx is cancelled.
func (a *API) Run(ctx context.Context, bind string) error {
	srv := &http.Server{
		Addr:              bind,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("API server listening", zap.String("addr", "http://"+bind))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	return nil
}
