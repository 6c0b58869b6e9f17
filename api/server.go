// Package api exposes the price resolver over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tokenlens/tokenlens/business/pricing/domain"
	"github.com/tokenlens/tokenlens/internal/apm"
	"github.com/tokenlens/tokenlens/internal/logger"
)

// PriceResolver is the pricing surface the API depends on.
type PriceResolver interface {
	GetPrice(ctx context.Context, token common.Address) (domain.Quote, error)
	ReferenceFiatRate(ctx context.Context) (float64, error)
}

// Server serves the price resolution API.
type Server struct {
	port    int
	pricing PriceResolver
	logger  logger.LoggerInterface
	tracer  apm.Tracer
	server  *http.Server
}

// New creates an API server.
func New(port int, pricing PriceResolver, log logger.LoggerInterface) *Server {
	return &Server{
		port:    port,
		pricing: pricing,
		logger:  log,
		tracer:  apm.NewTracer("api"),
	}
}

// Start begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	router := mux.NewRouter()

	router.HandleFunc("/api/v1/price/{address}", s.handlePrice).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/rate", s.handleRate).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info(ctx, "api server starting", "port", s.port)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error(ctx, "api server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
