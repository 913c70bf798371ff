package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vitos/bitcoin_resonance/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router *http.ServeMux
	server *http.Server
	market *usecase.MarketService
	logger *zap.Logger
}

func NewServer(port int, market *usecase.MarketService, logger *zap.Logger) *Server {
	s := &Server{
		router: http.NewServeMux(),
		market: market,
		logger: logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	// Bitcoin spot snapshot + historical chart
	s.router.HandleFunc("GET /api/bitcoin", s.handleBitcoin)
	s.router.HandleFunc("GET /api/bitcoin/history", s.handleBitcoinHistory)

	// Recent taker trades
	s.router.HandleFunc("GET /api/transactions", s.handleTransactions)

	// Altcoin market listing
	s.router.HandleFunc("GET /api/altcoins", s.handleAltcoins)

	// Fear & Greed index
	s.router.HandleFunc("GET /api/fng", s.handleFearGreed)

	// Locally recorded snapshot history
	s.router.HandleFunc("GET /api/snapshots", s.handleSnapshots)

	// Status
	s.router.HandleFunc("GET /api/status", s.handleStatus)
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
