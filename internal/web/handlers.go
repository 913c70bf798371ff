package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vitos/bitcoin_resonance/internal/domain"
	"go.uber.org/zap"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError is the uniform failure body for pass-through routes.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleBitcoin(w http.ResponseWriter, r *http.Request) {
	snap, err := s.market.FetchSnapshot(r.Context())
	if err != nil {
		s.logger.Error("Failed to fetch bitcoin snapshot", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to fetch bitcoin market data")
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleBitcoinHistory(w http.ResponseWriter, r *http.Request) {
	raw, err := s.market.History(r.Context())
	if err != nil {
		s.logger.Error("Failed to fetch bitcoin history", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to fetch bitcoin historical data")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(raw); err != nil {
		s.logger.Error("Failed to write history response", zap.Error(err))
	}
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	trades, err := s.market.RecentTrades(r.Context())
	if err != nil {
		s.logger.Error("Failed to fetch trades", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to fetch trades")
		return
	}
	if trades == nil {
		trades = []domain.TradeRecord{}
	}
	s.writeJSON(w, http.StatusOK, trades)
}

// handleAltcoins passes the provider market entries through verbatim.
func (s *Server) handleAltcoins(w http.ResponseWriter, r *http.Request) {
	coins, err := s.market.Altcoins(r.Context())
	if err != nil {
		s.logger.Error("Failed to fetch altcoins", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to fetch altcoins")
		return
	}

	raw := make([]json.RawMessage, 0, len(coins))
	for _, c := range coins {
		raw = append(raw, c.Raw)
	}
	s.writeJSON(w, http.StatusOK, raw)
}

func (s *Server) handleFearGreed(w http.ResponseWriter, r *http.Request) {
	fg, err := s.market.FearGreed(r.Context())
	if err != nil {
		s.logger.Error("Failed to fetch fear & greed index", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to fetch fear & greed index")
		return
	}
	s.writeJSON(w, http.StatusOK, fg)
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.market.RecordedSnapshots(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list recorded snapshots", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list recorded snapshots")
		return
	}
	if records == nil {
		records = []*domain.SnapshotRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.market.Status())
}
