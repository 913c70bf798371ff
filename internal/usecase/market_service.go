package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/vitos/bitcoin_resonance/internal/domain"
	"go.uber.org/zap"
)

// MarketService ties the provider adapters together: it owns the
// polling entry points, the throttled caches for the expensive
// endpoints, the capped trade list, and the mock fallback used when
// every upstream is down.
type MarketService struct {
	snapshots domain.SnapshotProvider
	tradeAPI  domain.TradeProvider
	repo      domain.SnapshotRepository // optional
	logger    *zap.Logger

	altcoins  *ThrottledFetcher[[]domain.AltcoinMarket]
	history   *ThrottledFetcher[json.RawMessage]
	sentiment *ThrottledFetcher[domain.FearGreed]

	buffer *TradeBuffer
	mock   *MockSnapshotGenerator

	mu        sync.Mutex
	latest    domain.MarketSnapshot
	hasLatest bool
	simulated bool
	startedAt time.Time
	timeNow   func() time.Time // for testing
}

// ThrottleIntervals configures the cache windows for the rarely
// changing endpoints. Zero values fall back to the defaults the
// original site used (60s for listings, 1h for chart and sentiment).
type ThrottleIntervals struct {
	Altcoins  time.Duration
	History   time.Duration
	Sentiment time.Duration
}

func (t *ThrottleIntervals) applyDefaults() {
	if t.Altcoins <= 0 {
		t.Altcoins = time.Minute
	}
	if t.History <= 0 {
		t.History = time.Hour
	}
	if t.Sentiment <= 0 {
		t.Sentiment = time.Hour
	}
}

func NewMarketService(
	snapshots domain.SnapshotProvider,
	trades domain.TradeProvider,
	altcoins domain.AltcoinProvider,
	history domain.HistoryProvider,
	sentiment domain.SentimentProvider,
	repo domain.SnapshotRepository,
	tradeLimit int,
	intervals ThrottleIntervals,
	logger *zap.Logger,
) *MarketService {
	intervals.applyDefaults()

	s := &MarketService{
		snapshots: snapshots,
		tradeAPI:  trades,
		repo:      repo,
		logger:    logger,
		buffer:    NewTradeBuffer(tradeLimit),
		mock:      NewMockSnapshotGenerator(time.Now().UnixNano()),
		startedAt: time.Now(),
		timeNow:   time.Now,
	}

	s.altcoins = NewThrottledFetcher("altcoins", intervals.Altcoins, altcoins.FetchAltcoins, logger)
	s.history = NewThrottledFetcher("history", intervals.History, history.FetchHistory, logger)
	s.sentiment = NewThrottledFetcher("fear-greed", intervals.Sentiment, sentiment.FetchFearGreed, logger)

	return s
}

// FetchSnapshot asks the default provider for a fresh snapshot. This is
// the pass-through path the web layer uses: failures surface to the
// caller untouched. Successful reads update the latest value and are
// recorded to storage when one is configured.
func (s *MarketService) FetchSnapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	snap, err := s.snapshots.FetchSnapshot(ctx)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}

	s.applySnapshot(snap, false)

	if s.repo != nil {
		if err := s.repo.SaveSnapshot(ctx, snap, s.snapshots.Name(), s.timeNow()); err != nil {
			s.logger.Warn("failed to record snapshot", zap.Error(err))
		}
	}

	return snap, nil
}

// PollSnapshot is the polling-loop entry point: a failed fetch keeps
// the previous value on display and flips the service into simulated
// mode so the status surface can say so.
func (s *MarketService) PollSnapshot(ctx context.Context) {
	if _, err := s.FetchSnapshot(ctx); err != nil {
		s.logger.Warn("snapshot poll failed",
			zap.String("provider", s.snapshots.Name()), zap.Error(err))

		s.mu.Lock()
		s.simulated = true
		s.mu.Unlock()
	}
}

// Snapshot returns the best available reading and whether it is
// synthetic. While upstreams fail, a mock random-walk around the last
// real value keeps consumers populated.
func (s *MarketService) Snapshot() (domain.MarketSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasLatest && !s.simulated {
		return s.latest, false
	}
	return s.mock.Next(s.latest), true
}

// ApplyStreamSnapshot feeds a snapshot from the ticker stream. The
// latest arriving value wins regardless of source.
func (s *MarketService) ApplyStreamSnapshot(snap domain.MarketSnapshot) {
	s.applySnapshot(snap, false)
}

func (s *MarketService) applySnapshot(snap domain.MarketSnapshot, simulated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = snap
	s.hasLatest = true
	s.simulated = simulated
}

// RecentTrades fetches the trade list fresh from the provider,
// replacing the retained buffer on success. Failures surface to the
// caller; the buffer keeps its previous contents for the poll path to
// clear.
func (s *MarketService) RecentTrades(ctx context.Context) ([]domain.TradeRecord, error) {
	trades, err := s.tradeAPI.FetchRecentTrades(ctx)
	if err != nil {
		return nil, err
	}
	s.buffer.Replace(trades)
	return trades, nil
}

// PollTrades replaces the buffer each cycle; on failure it falls back
// to an empty list rather than leaving stale data behind an error.
func (s *MarketService) PollTrades(ctx context.Context) {
	if _, err := s.RecentTrades(ctx); err != nil {
		s.logger.Warn("trade poll failed", zap.Error(err))
		s.buffer.Replace(nil)
	}
}

// ApplyStreamTrade feeds one trade from the trade stream into the
// capped buffer.
func (s *MarketService) ApplyStreamTrade(rec domain.TradeRecord) {
	s.buffer.Push(rec)
}

// BufferedTrades returns the retained trade list, newest first.
func (s *MarketService) BufferedTrades() []domain.TradeRecord {
	return s.buffer.List()
}

func (s *MarketService) Altcoins(ctx context.Context) ([]domain.AltcoinMarket, error) {
	return s.altcoins.Get(ctx)
}

func (s *MarketService) History(ctx context.Context) (json.RawMessage, error) {
	return s.history.Get(ctx)
}

func (s *MarketService) FearGreed(ctx context.Context) (domain.FearGreed, error) {
	return s.sentiment.Get(ctx)
}

// RecordedSnapshots reads back locally persisted snapshot history,
// newest first.
func (s *MarketService) RecordedSnapshots(ctx context.Context, limit int) ([]*domain.SnapshotRecord, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.RecentSnapshots(ctx, limit)
}

// Status is the service self-report exposed on /api/status.
type Status struct {
	Snapshot      domain.MarketSnapshot `json:"snapshot"`
	Simulated     bool                  `json:"simulated"`
	Provider      string                `json:"provider"`
	TradeCount    int                   `json:"trade_count"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
}

func (s *MarketService) Status() Status {
	snap, simulated := s.Snapshot()
	return Status{
		Snapshot:      snap,
		Simulated:     simulated,
		Provider:      s.snapshots.Name(),
		TradeCount:    s.buffer.Len(),
		UptimeSeconds: int64(s.timeNow().Sub(s.startedAt).Seconds()),
	}
}
