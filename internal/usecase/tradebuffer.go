package usecase

import (
	"sync"

	"github.com/vitos/bitcoin_resonance/internal/domain"
)

// TradeBuffer retains the most recent trades, newest first, capped at a
// fixed size. Consecutive polls may replace the list with overlapping
// trades; duplicates across cycles are accepted.
type TradeBuffer struct {
	mu     sync.Mutex
	limit  int
	trades []domain.TradeRecord
}

func NewTradeBuffer(limit int) *TradeBuffer {
	if limit <= 0 {
		limit = 15
	}
	return &TradeBuffer{limit: limit}
}

// Push prepends a single trade, evicting the oldest entry once the cap
// is reached. Used by the streaming feed.
func (b *TradeBuffer) Push(t domain.TradeRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.trades = append([]domain.TradeRecord{t}, b.trades...)
	if len(b.trades) > b.limit {
		b.trades = b.trades[:b.limit]
	}
}

// Replace swaps the whole retained list, preserving the given order.
// Used by the polling loop, which always supersedes the previous cycle.
func (b *TradeBuffer) Replace(trades []domain.TradeRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(trades) > b.limit {
		trades = trades[:b.limit]
	}
	b.trades = append(b.trades[:0:0], trades...)
}

func (b *TradeBuffer) List() []domain.TradeRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.TradeRecord, len(b.trades))
	copy(out, b.trades)
	return out
}

func (b *TradeBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.trades)
}
