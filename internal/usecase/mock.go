package usecase

import (
	"math/rand"
	"sync"

	"github.com/vitos/bitcoin_resonance/internal/domain"
)

// Defaults used when no real snapshot was ever fetched.
const (
	mockBasePrice  = 67000.0
	mockBaseVolume = 3.2e10
)

// MockSnapshotGenerator produces synthetic snapshots so consumers stay
// populated while every upstream is failing. Values random-walk around
// the last real reading.
type MockSnapshotGenerator struct {
	mu   sync.Mutex
	rand *rand.Rand
}

func NewMockSnapshotGenerator(seed int64) *MockSnapshotGenerator {
	return &MockSnapshotGenerator{rand: rand.New(rand.NewSource(seed))}
}

// Next derives a plausible snapshot from the last known one, or from
// defaults when there was none.
func (g *MockSnapshotGenerator) Next(last domain.MarketSnapshot) domain.MarketSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	base := last
	if base.Price <= 0 {
		base = domain.MarketSnapshot{Price: mockBasePrice, Volume: mockBaseVolume, Change: 0}
	}

	drift := (g.rand.Float64() - 0.5) * 0.004 // +/- 0.2%
	price := base.Price * (1 + drift)

	volume := base.Volume * (1 + (g.rand.Float64()-0.5)*0.02)
	if volume <= 0 {
		volume = mockBaseVolume
	}

	return domain.MarketSnapshot{
		Price:  price,
		Volume: volume,
		Change: base.Change + drift*100,
	}
}
