package main

import (
	"context"
	"fmt"
	"time"

	"github.com/vitos/bitcoin_resonance/internal/domain"
	"github.com/vitos/bitcoin_resonance/internal/infrastructure/provider"
)

// Hits every upstream once and prints the normalized result. Handy for
// checking provider availability and field mappings by hand.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	providers := []domain.SnapshotProvider{
		provider.NewCoinGecko(""),
		provider.NewCoinGeckoDetail(""),
		provider.NewBinance("", "BTCUSDT", 15),
		provider.NewCoinCap(""),
	}

	for _, p := range providers {
		snap, err := p.FetchSnapshot(ctx)
		if err != nil {
			fmt.Printf("%-18s ERROR: %v\n", p.Name(), err)
			continue
		}
		fmt.Printf("%-18s price=%.2f volume=%.0f change=%.2f%%\n", p.Name(), snap.Price, snap.Volume, snap.Change)
	}

	binance := provider.NewBinance("", "BTCUSDT", 5)
	trades, err := binance.FetchRecentTrades(ctx)
	if err != nil {
		fmt.Printf("trades             ERROR: %v\n", err)
	} else {
		for _, t := range trades {
			fmt.Printf("trade  %s %.5f @ %.2f (%d)\n", t.Side, t.Quantity, t.Price, t.Time)
		}
	}

	fg, err := provider.NewAlternative("").FetchFearGreed(ctx)
	if err != nil {
		fmt.Printf("fear-greed         ERROR: %v\n", err)
	} else {
		fmt.Printf("fear-greed         %d (%s)\n", fg.Value, fg.Classification)
	}
}
