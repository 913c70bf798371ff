package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vitos/bitcoin_resonance/internal/domain"
)

const BinanceBaseURL = "https://api.binance.com"

// Binance serves both the 24h ticker snapshot and the recent-trades
// list. All numeric fields arrive as strings; quoteVolume is already
// USD-quoted so no conversion is needed.
type Binance struct {
	baseURL string
	symbol  string
	limit   int
	client  *http.Client
}

func NewBinance(baseURL, symbol string, limit int) *Binance {
	if baseURL == "" {
		baseURL = BinanceBaseURL
	}
	if symbol == "" {
		symbol = "BTCUSDT"
	}
	if limit <= 0 {
		limit = 15
	}
	return &Binance{baseURL: baseURL, symbol: symbol, limit: limit, client: newHTTPClient()}
}

func (b *Binance) Name() string { return "binance" }

func (b *Binance) FetchSnapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	url := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", b.baseURL, b.symbol)
	body, err := get(ctx, b.client, b.Name(), url)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}

	var result struct {
		LastPrice          string `json:"lastPrice"`
		QuoteVolume        string `json:"quoteVolume"`
		PriceChangePercent string `json:"priceChangePercent"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.MarketSnapshot{}, &domain.UpstreamSchemaError{Provider: b.Name(), Reason: err.Error()}
	}

	price, err := parseField(b.Name(), "lastPrice", result.LastPrice)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}
	volume, err := parseField(b.Name(), "quoteVolume", result.QuoteVolume)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}
	change, err := parseField(b.Name(), "priceChangePercent", result.PriceChangePercent)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}

	return domain.MarketSnapshot{Price: price, Volume: volume, Change: change}, nil
}

// FetchRecentTrades returns the last trades for the configured pair in
// provider order (newest first). isBuyerMaker means the aggressor sold
// into a resting buy order, so the record's side is sell.
func (b *Binance) FetchRecentTrades(ctx context.Context) ([]domain.TradeRecord, error) {
	url := fmt.Sprintf("%s/api/v3/trades?symbol=%s&limit=%d", b.baseURL, b.symbol, b.limit)
	body, err := get(ctx, b.client, b.Name(), url)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Price        string `json:"price"`
		Qty          string `json:"qty"`
		IsBuyerMaker bool   `json:"isBuyerMaker"`
		Time         int64  `json:"time"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &domain.UpstreamSchemaError{Provider: b.Name(), Reason: "expected array of trades"}
	}

	trades := make([]domain.TradeRecord, 0, len(raw))
	for i, t := range raw {
		price, err := parseField(b.Name(), fmt.Sprintf("trades[%d].price", i), t.Price)
		if err != nil {
			return nil, err
		}
		qty, err := parseField(b.Name(), fmt.Sprintf("trades[%d].qty", i), t.Qty)
		if err != nil {
			return nil, err
		}

		side := domain.SideBuy
		if t.IsBuyerMaker {
			side = domain.SideSell
		}

		trades = append(trades, domain.TradeRecord{
			Price:    price,
			Quantity: qty,
			Side:     side,
			Time:     t.Time,
		})
	}

	return trades, nil
}
