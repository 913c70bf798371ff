package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vitos/bitcoin_resonance/internal/domain"
)

const CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGecko covers the CoinGecko v3 endpoints the service uses: the
// simple price snapshot, the coin market listing and the 30-day market
// chart. Snapshot values are already quoted in USD.
type CoinGecko struct {
	baseURL string
	client  *http.Client
}

func NewCoinGecko(baseURL string) *CoinGecko {
	if baseURL == "" {
		baseURL = CoinGeckoBaseURL
	}
	return &CoinGecko{baseURL: baseURL, client: newHTTPClient()}
}

func (c *CoinGecko) Name() string { return "coingecko" }

func (c *CoinGecko) FetchSnapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	url := c.baseURL + "/simple/price?ids=bitcoin&vs_currencies=usd&include_24hr_vol=true&include_24hr_change=true"
	body, err := get(ctx, c.client, c.Name(), url)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}

	var result map[string]struct {
		USD          *float64 `json:"usd"`
		USD24hVol    *float64 `json:"usd_24h_vol"`
		USD24hChange *float64 `json:"usd_24h_change"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.MarketSnapshot{}, &domain.UpstreamSchemaError{Provider: c.Name(), Reason: err.Error()}
	}

	coin, ok := result["bitcoin"]
	if !ok {
		return domain.MarketSnapshot{}, &domain.UpstreamSchemaError{Provider: c.Name(), Reason: "missing bitcoin key"}
	}
	if coin.USD == nil || coin.USD24hVol == nil || coin.USD24hChange == nil {
		return domain.MarketSnapshot{}, &domain.UpstreamSchemaError{Provider: c.Name(), Reason: "missing usd price fields"}
	}

	return domain.MarketSnapshot{
		Price:  *coin.USD,
		Volume: *coin.USD24hVol,
		Change: *coin.USD24hChange,
	}, nil
}

func (c *CoinGecko) FetchAltcoins(ctx context.Context) ([]domain.AltcoinMarket, error) {
	url := c.baseURL + "/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=50&page=1&sparkline=false"
	body, err := get(ctx, c.client, c.Name(), url)
	if err != nil {
		return nil, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &domain.UpstreamSchemaError{Provider: c.Name(), Reason: "expected array of coin markets"}
	}

	coins := make([]domain.AltcoinMarket, 0, len(entries))
	for i, entry := range entries {
		var head struct {
			ID     string `json:"id"`
			Symbol string `json:"symbol"`
			Name   string `json:"name"`
		}
		if err := json.Unmarshal(entry, &head); err != nil {
			return nil, &domain.UpstreamSchemaError{Provider: c.Name(), Reason: fmt.Sprintf("entry %d: %v", i, err)}
		}
		coins = append(coins, domain.AltcoinMarket{
			ID:     head.ID,
			Symbol: head.Symbol,
			Name:   head.Name,
			Raw:    entry,
		})
	}

	return coins, nil
}

func (c *CoinGecko) FetchHistory(ctx context.Context) (json.RawMessage, error) {
	url := c.baseURL + "/coins/bitcoin/market_chart?vs_currency=usd&days=30&interval=daily"
	body, err := get(ctx, c.client, c.Name(), url)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &domain.UpstreamSchemaError{Provider: c.Name(), Reason: "market chart is not valid JSON"}
	}
	return json.RawMessage(body), nil
}

// CoinGeckoDetail is the snapshot variant backed by the full coin
// detail endpoint instead of the simple price one. Functionally
// redundant with CoinGecko; kept as a swappable strategy.
type CoinGeckoDetail struct {
	baseURL string
	client  *http.Client
}

func NewCoinGeckoDetail(baseURL string) *CoinGeckoDetail {
	if baseURL == "" {
		baseURL = CoinGeckoBaseURL
	}
	return &CoinGeckoDetail{baseURL: baseURL, client: newHTTPClient()}
}

func (c *CoinGeckoDetail) Name() string { return "coingecko-detail" }

func (c *CoinGeckoDetail) FetchSnapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	body, err := get(ctx, c.client, c.Name(), c.baseURL+"/coins/bitcoin")
	if err != nil {
		return domain.MarketSnapshot{}, err
	}

	var result struct {
		MarketData *struct {
			CurrentPrice struct {
				USD *float64 `json:"usd"`
			} `json:"current_price"`
			TotalVolume struct {
				USD *float64 `json:"usd"`
			} `json:"total_volume"`
			PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
		} `json:"market_data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.MarketSnapshot{}, &domain.UpstreamSchemaError{Provider: c.Name(), Reason: err.Error()}
	}

	md := result.MarketData
	if md == nil || md.CurrentPrice.USD == nil || md.TotalVolume.USD == nil || md.PriceChangePercentage24h == nil {
		return domain.MarketSnapshot{}, &domain.UpstreamSchemaError{Provider: c.Name(), Reason: "missing market_data fields"}
	}

	return domain.MarketSnapshot{
		Price:  *md.CurrentPrice.USD,
		Volume: *md.TotalVolume.USD,
		Change: *md.PriceChangePercentage24h,
	}, nil
}
