package provider

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vitos/bitcoin_resonance/internal/domain"
)

const CoinCapBaseURL = "https://api.coincap.io/v2"

// CoinCap is the assets-endpoint snapshot variant. All values are
// USD-quoted strings.
type CoinCap struct {
	baseURL string
	client  *http.Client
}

func NewCoinCap(baseURL string) *CoinCap {
	if baseURL == "" {
		baseURL = CoinCapBaseURL
	}
	return &CoinCap{baseURL: baseURL, client: newHTTPClient()}
}

func (c *CoinCap) Name() string { return "coincap" }

func (c *CoinCap) FetchSnapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	body, err := get(ctx, c.client, c.Name(), c.baseURL+"/assets/bitcoin")
	if err != nil {
		return domain.MarketSnapshot{}, err
	}

	var result struct {
		Data *struct {
			PriceUsd          string `json:"priceUsd"`
			VolumeUsd24Hr     string `json:"volumeUsd24Hr"`
			ChangePercent24Hr string `json:"changePercent24Hr"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.MarketSnapshot{}, &domain.UpstreamSchemaError{Provider: c.Name(), Reason: err.Error()}
	}
	if result.Data == nil {
		return domain.MarketSnapshot{}, &domain.UpstreamSchemaError{Provider: c.Name(), Reason: "missing data object"}
	}

	price, err := parseField(c.Name(), "data.priceUsd", result.Data.PriceUsd)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}
	volume, err := parseField(c.Name(), "data.volumeUsd24Hr", result.Data.VolumeUsd24Hr)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}
	change, err := parseField(c.Name(), "data.changePercent24Hr", result.Data.ChangePercent24Hr)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}

	return domain.MarketSnapshot{Price: price, Volume: volume, Change: change}, nil
}
