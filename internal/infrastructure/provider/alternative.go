package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vitos/bitcoin_resonance/internal/domain"
)

const AlternativeBaseURL = "https://api.alternative.me"

// Alternative fetches the Alternative.me fear & greed index. The API
// wraps readings in a data array with stringly-typed numbers.
type Alternative struct {
	baseURL string
	client  *http.Client
}

func NewAlternative(baseURL string) *Alternative {
	if baseURL == "" {
		baseURL = AlternativeBaseURL
	}
	return &Alternative{baseURL: baseURL, client: newHTTPClient()}
}

func (a *Alternative) Name() string { return "alternative.me" }

func (a *Alternative) FetchFearGreed(ctx context.Context) (domain.FearGreed, error) {
	body, err := get(ctx, a.client, a.Name(), a.baseURL+"/fng/")
	if err != nil {
		return domain.FearGreed{}, err
	}

	var result struct {
		Data []struct {
			Value               string `json:"value"`
			ValueClassification string `json:"value_classification"`
			Timestamp           string `json:"timestamp"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.FearGreed{}, &domain.UpstreamSchemaError{Provider: a.Name(), Reason: err.Error()}
	}
	if len(result.Data) == 0 {
		return domain.FearGreed{}, &domain.UpstreamSchemaError{Provider: a.Name(), Reason: "empty data array"}
	}

	latest := result.Data[0]
	value, err := strconv.Atoi(latest.Value)
	if err != nil {
		return domain.FearGreed{}, &domain.UpstreamSchemaError{Provider: a.Name(), Reason: "cannot parse value " + latest.Value}
	}
	// Timestamp is optional for consumers; a missing one maps to zero.
	ts, _ := strconv.ParseInt(latest.Timestamp, 10, 64)

	return domain.FearGreed{
		Value:          value,
		Classification: latest.ValueClassification,
		Timestamp:      ts,
	}, nil
}
