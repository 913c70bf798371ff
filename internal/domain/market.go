package domain

import "encoding/json"

// MarketSnapshot is a single point-in-time market reading.
// Volume is always denominated in USD; providers that report base-asset
// volume convert it by multiplying with the price.
type MarketSnapshot struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
	Change float64 `json:"change"` // 24h percent change, signed
}

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TradeRecord is one executed taker trade. Side reflects the aggressor:
// if the buyer was the maker, the taker sold into the book.
type TradeRecord struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"` // base asset (BTC)
	Side     Side    `json:"side"`
	Time     int64   `json:"time"` // epoch millis
}

// AltcoinMarket is one entry of the coin market listing. Raw holds the
// provider object verbatim so the web layer can pass it through
// unchanged; ID/Symbol/Name are extracted for normalized consumers.
type AltcoinMarket struct {
	ID     string          `json:"id"`
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Raw    json.RawMessage `json:"-"`
}

// FearGreed is the Alternative.me fear & greed index reading.
type FearGreed struct {
	Value          int    `json:"value"`
	Classification string `json:"classification"`
	Timestamp      int64  `json:"timestamp"`
}
