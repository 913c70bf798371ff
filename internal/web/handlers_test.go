package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vitos/bitcoin_resonance/internal/infrastructure/provider"
	"github.com/vitos/bitcoin_resonance/internal/usecase"
	"go.uber.org/zap"
)

// newTestServer wires real providers against a fake upstream so the
// whole fetch -> normalize -> serve path is exercised.
func newTestServer(t *testing.T, upstream http.HandlerFunc) *Server {
	t.Helper()
	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)

	coingecko := provider.NewCoinGecko(up.URL)
	binance := provider.NewBinance(up.URL, "BTCUSDT", 15)
	alternative := provider.NewAlternative(up.URL)

	svc := usecase.NewMarketService(
		coingecko,
		binance,
		coingecko,
		coingecko,
		alternative,
		nil,
		15,
		usecase.ThrottleIntervals{},
		zap.NewNop(),
	)
	return NewServer(0, svc, zap.NewNop())
}

func doRequest(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleBitcoinSuccess(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bitcoin":{"usd":67000.5,"usd_24h_vol":32000000000,"usd_24h_change":-1.25}}`)
	})

	rec := doRequest(s, "/api/bitcoin")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Price  float64 `json:"price"`
		Volume float64 `json:"volume"`
		Change float64 `json:"change"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Price != 67000.5 || body.Volume != 32000000000 || body.Change != -1.25 {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestHandleBitcoinUpstreamFailure(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	rec := doRequest(s, "/api/bitcoin")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON error body: %v", err)
	}
	if body["error"] == "" {
		t.Errorf("expected error field in body, got %v", body)
	}
}

func TestHandleTransactions(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"price":"67000.10","qty":"0.002","isBuyerMaker":true,"time":1700000000000}]`)
	})

	rec := doRequest(s, "/api/transactions")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var trades []struct {
		Price    float64 `json:"price"`
		Quantity float64 `json:"quantity"`
		Side     string  `json:"side"`
		Time     int64   `json:"time"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &trades); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Price != 67000.10 || trades[0].Quantity != 0.002 || trades[0].Side != "sell" || trades[0].Time != 1700000000000 {
		t.Errorf("unexpected trade: %+v", trades[0])
	}
}

func TestHandleTransactionsFailure(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	rec := doRequest(s, "/api/transactions")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHandleAltcoinsPassthrough(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"ethereum","symbol":"eth","name":"Ethereum","market_cap":420000000000}]`)
	})

	rec := doRequest(s, "/api/altcoins")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var coins []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &coins); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(coins) != 1 {
		t.Fatalf("expected 1 coin, got %d", len(coins))
	}
	// Fields beyond id/symbol/name survive the passthrough.
	if coins[0]["market_cap"] != float64(420000000000) {
		t.Errorf("expected market_cap passthrough, got %v", coins[0])
	}
}

func TestHandleFearGreed(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"value":"65","value_classification":"Greed","timestamp":"1700000000"}]}`)
	})

	rec := doRequest(s, "/api/fng")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Value          int    `json:"value"`
		Classification string `json:"classification"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Value != 65 || body.Classification != "Greed" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	rec := doRequest(s, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var status struct {
		Simulated bool   `json:"simulated"`
		Provider  string `json:"provider"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if status.Provider != "coingecko" {
		t.Errorf("expected provider coingecko, got %q", status.Provider)
	}
}
