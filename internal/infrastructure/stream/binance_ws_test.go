package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/bitcoin_resonance/internal/domain"
	"go.uber.org/zap"
)

func TestParseTickerMessage(t *testing.T) {
	snap, err := parseTickerMessage([]byte(`{"c":"67000","v":"1000","P":"2.5"}`))
	if err != nil {
		t.Fatalf("parseTickerMessage failed: %v", err)
	}

	if snap.Price != 67000 {
		t.Errorf("expected price 67000, got %f", snap.Price)
	}
	// Base-asset volume converted to USD: 67000 * 1000.
	if snap.Volume != 67000000 {
		t.Errorf("expected volume 67000000, got %f", snap.Volume)
	}
	if snap.Change != 2.5 {
		t.Errorf("expected change 2.5, got %f", snap.Change)
	}
}

func TestParseTickerMessageBadPayload(t *testing.T) {
	if _, err := parseTickerMessage([]byte(`{"c":"abc","v":"1","P":"1"}`)); err == nil {
		t.Fatal("expected error for unparsable price")
	}
	if _, err := parseTickerMessage([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseTradeMessage(t *testing.T) {
	rec, err := parseTradeMessage([]byte(`{"p":"67000.10","q":"0.002","m":true,"T":1700000000000}`))
	if err != nil {
		t.Fatalf("parseTradeMessage failed: %v", err)
	}

	if rec.Price != 67000.10 || rec.Quantity != 0.002 || rec.Time != 1700000000000 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Side != domain.SideSell {
		t.Errorf("buyer-is-maker must map to sell, got %s", rec.Side)
	}

	rec, err = parseTradeMessage([]byte(`{"p":"67000.10","q":"0.002","m":false,"T":1700000000000}`))
	if err != nil {
		t.Fatalf("parseTradeMessage failed: %v", err)
	}
	if rec.Side != domain.SideBuy {
		t.Errorf("taker buy must map to buy, got %s", rec.Side)
	}
}

// wsTestServer upgrades each connection and writes every payload from
// send, then holds the connection open until the client closes it.
func wsTestServer(t *testing.T, send <-chan string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		go func() {
			for msg := range send {
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
					return
				}
			}
		}()

		// Block until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestTickerSubscriptionEmitsSnapshots(t *testing.T) {
	send := make(chan string, 1)
	srv := wsTestServer(t, send)

	sub, err := SubscribeTicker(wsURL(srv), zap.NewNop())
	if err != nil {
		t.Fatalf("SubscribeTicker failed: %v", err)
	}
	defer sub.Close()

	send <- `{"c":"67000","v":"1000","P":"2.5"}`

	select {
	case snap, ok := <-sub.Snapshots():
		if !ok {
			t.Fatal("snapshot channel closed unexpectedly")
		}
		if snap.Price != 67000 || snap.Volume != 67000000 || snap.Change != 2.5 {
			t.Errorf("unexpected snapshot: %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestTickerSubscriptionSkipsMalformedMessages(t *testing.T) {
	send := make(chan string, 2)
	srv := wsTestServer(t, send)

	sub, err := SubscribeTicker(wsURL(srv), zap.NewNop())
	if err != nil {
		t.Fatalf("SubscribeTicker failed: %v", err)
	}
	defer sub.Close()

	send <- `garbage`
	send <- `{"c":"68000","v":"10","P":"-0.5"}`

	select {
	case snap := <-sub.Snapshots():
		if snap.Price != 68000 {
			t.Errorf("expected the valid message, got %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestTickerSubscriptionCloseStopsEmissions(t *testing.T) {
	send := make(chan string, 1)
	srv := wsTestServer(t, send)

	sub, err := SubscribeTicker(wsURL(srv), zap.NewNop())
	if err != nil {
		t.Fatalf("SubscribeTicker failed: %v", err)
	}

	// Unsubscribing before any message arrives is valid; nothing may be
	// emitted afterwards even if the server keeps sending.
	sub.Close()
	sub.Close() // idempotent

	send <- `{"c":"67000","v":"1000","P":"2.5"}`

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return // channel closed, no emission observed
			}
			t.Fatalf("received snapshot after Close: %+v", snap)
		case <-deadline:
			t.Fatal("snapshot channel never closed after Close")
		}
	}
}

func TestTradeSubscriptionEmitsTrades(t *testing.T) {
	send := make(chan string, 2)
	srv := wsTestServer(t, send)

	sub, err := SubscribeTrades(wsURL(srv), zap.NewNop())
	if err != nil {
		t.Fatalf("SubscribeTrades failed: %v", err)
	}
	defer sub.Close()

	send <- `{"p":"67000.10","q":"0.002","m":true,"T":1700000000000}`
	send <- `{"p":"67000.20","q":"0.010","m":false,"T":1700000000100}`

	var got []domain.TradeRecord
	for len(got) < 2 {
		select {
		case rec, ok := <-sub.Trades():
			if !ok {
				t.Fatal("trade channel closed unexpectedly")
			}
			got = append(got, rec)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, received %d trades", len(got))
		}
	}

	if got[0].Side != domain.SideSell || got[1].Side != domain.SideBuy {
		t.Errorf("unexpected sides: %s, %s", got[0].Side, got[1].Side)
	}
	if got[0].Time != 1700000000000 || got[1].Time != 1700000000100 {
		t.Errorf("unexpected times: %+v", got)
	}
}

func TestTradeSubscriptionCloseStopsEmissions(t *testing.T) {
	send := make(chan string, 1)
	srv := wsTestServer(t, send)

	sub, err := SubscribeTrades(wsURL(srv), zap.NewNop())
	if err != nil {
		t.Fatalf("SubscribeTrades failed: %v", err)
	}

	sub.Close()
	send <- `{"p":"67000.10","q":"0.002","m":true,"T":1700000000000}`

	deadline := time.After(2 * time.Second)
	for {
		select {
		case rec, ok := <-sub.Trades():
			if !ok {
				return
			}
			t.Fatalf("received trade after Close: %+v", rec)
		case <-deadline:
			t.Fatal("trade channel never closed after Close")
		}
	}
}
