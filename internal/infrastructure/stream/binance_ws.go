package stream

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vitos/bitcoin_resonance/internal/domain"
	"go.uber.org/zap"
)

const (
	BinanceWSBaseURL = "wss://stream.binance.com:9443"

	TickerStreamPath = "/ws/btcusdt@ticker"
	TradeStreamPath  = "/ws/btcusdt@trade"
)

// parseTickerMessage maps one @ticker payload to a snapshot. Binance
// reports base-asset volume (v); it is converted to USD by multiplying
// with the last price (c).
func parseTickerMessage(msg []byte) (domain.MarketSnapshot, error) {
	var payload struct {
		LastPrice string `json:"c"`
		Volume    string `json:"v"`
		Change    string `json:"P"`
	}
	if err := json.Unmarshal(msg, &payload); err != nil {
		return domain.MarketSnapshot{}, &domain.UpstreamSchemaError{Provider: "binance-ws", Reason: err.Error()}
	}

	price, err := strconv.ParseFloat(payload.LastPrice, 64)
	if err != nil {
		return domain.MarketSnapshot{}, &domain.UpstreamSchemaError{Provider: "binance-ws", Reason: "cannot parse c " + payload.LastPrice}
	}
	volume, err := strconv.ParseFloat(payload.Volume, 64)
	if err != nil {
		return domain.MarketSnapshot{}, &domain.UpstreamSchemaError{Provider: "binance-ws", Reason: "cannot parse v " + payload.Volume}
	}
	change, err := strconv.ParseFloat(payload.Change, 64)
	if err != nil {
		return domain.MarketSnapshot{}, &domain.UpstreamSchemaError{Provider: "binance-ws", Reason: "cannot parse P " + payload.Change}
	}

	return domain.MarketSnapshot{
		Price:  price,
		Volume: price * volume,
		Change: change,
	}, nil
}

// parseTradeMessage maps one @trade payload to a trade record. The
// maker flag (m) inverts: buyer-is-maker means the taker sold.
func parseTradeMessage(msg []byte) (domain.TradeRecord, error) {
	var payload struct {
		Price        string `json:"p"`
		Quantity     string `json:"q"`
		IsBuyerMaker bool   `json:"m"`
		Time         int64  `json:"T"`
	}
	if err := json.Unmarshal(msg, &payload); err != nil {
		return domain.TradeRecord{}, &domain.UpstreamSchemaError{Provider: "binance-ws", Reason: err.Error()}
	}

	price, err := strconv.ParseFloat(payload.Price, 64)
	if err != nil {
		return domain.TradeRecord{}, &domain.UpstreamSchemaError{Provider: "binance-ws", Reason: "cannot parse p " + payload.Price}
	}
	qty, err := strconv.ParseFloat(payload.Quantity, 64)
	if err != nil {
		return domain.TradeRecord{}, &domain.UpstreamSchemaError{Provider: "binance-ws", Reason: "cannot parse q " + payload.Quantity}
	}

	side := domain.SideBuy
	if payload.IsBuyerMaker {
		side = domain.SideSell
	}

	return domain.TradeRecord{Price: price, Quantity: qty, Side: side, Time: payload.Time}, nil
}

// TickerSubscription is a live ticker stream. Snapshots are delivered
// on a latest-wins channel: an unconsumed snapshot is replaced rather
// than buffered, since only the most recent reading matters. The
// subscriber that opened the subscription must Close it exactly once;
// repeated Close calls are no-ops.
type TickerSubscription struct {
	conn      *websocket.Conn
	out       chan domain.MarketSnapshot
	done      chan struct{}
	closeOnce sync.Once
	logger    *zap.Logger
}

// SubscribeTicker dials the ticker stream and starts the read loop.
func SubscribeTicker(url string, logger *zap.Logger) (*TickerSubscription, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, &domain.StreamError{Err: err}
	}

	s := &TickerSubscription{
		conn:   conn,
		out:    make(chan domain.MarketSnapshot, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
	go s.readLoop()
	return s, nil
}

// Snapshots is closed when the subscription ends, whether by Close or
// by a stream error. No reconnection happens here; a new subscription
// must be dialed for that.
func (s *TickerSubscription) Snapshots() <-chan domain.MarketSnapshot {
	return s.out
}

func (s *TickerSubscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

func (s *TickerSubscription) readLoop() {
	defer close(s.out)

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				// Intentional teardown.
			default:
				s.logger.Warn("ticker stream closed", zap.Error(&domain.StreamError{Err: err}))
			}
			return
		}

		snap, err := parseTickerMessage(msg)
		if err != nil {
			s.logger.Warn("skipping malformed ticker message", zap.Error(err))
			continue
		}

		select {
		case <-s.done:
			return
		default:
		}

		// Drop a stale unconsumed snapshot before publishing the new
		// one. With a single producer the send cannot block.
		select {
		case <-s.out:
		default:
		}
		select {
		case s.out <- snap:
		default:
		}
	}
}

// TradeSubscription is a live taker-trade stream. Unlike the ticker
// channel every trade is delivered; capping and ordering of the
// retained list is the subscriber's concern.
type TradeSubscription struct {
	conn      *websocket.Conn
	out       chan domain.TradeRecord
	done      chan struct{}
	closeOnce sync.Once
	logger    *zap.Logger
}

func SubscribeTrades(url string, logger *zap.Logger) (*TradeSubscription, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, &domain.StreamError{Err: err}
	}

	s := &TradeSubscription{
		conn:   conn,
		out:    make(chan domain.TradeRecord, 16),
		done:   make(chan struct{}),
		logger: logger,
	}
	go s.readLoop()
	return s, nil
}

func (s *TradeSubscription) Trades() <-chan domain.TradeRecord {
	return s.out
}

func (s *TradeSubscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

func (s *TradeSubscription) readLoop() {
	defer close(s.out)

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.logger.Warn("trade stream closed", zap.Error(&domain.StreamError{Err: err}))
			}
			return
		}

		rec, err := parseTradeMessage(msg)
		if err != nil {
			s.logger.Warn("skipping malformed trade message", zap.Error(err))
			continue
		}

		select {
		case s.out <- rec:
		case <-s.done:
			return
		}
	}
}
