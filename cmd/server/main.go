package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vitos/bitcoin_resonance/internal/domain"
	"github.com/vitos/bitcoin_resonance/internal/infrastructure/logger"
	"github.com/vitos/bitcoin_resonance/internal/infrastructure/provider"
	"github.com/vitos/bitcoin_resonance/internal/infrastructure/storage"
	"github.com/vitos/bitcoin_resonance/internal/infrastructure/stream"
	"github.com/vitos/bitcoin_resonance/internal/usecase"
	"github.com/vitos/bitcoin_resonance/internal/web"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Providers struct {
		Snapshot       string `yaml:"snapshot"` // coingecko | coingecko-detail | binance | coincap
		CoinGeckoURL   string `yaml:"coingecko_url"`
		BinanceURL     string `yaml:"binance_url"`
		CoinCapURL     string `yaml:"coincap_url"`
		AlternativeURL string `yaml:"alternative_url"`
	} `yaml:"providers"`
	Stream struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
		Symbol  string `yaml:"symbol"`
	} `yaml:"stream"`
	Polling struct {
		SnapshotMs int `yaml:"snapshot_ms"`
		TradesMs   int `yaml:"trades_ms"`
	} `yaml:"polling"`
	Throttle struct {
		AltcoinsMs  int `yaml:"altcoins_ms"`
		HistoryMs   int `yaml:"history_ms"`
		SentimentMs int `yaml:"sentiment_ms"`
	} `yaml:"throttle"`
	Trades struct {
		Limit int `yaml:"limit"`
	} `yaml:"trades"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func snapshotProvider(cfg *Config) domain.SnapshotProvider {
	switch cfg.Providers.Snapshot {
	case "coingecko-detail":
		return provider.NewCoinGeckoDetail(cfg.Providers.CoinGeckoURL)
	case "binance":
		return provider.NewBinance(cfg.Providers.BinanceURL, cfg.Stream.Symbol, cfg.Trades.Limit)
	case "coincap":
		return provider.NewCoinCap(cfg.Providers.CoinCapURL)
	default:
		return provider.NewCoinGecko(cfg.Providers.CoinGeckoURL)
	}
}

func main() {
	// 1. Load Config
	cfg, err := loadConfig("config/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Storage
	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath = "resonance.db"
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	// 4. Init Providers
	coingecko := provider.NewCoinGecko(cfg.Providers.CoinGeckoURL)
	binance := provider.NewBinance(cfg.Providers.BinanceURL, cfg.Stream.Symbol, cfg.Trades.Limit)
	alternative := provider.NewAlternative(cfg.Providers.AlternativeURL)

	// 5. Init Service
	svc := usecase.NewMarketService(
		snapshotProvider(cfg),
		binance,
		coingecko,
		coingecko,
		alternative,
		store,
		cfg.Trades.Limit,
		usecase.ThrottleIntervals{
			Altcoins:  time.Duration(cfg.Throttle.AltcoinsMs) * time.Millisecond,
			History:   time.Duration(cfg.Throttle.HistoryMs) * time.Millisecond,
			Sentiment: time.Duration(cfg.Throttle.SentimentMs) * time.Millisecond,
		},
		log,
	)

	// 6. Start Polling
	snapshotEvery := time.Duration(cfg.Polling.SnapshotMs) * time.Millisecond
	if snapshotEvery <= 0 {
		snapshotEvery = 10 * time.Second
	}
	tradesEvery := time.Duration(cfg.Polling.TradesMs) * time.Millisecond
	if tradesEvery <= 0 {
		tradesEvery = 3 * time.Second
	}

	snapshotPoll := usecase.StartPoller(snapshotEvery, svc.PollSnapshot)
	defer snapshotPoll.Stop()
	tradesPoll := usecase.StartPoller(tradesEvery, svc.PollTrades)
	defer tradesPoll.Stop()

	// 7. Connect Streams
	if cfg.Stream.Enabled {
		base := cfg.Stream.URL
		if base == "" {
			base = stream.BinanceWSBaseURL
		}
		symbol := strings.ToLower(cfg.Stream.Symbol)
		if symbol == "" {
			symbol = "btcusdt"
		}

		tickerSub, err := stream.SubscribeTicker(base+"/ws/"+symbol+"@ticker", log)
		if err != nil {
			log.Error("Failed to subscribe to ticker stream", zap.Error(err))
		} else {
			defer tickerSub.Close()
			go func() {
				for snap := range tickerSub.Snapshots() {
					svc.ApplyStreamSnapshot(snap)
				}
				log.Info("Ticker stream ended")
			}()
		}

		tradeSub, err := stream.SubscribeTrades(base+"/ws/"+symbol+"@trade", log)
		if err != nil {
			log.Error("Failed to subscribe to trade stream", zap.Error(err))
		} else {
			defer tradeSub.Close()
			go func() {
				for rec := range tradeSub.Trades() {
					svc.ApplyStreamTrade(rec)
				}
				log.Info("Trade stream ended")
			}()
		}
	}

	// 8. Init Web Server
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	server := web.NewServer(port, svc, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 9. Wait for Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}
