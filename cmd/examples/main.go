// Command examples runs a minimal trading bot: it streams ticker updates for
// the configured products and places a market sell once the price crosses the
// configured threshold, up to a trade cap.
//
// Credentials come from the environment (a .env file is honored):
//
//	COINBASE_API_KEY, COINBASE_API_PASSPHRASE, COINBASE_API_SECRET
//
// Everything else comes from the YAML config, bot.yaml by default.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/veiloq/coinbase-connector/pkg/config"
	"github.com/veiloq/coinbase-connector/pkg/exchanges/coinbase"
	"github.com/veiloq/coinbase-connector/pkg/exchanges/interfaces"
	"github.com/veiloq/coinbase-connector/pkg/logging"
	"github.com/veiloq/coinbase-connector/pkg/strategy"
	"github.com/veiloq/coinbase-connector/pkg/websocket"
)

type botData struct {
	cfg    config.Config
	sold   int
	logger logging.Logger
}

func main() {
	configPath := flag.String("config", "bot.yaml", "path to the bot config")
	flag.Parse()

	// Missing .env is fine; the variables may come from the real environment.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewLogger().Error("config load failed", logging.Error(err))
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	defer func() {
		if closer, ok := logger.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}()

	client, err := coinbase.NewClient(coinbase.Config{
		Credentials: coinbase.Credentials{
			BaseURL:    cfg.RestURL,
			FeedURL:    cfg.FeedURL,
			Key:        os.Getenv("COINBASE_API_KEY"),
			Passphrase: os.Getenv("COINBASE_API_PASSPHRASE"),
			Secret:     os.Getenv("COINBASE_API_SECRET"),
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error("client setup failed", logging.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := websocket.NewSession(websocket.Config{
		URL:    cfg.FeedURL,
		Logger: logger,
	})
	if err := session.Connect(ctx); err != nil {
		logger.Error("feed connect failed", logging.Error(err))
		os.Exit(1)
	}
	if err := session.Subscribe(cfg.Products, cfg.Channels); err != nil {
		logger.Error("subscribe failed", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("streaming",
		logging.Int("products", len(cfg.Products)),
		logging.Int("channels", len(cfg.Channels)),
	)

	// Disconnect on SIGINT/SIGTERM; the drive loop observes the closed
	// stream and returns nil.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down")
		_ = session.Disconnect()
	}()

	driver := strategy.New(client, session, sellAbove, botData{
		cfg:    cfg,
		logger: logger,
	}, strategy.WithLogger(logger))

	if err := driver.Run(ctx); err != nil {
		logger.Error("drive loop failed", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("done", logging.Int("trades", driver.State().UserData.sold))
}

// sellAbove places a market sell for each product whose price exceeds the
// configured threshold, stopping at the trade cap.
func sellAbove(ctx context.Context, gw interfaces.Gateway, state *strategy.State[botData]) {
	data := &state.UserData
	if data.sold >= data.cfg.Trade.MaxTrades {
		return
	}

	for _, product := range data.cfg.Products {
		snapshot, ok := state.Products[product]
		if !ok || !snapshot.Price.GreaterThan(data.cfg.Trade.PriceAbove.Decimal) {
			continue
		}
		spec := interfaces.MarketOrder(interfaces.Sell, product, data.cfg.Trade.Size.String())
		resp, err := gw.PlaceOrder(ctx, spec)
		if err != nil {
			data.logger.Error("order rejected",
				logging.String("product", product),
				logging.Error(err),
			)
			continue
		}
		data.sold++
		data.logger.Info("placed sell",
			logging.String("product", product),
			logging.String("order_id", resp.ID),
			logging.String("price", snapshot.Price.String()),
		)
		if data.sold >= data.cfg.Trade.MaxTrades {
			return
		}
	}
}

func newLogger(cfg config.Log) logging.Logger {
	opts := []logging.ZapOption{
		logging.WithLogLevel(logging.ParseLevel(cfg.Level)),
	}
	if cfg.File != "" {
		opts = append(opts, logging.WithRotatingFile(cfg.File, cfg.MaxSizeMB, cfg.MaxBackups))
	}
	return logging.NewZapLogger(opts...)
}
