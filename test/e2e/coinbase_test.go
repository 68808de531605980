package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veiloq/coinbase-connector/pkg/exchanges/coinbase"
	"github.com/veiloq/coinbase-connector/pkg/exchanges/interfaces"
	"github.com/veiloq/coinbase-connector/pkg/logging"
	"github.com/veiloq/coinbase-connector/pkg/strategy"
	"github.com/veiloq/coinbase-connector/pkg/websocket"
)

const (
	sandboxRestURL = "https://api-public.sandbox.pro.coinbase.com"
	sandboxFeedURL = "wss://ws-feed-public.sandbox.pro.coinbase.com"
)

// TestCoinbaseSandbox exercises the gateway and the streaming session
// against the exchange sandbox. It needs sandbox credentials:
//
//	COINBASE_SANDBOX_KEY=... COINBASE_SANDBOX_PASSPHRASE=... \
//	COINBASE_SANDBOX_SECRET=... go test -v ./test/e2e
func TestCoinbaseSandbox(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	key := os.Getenv("COINBASE_SANDBOX_KEY")
	passphrase := os.Getenv("COINBASE_SANDBOX_PASSPHRASE")
	secret := os.Getenv("COINBASE_SANDBOX_SECRET")
	if key == "" || passphrase == "" || secret == "" {
		t.Skip("sandbox credentials not set")
	}

	logger := logging.NewLogger()
	logger.SetLevel(logging.DEBUG)

	client, err := coinbase.NewClient(coinbase.Config{
		Credentials: coinbase.Credentials{
			BaseURL:    sandboxRestURL,
			FeedURL:    sandboxFeedURL,
			Key:        key,
			Passphrase: passphrase,
			Secret:     secret,
		},
		Logger: logger,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	t.Run("GetAccounts", func(t *testing.T) {
		accounts, err := client.GetAccounts(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, accounts)
		for _, account := range accounts {
			require.NotEmpty(t, account.ID)
			require.NotEmpty(t, account.Currency)
		}
	})

	t.Run("GetOrders", func(t *testing.T) {
		_, err := client.GetOrders(ctx, []string{"open", "pending"})
		require.NoError(t, err)
	})

	t.Run("TickerStream", func(t *testing.T) {
		session := websocket.NewSession(websocket.Config{
			URL:    sandboxFeedURL,
			Logger: logger,
		})
		require.NoError(t, session.Connect(ctx))
		defer func() { _ = session.Disconnect() }()

		require.NoError(t, session.Subscribe([]string{"BTC-USD"}, []string{"ticker"}))

		// Let the drive loop process frames briefly, then shut the session
		// down and verify the loop exits cleanly.
		go func() {
			time.Sleep(10 * time.Second)
			_ = session.Disconnect()
		}()

		driver := strategy.New(client, session,
			func(ctx context.Context, gw interfaces.Gateway, state *strategy.State[struct{}]) {},
			struct{}{}, strategy.WithLogger(logger))
		require.NoError(t, driver.Run(ctx))
		require.NotEmpty(t, driver.State().Products)
	})
}
