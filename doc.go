// Package coinbaseconnector provides an authenticated Coinbase Pro connector:
// a signed REST gateway for account, order and conversion endpoints, and a
// streaming market-data session that drives user-supplied trading strategies.
//
// The library is split into small packages with a single owner for each
// concern:
//
//   - pkg/exchanges/coinbase: the request gateway. It signs every request with
//     HMAC-SHA256 over timestamp||method||path||body, attaches the CB-ACCESS-*
//     headers, and normalizes the exchange's dual success/error JSON shapes
//     into typed results and errors.
//
//   - pkg/websocket: the streaming session. A thin state machine over a single
//     TLS WebSocket connection exposing Connect, Disconnect, Subscribe,
//     Unsubscribe and a blocking ReadNext. It performs no JSON interpretation,
//     so the same primitive serves the ticker drive loop and the level2 feed
//     reader.
//
//   - pkg/strategy: the drive loop. It reads frames from a session, maintains
//     an in-memory per-product market snapshot cache, and invokes the strategy
//     callback with a gateway handle and the current state. One logical thread
//     of control; the cache needs no locking by construction.
//
//   - pkg/exchanges/interfaces: shared wire-contract types (accounts, orders,
//     conversions), the Gateway interface, and the error taxonomy.
//
// # Errors
//
// Gateway and session failures are reported as *interfaces.RequestError with
// one of four kinds:
//
//   - KindInvalidRequest: malformed input rejected before any network call, or
//     an application error reported by the exchange (its message is attached)
//   - KindInternal: local serialization/deserialization failure, malformed
//     API secret
//   - KindNetwork: transport-level failure (refused, timeout, TLS)
//   - KindNotConnected: a streaming operation attempted on a disconnected
//     session
//
// Use errors.As to recover the typed error, or the KindOf helper:
//
//	if interfaces.KindOf(err) == interfaces.KindInvalidRequest {
//	    log.Printf("exchange rejected request: %v", err)
//	}
//
// # Example
//
// A minimal strategy that sells on a price threshold:
//
//	creds := coinbase.Credentials{
//	    BaseURL:    "https://api-public.sandbox.pro.coinbase.com",
//	    FeedURL:    "wss://ws-feed.pro.coinbase.com",
//	    Key:        os.Getenv("COINBASE_API_KEY"),
//	    Passphrase: os.Getenv("COINBASE_API_PASSPHRASE"),
//	    Secret:     os.Getenv("COINBASE_API_SECRET"),
//	}
//
//	client, err := coinbase.NewClient(coinbase.Config{Credentials: creds})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session := websocket.NewSession(websocket.Config{URL: creds.FeedURL})
//	if err := session.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Disconnect()
//
//	if err := session.Subscribe([]string{"BTC-USD"}, []string{"ticker"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	type counters struct{ trades int }
//
//	driver := strategy.New(client, session, func(ctx context.Context, gw interfaces.Gateway, st *strategy.State[*counters]) {
//	    snap, ok := st.Products["BTC-USD"]
//	    if !ok || st.UserData.trades >= 5 {
//	        return
//	    }
//	    if snap.Price.GreaterThan(decimal.NewFromInt(30000)) {
//	        if _, err := gw.PlaceOrder(ctx, interfaces.MarketOrder(interfaces.Sell, "BTC-USD", "0.001")); err == nil {
//	            st.UserData.trades++
//	        }
//	    }
//	}, &counters{})
//
//	if err := driver.Run(ctx); err != nil {
//	    log.Printf("drive loop stopped: %v", err)
//	}
//
// The drive loop terminates cleanly when the exchange closes the socket;
// reconnecting (and replaying the subscription) is the caller's decision.
package coinbaseconnector
