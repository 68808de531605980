package strategy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/veiloq/coinbase-connector/pkg/exchanges/interfaces"
	"github.com/veiloq/coinbase-connector/pkg/logging"
	"github.com/veiloq/coinbase-connector/pkg/websocket"
)

// Option configures a Driver.
type Option func(*options)

type options struct {
	logger    logging.Logger
	pacing    time.Duration
	queueSize int
}

// WithLogger sets the driver's logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithPacing inserts a fixed delay between loop iterations. This is a
// pacing hint only; correctness and ordering never depend on it, and the
// default of zero is right whenever the transport blocks on read.
func WithPacing(d time.Duration) Option {
	return func(o *options) { o.pacing = d }
}

// WithWorkerQueue decouples callback execution from frame reading: cache
// updates and callback invocations are dispatched onto a bounded queue
// consumed by a single worker goroutine. The reader blocks when the queue is
// full (backpressure), and the single consumer preserves arrival order, so
// the per-product in-order guarantee holds unchanged. Use this when the
// strategy makes blocking gateway calls and inbound frames must keep
// draining meanwhile.
func WithWorkerQueue(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.queueSize = size
		}
	}
}

// Driver runs the drive loop for one streaming session: read a frame, parse
// it, replace the product's snapshot in the cache, invoke the strategy.
//
// A driver exclusively owns its frame source and its State; it is the only
// mutator of the cache, which is why the cache needs no locking. Run may be
// called once.
type Driver[T any] struct {
	gateway  interfaces.Gateway
	source   websocket.FrameReader
	strategy Func[T]
	state    *State[T]
	opts     options
}

// New creates a driver. userData seeds State.UserData and travels with the
// cache into every callback invocation.
func New[T any](gw interfaces.Gateway, source websocket.FrameReader, fn Func[T], userData T, opts ...Option) *Driver[T] {
	o := options{logger: logging.NewLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Driver[T]{
		gateway:  gw,
		source:   source,
		strategy: fn,
		state: &State[T]{
			Products: make(map[string]ProductSnapshot),
			UserData: userData,
		},
		opts: o,
	}
}

// State exposes the cache, e.g. for inspection after Run returns. It must
// not be read while Run is executing.
func (d *Driver[T]) State() *State[T] {
	return d.state
}

// Run executes the drive loop until the stream ends. It returns nil when the
// session closes gracefully (peer close frame or local disconnect), the
// context's error when cancelled, and the read error when the socket dies.
// Per-message parse failures are recovered locally: a malformed frame is
// dropped and the loop continues.
func (d *Driver[T]) Run(ctx context.Context) error {
	apply := d.applySync

	if d.opts.queueSize > 0 {
		jobs := make(chan ProductSnapshot, d.opts.queueSize)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for snapshot := range jobs {
				d.applySync(ctx, snapshot)
			}
		}()
		defer func() {
			close(jobs)
			wg.Wait()
		}()
		apply = func(ctx context.Context, snapshot ProductSnapshot) {
			jobs <- snapshot
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := d.source.ReadNext()
		if errors.Is(err, interfaces.ErrSessionClosed) {
			d.opts.logger.Info("feed closed, stopping drive loop")
			return nil
		}
		if err != nil {
			return err
		}

		// Non-text frames (pings, binary) carry no market data.
		if !frame.IsText() {
			continue
		}

		snapshot, result := parseTicker(frame.Data)
		switch result {
		case parseSkip:
			continue
		case parseDrop:
			d.opts.logger.Warn("dropping ticker with unexpected shape",
				logging.Int("bytes", len(frame.Data)))
			continue
		}

		apply(ctx, snapshot)

		if d.opts.pacing > 0 {
			time.Sleep(d.opts.pacing)
		}
	}
}

// applySync replaces the product's snapshot and invokes the callback. In
// queue mode this runs on the worker goroutine, which then exclusively owns
// the State.
func (d *Driver[T]) applySync(ctx context.Context, snapshot ProductSnapshot) {
	d.state.Products[snapshot.ProductID] = snapshot
	d.strategy(ctx, d.gateway, d.state)
}
