// Package exchange is the thin, non-core execution collaborator §1/§5/§6
// describe: it turns Plan-derived order intents into live Bybit requests
// and reports placement acks and rejections as discrete, timestamped
// Events on a buffered channel. Nothing in this repository feeds those
// Events into the engine: Engine.ProcessBar takes no collaborator
// events, and cmd/hybridgrid does not use this package. It deliberately does not reimplement any
// of C1-C6 — no grid/DCA/TP logic, no gate or stop state — it only
// speaks the wire protocol.
//
// Grounded on the teacher's internal/exchange/websocket.go
// (WebSocketManager's dial + reader-goroutine + reconnect shape, kept
// almost verbatim since that pattern is exchange-agnostic) and
// internal/exchange/bybit (the real REST client, used here instead of a
// hand-rolled fake per the no-fabricated-dependencies rule).
package exchange

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tranvietduc/hybridgrid-engine/internal/exchange/bybit"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

// EventKind distinguishes the collaborator's event shapes. Only
// EventPlacementAck and EventRejected are emitted by this package.
type EventKind string

const (
	EventPlacementAck EventKind = "PLACEMENT_ACK"
	EventFill         EventKind = "FILL"
	EventRejected     EventKind = "REJECTED"
)

// Event is a single collaborator-reported occurrence, timestamped so the
// core can process them in arrival order without reordering across a
// bar boundary (§5).
type Event struct {
	Kind      EventKind
	OrderID   string
	Timestamp time.Time
	Detail    string
}

// Collaborator places/cancels orders against Bybit and exposes a
// buffered event channel of the outcomes. It keeps no plan or order
// state beyond its failed-cancel bookkeeping — the live-order set of
// record lives in internal/lifecycle, per §5's shared-resource policy.
type Collaborator struct {
	client   *bybit.Client
	category string
	symbol   string

	events chan Event

	mu               sync.Mutex
	pendingCancelled map[string]int // orderID -> cancel calls that failed after their retry; entry means cancel left pending
}

// NewCollaborator wraps a configured Bybit client for one symbol.
func NewCollaborator(client *bybit.Client, category, symbol string) *Collaborator {
	return &Collaborator{
		client:           client,
		category:         category,
		symbol:           symbol,
		events:           make(chan Event, 256),
		pendingCancelled: make(map[string]int),
	}
}

// Events returns the channel of placement-ack and rejection events.
// No code in this repository reads it.
func (c *Collaborator) Events() <-chan Event {
	return c.events
}

// PlaceLimitOrder submits one order intent. Any placement error, a
// timeout included, is reported as a REJECTED event.
func (c *Collaborator) PlaceLimitOrder(ctx context.Context, orderID string, side types.Side, price, qty float64) {
	bybitSide := bybit.OrderSideBuy
	if side == types.SideSell {
		bybitSide = bybit.OrderSideSell
	}

	order, err := c.client.PlaceLimitOrder(ctx, c.category, c.symbol, bybitSide,
		fmt.Sprintf("%g", qty), fmt.Sprintf("%g", price))
	if err != nil {
		c.emit(Event{Kind: EventRejected, OrderID: orderID, Timestamp: time.Now(), Detail: err.Error()})
		return
	}
	c.emit(Event{Kind: EventPlacementAck, OrderID: order.OrderID, Timestamp: time.Now()})
}

// CancelOrder requests cancellation. Per §5, cancellation failures
// (order already filled, etc.) are logged and do not disturb core
// invariants — the subsequent fill event reconciles state — and a
// failed cancel is retried at most once per call then left pending.
func (c *Collaborator) CancelOrder(ctx context.Context, orderID string) {
	err := c.client.CancelOrder(ctx, c.category, c.symbol, orderID)
	if err != nil {
		log.Printf("exchange: cancel %s failed, retrying once: %v", orderID, err)
		err = c.client.CancelOrder(ctx, c.category, c.symbol, orderID)
	}
	if err != nil {
		c.mu.Lock()
		c.pendingCancelled[orderID]++
		c.mu.Unlock()
		log.Printf("exchange: cancel %s failed after retry, leaving pending: %v", orderID, err)
		return
	}
	c.mu.Lock()
	delete(c.pendingCancelled, orderID)
	c.mu.Unlock()
}

func (c *Collaborator) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		log.Printf("exchange: event channel full, dropping %s for %s", ev.Kind, ev.OrderID)
	}
}

// BarFeed reads kline/ticker updates over a websocket and republishes
// them as Bars on a channel, reconnecting on read error. Adapted from
// the teacher's WebSocketManager: same dial+reader-goroutine+reconnect
// shape, narrowed to a single typed Bar channel instead of a
// subscription-callback map, since this collaborator only ever needs
// one stream per symbol.
type BarFeed struct {
	url string

	mu   sync.Mutex
	conn *websocket.Conn

	bars   chan types.Bar
	ctx    context.Context
	cancel context.CancelFunc

	decode func([]byte) (types.Bar, bool)
}

// NewBarFeed creates a feed that dials url lazily on Start. decode turns
// a raw websocket frame into a Bar, returning ok=false for frames that
// are not a kline close event (subscription acks, pings, etc.).
func NewBarFeed(url string, decode func([]byte) (types.Bar, bool)) *BarFeed {
	ctx, cancel := context.WithCancel(context.Background())
	return &BarFeed{
		url:    url,
		bars:   make(chan types.Bar, 64),
		ctx:    ctx,
		cancel: cancel,
		decode: decode,
	}
}

// Bars returns the channel of decoded bars.
func (f *BarFeed) Bars() <-chan types.Bar {
	return f.bars
}

// Start dials the feed and begins reading in the background.
func (f *BarFeed) Start() error {
	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	if err != nil {
		return fmt.Errorf("exchange: dial bar feed: %w", err)
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()

	go f.readLoop()
	return nil
}

// Close stops the feed and closes the underlying connection.
func (f *BarFeed) Close() error {
	f.cancel()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}

func (f *BarFeed) readLoop() {
	for {
		select {
		case <-f.ctx.Done():
			return
		default:
		}

		f.mu.Lock()
		conn := f.conn
		f.mu.Unlock()
		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("exchange: bar feed read error, reconnecting: %v", err)
			f.reconnect()
			continue
		}

		bar, ok := f.decode(message)
		if !ok {
			continue
		}
		select {
		case f.bars <- bar:
		case <-f.ctx.Done():
			return
		}
	}
}

func (f *BarFeed) reconnect() {
	time.Sleep(5 * time.Second)
	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	if err != nil {
		log.Printf("exchange: reconnect failed: %v", err)
		return
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
}
