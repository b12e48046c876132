// Package sse streams site rebuild notifications to preview clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Event types emitted by the broker.
const (
	TypeIndexRebuilt      = "index.rebuilt"
	TypeCategoriesUpdated = "categories.updated"
)

const (
	clientBuffer   = 64
	defaultHistory = 16
	// retryHint is the reconnect delay suggested to EventSource clients.
	retryHint = 3 * time.Second
)

// Event is one message broadcast to every client.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Rebuild describes a finished index build.
type Rebuild struct {
	Items   int       `json:"items"`
	Skipped int       `json:"skipped"`
	At      time.Time `json:"at"`
}

// frame is an encoded event together with its sequence number.
type frame struct {
	id  uint64
	raw []byte
}

type subscription struct {
	ch    chan []byte
	after uint64
}

// Broker fans events out to connected SSE clients.
//
// The run goroutine owns the client set, the sequence counter, the replay
// history and the categories throttle. Everything else reaches it through
// channels.
type Broker struct {
	categoriesMin time.Duration
	heartbeat     time.Duration
	history       int

	join    chan subscription
	leave   chan chan []byte
	events  chan Event
	rebuilt chan Rebuild
	count   chan chan int

	quit    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithHeartbeat sets the interval of keep-alive comments sent to idle
// clients. Zero disables them.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) { b.heartbeat = d }
}

// WithHistory sets how many recent frames are kept for Last-Event-ID
// replay. Zero disables replay.
func WithHistory(n int) Option {
	return func(b *Broker) {
		if n >= 0 {
			b.history = n
		}
	}
}

// NewBroker starts a broker. categoriesThrottle is the minimum spacing
// between categories.updated events.
func NewBroker(categoriesThrottle time.Duration, opts ...Option) *Broker {
	if categoriesThrottle <= 0 {
		categoriesThrottle = 2 * time.Second
	}
	b := &Broker{
		categoriesMin: categoriesThrottle,
		heartbeat:     30 * time.Second,
		history:       defaultHistory,
		join:          make(chan subscription),
		leave:         make(chan chan []byte),
		events:        make(chan Event, 256),
		rebuilt:       make(chan Rebuild, 64),
		count:         make(chan chan int),
		quit:          make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		seq            uint64
		recent         []frame
		lastCategories time.Time
	)

	send := func(ch chan []byte, raw []byte) {
		select {
		case ch <- raw:
		default:
			// slow client, drop
		}
	}

	emit := func(ev Event) {
		payload, err := json.Marshal(ev.Data)
		if err != nil {
			return
		}
		seq++
		f := frame{id: seq, raw: fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", seq, ev.Type, payload)}
		if b.history > 0 {
			recent = append(recent, f)
			if len(recent) > b.history {
				recent = recent[len(recent)-b.history:]
			}
		}
		for ch := range clients {
			send(ch, f.raw)
		}
	}

	for {
		select {
		case <-b.quit:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.join:
			clients[sub.ch] = struct{}{}
			if sub.after > 0 {
				for _, f := range recent {
					if f.id > sub.after {
						send(sub.ch, f.raw)
					}
				}
			}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case ev := <-b.events:
			emit(ev)

		case rb := <-b.rebuilt:
			emit(Event{Type: TypeIndexRebuilt, Data: rb})
			if rb.At.Sub(lastCategories) >= b.categoriesMin {
				lastCategories = rb.At
				emit(Event{Type: TypeCategoriesUpdated, Data: map[string]string{}})
			}

		case resp := <-b.count:
			resp <- len(clients)
		}
	}
}

// Close stops the event loop and closes all client channels. Safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.quit)
	}
	<-b.stopped
}

// Subscribe registers a client and returns its message channel.
func (b *Broker) Subscribe() chan []byte {
	return b.SubscribeAfter(0)
}

// SubscribeAfter registers a client and first replays the retained frames
// whose id is greater than lastID.
func (b *Broker) SubscribeAfter(lastID uint64) chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- subscription{ch: ch, after: lastID}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish broadcasts an arbitrary event.
func (b *Broker) Publish(ev Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.events <- ev:
	case <-b.stopped:
	}
}

// PublishRebuild announces a finished index build, followed by a throttled
// categories.updated event.
func (b *Broker) PublishRebuild(items, skipped int) {
	if b.closed.Load() {
		return
	}
	select {
	case b.rebuilt <- Rebuild{Items: items, Skipped: skipped, At: time.Now()}:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client until it disconnects or the
// broker closes. A Last-Event-ID header resumes after that event.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	lastID, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryHint.Milliseconds())
	flusher.Flush()

	ch := b.SubscribeAfter(lastID)
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.heartbeat > 0 {
		t := time.NewTicker(b.heartbeat)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
