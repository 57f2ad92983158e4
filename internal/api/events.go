package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"allswell/internal/planner"
)

type client struct {
	uid string
	ch  chan []byte
}

// Broker fans planner session events out to each user's connected SSE
// clients.
//
// Concurrency model: a single internal event loop owns the client set; public
// methods talk to it through channels, so no mutexes are required.
type Broker struct {
	subscribeCh   chan client
	unsubscribeCh chan client
	publishCh     chan publishReq

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

type publishReq struct {
	uid string
	ev  planner.Event
}

func NewBroker() *Broker {
	b := &Broker{
		subscribeCh:   make(chan client),
		unsubscribeCh: make(chan client),
		publishCh:     make(chan publishReq, 256),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]string)

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case c := <-b.subscribeCh:
			clients[c.ch] = c.uid

		case c := <-b.unsubscribeCh:
			if _, ok := clients[c.ch]; ok {
				delete(clients, c.ch)
				close(c.ch)
			}

		case req := <-b.publishCh:
			payload, err := json.Marshal(req.ev)
			if err != nil {
				continue
			}
			raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", req.ev.Type, payload))
			for ch, uid := range clients {
				if uid != req.uid {
					continue
				}
				select {
				case ch <- raw:
				default:
					// Client buffer full; skip to avoid blocking the loop.
				}
			}
		}
	}
}

// Publish delivers an event to every client of one user.
func (b *Broker) Publish(uid string, ev planner.Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- publishReq{uid: uid, ev: ev}:
	case <-b.stopped:
	}
}

// Close stops the loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

func (b *Broker) subscribe(uid string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- client{uid: uid, ch: ch}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

func (b *Broker) unsubscribe(uid string, ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- client{uid: uid, ch: ch}:
	case <-b.stopped:
	}
}

// ServeHTTP streams the authenticated user's events (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("authentication required"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.subscribe(identity.UID)
	defer b.unsubscribe(identity.UID, ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
