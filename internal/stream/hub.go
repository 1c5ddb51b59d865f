// Package stream pushes catalog snapshots to WebSocket clients. Each
// connection subscribes to one store and receives the snapshot produced by
// every mutation, in version order.
package stream

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"jobmate/review-service/internal/catalog"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

// Hub serves the snapshot stream of one store.
type Hub[T any] struct {
	store          *catalog.Store[T]
	log            *zap.Logger
	originPatterns []string

	clients   atomic.Int64
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub returns a Hub for store. originPatterns lists the cross-origin
// hosts allowed to connect; same-origin requests are always accepted.
func NewHub[T any](store *catalog.Store[T], log *zap.Logger, originPatterns ...string) *Hub[T] {
	return &Hub[T]{
		store:          store,
		log:            log,
		originPatterns: originPatterns,
		done:           make(chan struct{}),
	}
}

// Clients returns the number of open connections.
func (h *Hub[T]) Clients() int { return int(h.clients.Load()) }

// Close disconnects every client with StatusGoingAway. New connections are
// closed as soon as they are accepted.
func (h *Hub[T]) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ServeHTTP upgrades the request and streams snapshots until the client
// leaves, falls behind, or the hub closes.
func (h *Hub[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	h.clients.Add(1)
	defer h.clients.Add(-1)

	// The stream is one-way; CloseRead handles control frames and cancels
	// ctx when the peer goes away.
	ctx := conn.CloseRead(context.Background())

	send := make(chan catalog.Snapshot[T], sendBuffer)
	slow := make(chan struct{})
	var slowOnce sync.Once
	push := func(snap catalog.Snapshot[T]) {
		select {
		case send <- snap:
		default:
			slowOnce.Do(func() { close(slow) })
		}
	}

	unsubscribe := h.store.Subscribe(push)
	defer unsubscribe()
	push(h.store.Snapshot())

	var (
		last  uint64
		first = true
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case <-slow:
			h.log.Info("dropping slow stream client")
			conn.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with updates")
			return
		case snap := <-send:
			// The initial snapshot can race with a concurrent mutation;
			// anything not newer than what was sent is stale.
			if !first && snap.Version <= last {
				continue
			}
			first, last = false, snap.Version
			if err := writeSnapshot(ctx, conn, snap); err != nil {
				if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
					h.log.Warn("stream write failed", zap.Error(err))
				}
				return
			}
		}
	}
}

func writeSnapshot[T any](ctx context.Context, conn *websocket.Conn, snap catalog.Snapshot[T]) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(ctx, conn, snap)
}
