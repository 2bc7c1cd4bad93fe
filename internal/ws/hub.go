package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/campusworks/review-portal/internal/config"
	"github.com/campusworks/review-portal/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Hub fans attendance events out to connected dashboard clients. Events
// arrive over a Redis channel, so every server instance sees changes made
// through any other instance.
type Hub struct {
	rdb    *redis.Client
	logger zerolog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	send   chan AttendanceMessage
	review int // -1 subscribes to every review
}

// NewHub creates a new Hub.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rdb:     rdb,
		logger:  log.With().Str("component", "attendance_hub").Logger(),
		clients: make(map[*client]struct{}),
	}
}

// Run subscribes to the attendance channel and dispatches events until the
// context is cancelled. Intended to run as a goroutine from main.
func (h *Hub) Run(ctx context.Context) {
	sub := h.rdb.Subscribe(ctx, config.CacheKey.AttendanceChannel())
	defer sub.Close()

	h.logger.Info().Msg("attendance hub started")
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Msg("attendance hub stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event model.AttendanceEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Warn().Err(err).Msg("malformed attendance event")
				continue
			}
			h.broadcast(event)
		}
	}
}

// Subscribe registers a client interested in one review (or all reviews
// when review is negative) and returns its event channel plus a cancel
// function. A slow client that fills its buffer misses events rather than
// blocking the hub.
func (h *Hub) Subscribe(review int) (<-chan AttendanceMessage, func()) {
	c := &client{
		send:   make(chan AttendanceMessage, 16),
		review: review,
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.clients[c]; ok {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
	}
	return c.send, cancel
}

func (h *Hub) broadcast(event model.AttendanceEvent) {
	msg := AttendanceMessage{Event: EventAttendance, Data: event}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.review >= 0 && c.review != event.ReviewNumber {
			continue
		}
		select {
		case c.send <- msg:
		default:
		}
	}
}
