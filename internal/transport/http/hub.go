package http

import (
	"context"
	"fmt"
	"sync"

	"chatquiz-service/internal/game"
)

// Hub tracks live websocket chat sessions and implements game.Outbound by
// routing engine pushes (timeout notices, reports) to the user's connection.
// Users without a live connection fall back to the secondary channel, e.g.
// the chat platform's HTTP write endpoint.
type Hub struct {
	fallback game.Outbound

	mu    sync.RWMutex
	conns map[string]chan string
}

func NewHub(fallback game.Outbound) *Hub {
	return &Hub{
		fallback: fallback,
		conns:    make(map[string]chan string),
	}
}

// register claims the push channel for userID. The returned func releases it;
// a newer registration for the same user is left untouched.
func (h *Hub) register(userID string) (chan string, func()) {
	ch := make(chan string, 16)
	h.mu.Lock()
	h.conns[userID] = ch
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		if cur, ok := h.conns[userID]; ok && cur == ch {
			delete(h.conns, userID)
		}
		h.mu.Unlock()
	}
}

func (h *Hub) Send(ctx context.Context, userID, address, text string) error {
	h.mu.RLock()
	ch, ok := h.conns[userID]
	h.mu.RUnlock()
	if ok {
		select {
		case ch <- text:
			return nil
		default:
			return fmt.Errorf("chat session for user %s is not keeping up", userID)
		}
	}
	if h.fallback != nil {
		return h.fallback.Send(ctx, userID, address, text)
	}
	return fmt.Errorf("no delivery route for user %s", userID)
}
