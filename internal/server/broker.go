package server

import (
	"encoding/json"
	"sync"
)

// Broker is an in-process pub/sub of session views, keyed by game ID. Both
// the SSE stream and the WebSocket feed subscribe to it.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded views of the game.
func (b *Broker) Subscribe(gameID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[gameID] == nil {
		b.subs[gameID] = make(map[chan []byte]struct{})
	}
	b.subs[gameID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the game's subscribers.
func (b *Broker) Unsubscribe(gameID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[gameID], ch)
	if len(b.subs[gameID]) == 0 {
		delete(b.subs, gameID)
	}
	b.mu.Unlock()
}

// CloseGame closes every subscription of the game so its streams end.
// Unsubscribe stays safe to call on a closed channel.
func (b *Broker) CloseGame(gameID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[gameID] {
		close(ch)
	}
	delete(b.subs, gameID)
}

// Publish sends a view to every subscriber of the game. Slow subscribers
// miss updates; views carry a version so the next one supersedes them.
func (b *Broker) Publish(gameID string, view SessionView) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.subs[gameID]) == 0 {
		return
	}

	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	for ch := range b.subs[gameID] {
		select {
		case ch <- data:
		default:
		}
	}
}

func (b *Broker) Subscribers(gameID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[gameID])
}
