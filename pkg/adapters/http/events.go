package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/weaver/internal/logging"
	"github.com/aretw0/weaver/pkg/domain"
)

// AllTargets is the subscription key that receives events of every target.
const AllTargets = "*"

// Message is one server-sent event.
type Message struct {
	Event string
	Data  []byte
}

// StreamManager fans lifecycle events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Message]struct{} // target -> set of channels
	logger      *slog.Logger
}

// NewStreamManager creates a StreamManager. A nil logger discards output.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Message]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for key (a target "owner.name" or
// AllTargets). The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(key string) (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 16)
	if _, ok := sm.subscribers[key]; !ok {
		sm.subscribers[key] = make(map[chan<- Message]struct{})
	}
	sm.subscribers[key][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[key]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, key)
				}
			}
		})
	}
}

// Broadcast sends msg to the subscribers of target and of AllTargets.
// Slow subscribers miss messages rather than block the caller.
func (sm *StreamManager) Broadcast(target domain.TargetID, msg Message) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for _, key := range []string{target.String(), AllTargets} {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				sm.logger.Warn("SSE: client buffer full, dropping message", "target", target.String())
			}
		}
	}
}

// Hooks returns lifecycle hooks that broadcast every event as JSON.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	binding := func(_ context.Context, e *domain.BindingEvent) {
		sm.publish(e.Type, e.Target, e)
	}
	return domain.LifecycleHooks{
		OnAugment: binding,
		OnDetach:  binding,
		OnRestore: binding,
		OnInvoke: func(_ context.Context, e *domain.InvokeEvent) {
			sm.publish(e.Type, e.Target, e)
		},
	}
}

func (sm *StreamManager) publish(typ domain.EventType, target domain.TargetID, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		sm.logger.Error("SSE: event encode failed", "error", err)
		return
	}
	sm.Broadcast(target, Message{Event: string(typ), Data: data})
}

// SubscribeEvents handles GET /events (SSE). The optional "target" query
// parameter ("owner.name") narrows the stream to one target.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	key := AllTargets
	if raw := r.URL.Query().Get("target"); raw != "" {
		target, err := domain.ParseTargetID(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		key = target.String()
	}

	ch, cancel := s.Streams.Subscribe(key)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE: client subscribed", "key", key)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: client disconnected", "key", key)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}
