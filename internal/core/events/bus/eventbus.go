package bus

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type event struct {
	typ    string
	source string
	at     time.Time
	data   any
}

func (e event) Type() string         { return e.typ }
func (e event) Source() string       { return e.source }
func (e event) Timestamp() time.Time { return e.at }
func (e event) Data() any            { return e.data }

func NewEvent(typ, src string, data any) Event {
	return event{typ: typ, source: src, at: time.Now(), data: data}
}

type subscription struct {
	id      string
	typ     string
	handler EventHandler
	bus     *inMemoryBus
}

func (s *subscription) ID() string { return s.id }

func (s *subscription) Cancel() error {
	s.bus.remove(s)
	return nil
}

// inMemoryBus keeps handlers per event type in subscription order. The lock
// is released before delivery so handlers may publish or subscribe.
type inMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]*subscription
}

func New() EventBus {
	return &inMemoryBus{handlers: make(map[string][]*subscription)}
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, errors.New("bus: nil handler")
	}
	s := &subscription{id: uuid.NewString(), typ: eventType, handler: handler, bus: b}
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], s)
	b.mu.Unlock()
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := slices.DeleteFunc(slices.Clone(b.handlers[s.typ]), func(o *subscription) bool { return o == s })
	if len(subs) == 0 {
		delete(b.handlers, s.typ)
		return
	}
	b.handlers[s.typ] = subs
}

func (b *inMemoryBus) Publish(e Event) error {
	b.mu.RLock()
	subs := b.handlers[e.Type()]
	b.mu.RUnlock()

	var all error
	for _, s := range subs {
		if err := s.handler(e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}
