package server

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/core/events/bus"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/economy"
	"github.com/zeusync/warehouse/internal/session"
)

// Hub forwards agent-addressed bus events to that agent's connection. Bus
// handlers run on the frame loop, so delivery never blocks: a full queue
// drops the push.
type Hub struct {
	logger log.Log

	mu    sync.RWMutex
	peers map[models.AgentID]chan []byte
	subs  []bus.Subscription
}

func NewHub(logger log.Log) *Hub {
	if logger == nil {
		logger = log.Nop()
	}
	return &Hub{
		logger: logger.With(log.String("component", "hub")),
		peers:  make(map[models.AgentID]chan []byte),
	}
}

// Listen subscribes to every push the gateways understand.
func (h *Hub) Listen(events bus.EventBus) error {
	routes := map[string]func(any) (models.AgentID, Message, bool){
		session.EventPlayAnimation: func(d any) (models.AgentID, Message, bool) {
			a, ok := d.(session.Animation)
			return a.Agent, Message{Type: TypePlayAnimation, Tag: a.Tag}, ok
		},
		session.EventStopAnimation: func(d any) (models.AgentID, Message, bool) {
			a, ok := d.(session.Animation)
			return a.Agent, Message{Type: TypeStopAnimation}, ok
		},
		session.EventToggleDriving: func(d any) (models.AgentID, Message, bool) {
			v, ok := d.(session.Driving)
			return v.Agent, Message{Type: TypeToggleDriving, Driving: &v.Driving}, ok
		},
		economy.EventBalanceChanged: func(d any) (models.AgentID, Message, bool) {
			v, ok := d.(economy.BalanceChanged)
			return v.Agent, Message{Type: TypeScore, Balance: &v.Balance}, ok
		},
	}
	for typ, route := range routes {
		sub, err := events.Subscribe(typ, func(e bus.Event) error {
			agent, msg, ok := route(e.Data())
			if !ok {
				return errors.Errorf("hub: unexpected %s payload %T", typ, e.Data())
			}
			msg.Agent = agent.String()
			h.Push(agent, msg)
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "hub: subscribe %s", typ)
		}
		h.subs = append(h.subs, sub)
	}
	return nil
}

func (h *Hub) Register(agent models.AgentID, out chan []byte) {
	h.mu.Lock()
	h.peers[agent] = out
	h.mu.Unlock()
}

func (h *Hub) Unregister(agent models.AgentID) {
	h.mu.Lock()
	delete(h.peers, agent)
	h.mu.Unlock()
}

// Push queues msg for agent. It reports false when the agent is not connected
// or its queue is full.
func (h *Hub) Push(agent models.AgentID, msg Message) bool {
	h.mu.RLock()
	out, ok := h.peers[agent]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	select {
	case out <- encode(msg):
		return true
	default:
		h.logger.Warn("push dropped", log.Stringer("agent", agent), log.String("type", msg.Type))
		return false
	}
}

func (h *Hub) Close() {
	for _, sub := range h.subs {
		_ = sub.Cancel()
	}
	h.subs = nil
}
