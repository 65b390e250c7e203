package session

import (
	"github.com/zeusync/warehouse/internal/core/events/bus"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/economy"
)

// Pushes addressed to a single agent. Gateways subscribe to these.
const (
	EventPlayAnimation = "session.play_animation"
	EventStopAnimation = "session.stop_animation"
	EventToggleDriving = "session.toggle_driving"
)

const source = "session"

type Animation struct {
	Agent models.AgentID `json:"agent"`
	Tag   string         `json:"tag,omitempty"`
}

type Driving struct {
	Agent   models.AgentID `json:"agent"`
	Driving bool           `json:"driving"`
}

// busOutlet turns fire-and-forget collaborator calls into bus events.
type busOutlet struct {
	events bus.EventBus
	logger log.Log
}

func (o busOutlet) publish(typ string, data any) {
	if err := o.events.Publish(bus.NewEvent(typ, source, data)); err != nil {
		o.logger.Warn("event handler failed", log.String("event", typ), log.Error(err))
	}
}

func (o busOutlet) PlayCarryAnimation(agent models.AgentID, tag string) {
	o.publish(EventPlayAnimation, Animation{Agent: agent, Tag: tag})
}

func (o busOutlet) StopAnimation(agent models.AgentID) {
	o.publish(EventStopAnimation, Animation{Agent: agent})
}

func (o busOutlet) ToggleDriving(agent models.AgentID, driving bool) {
	o.publish(EventToggleDriving, Driving{Agent: agent, Driving: driving})
}

func (o busOutlet) AddScore(agent models.AgentID, amount int64) {
	o.publish(economy.EventScoreAwarded, economy.ScoreAwarded{Agent: agent, Amount: amount, Source: "collector"})
}
