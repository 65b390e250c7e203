package server

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
	"github.com/zeusync/warehouse/internal/session"
)

// Message is the single JSON envelope used in both directions. Requests carry
// a client chosen Seq that the matching ack or error echoes back.
type Message struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq,omitempty"`

	Agent   string    `json:"agent,omitempty"`
	Target  string    `json:"target,omitempty"`
	Other   string    `json:"other,omitempty"`
	Key     string    `json:"key,omitempty"`
	Pressed bool      `json:"pressed,omitempty"`
	Pos     []float64 `json:"pos,omitempty"`
	Yaw     float64   `json:"yaw,omitempty"`

	Tag     string `json:"tag,omitempty"`
	Driving *bool  `json:"driving,omitempty"`
	Balance *int64 `json:"balance,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Replies and pushes.
const (
	TypeWelcome       = "welcome"
	TypeAck           = "ack"
	TypeError         = "error"
	TypePlayAnimation = "play_animation"
	TypeStopAnimation = "stop_animation"
	TypeToggleDriving = "toggle_driving"
	TypeScore         = "score"
)

func decode(raw []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, errors.Wrap(ErrInvalidMessage, err.Error())
	}
	if m.Type == "" {
		return m, errors.Wrap(ErrInvalidMessage, "missing type")
	}
	return m, nil
}

func encode(m Message) []byte {
	b, _ := json.Marshal(m)
	return b
}

// command converts a request into a session command for agent.
func (m Message) command(agent models.AgentID) (session.Command, error) {
	cmd := session.Command{
		Type:    session.CommandType(m.Type),
		Agent:   agent,
		Target:  m.Target,
		Other:   m.Other,
		Key:     m.Key,
		Pressed: m.Pressed,
	}
	if cmd.Type == session.CmdMove {
		if len(m.Pos) != 3 {
			return cmd, errors.Wrap(ErrInvalidMessage, "move needs a three element pos")
		}
		cmd.Pose = physics.Pose{Pos: physics.V(m.Pos[0], m.Pos[1], m.Pos[2]), Yaw: m.Yaw}
	}
	return cmd, nil
}

func ack(seq uint64) Message { return Message{Type: TypeAck, Seq: seq} }

func failure(seq uint64, err error) Message {
	return Message{Type: TypeError, Seq: seq, Error: err.Error()}
}
