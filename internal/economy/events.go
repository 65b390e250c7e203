package economy

import "github.com/zeusync/warehouse/internal/core/models"

// Bus event types exchanged with the simulation and the gateways.
const (
	EventScoreAwarded   = "economy.score_awarded"
	EventBalanceChanged = "economy.balance_changed"
)

// ScoreAwarded asks the economy to credit an agent.
type ScoreAwarded struct {
	Agent  models.AgentID `json:"agent"`
	Amount int64          `json:"amount"`
	Source string         `json:"source,omitempty"`
}

// BalanceChanged is published after every credit and on join.
type BalanceChanged struct {
	Agent   models.AgentID `json:"agent"`
	Balance int64          `json:"balance"`
}
