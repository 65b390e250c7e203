// Package economy keeps per-agent score ledgers. Balances are loaded on join,
// saved on leave, and every credit is journaled.
package economy

import (
	"context"
	stderrors "errors"
	"slices"
	"sync"

	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/core/events/bus"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
)

// Service is safe for concurrent use; gateways query balances while the
// simulation credits them.
type Service struct {
	store   Store
	journal Journal
	events  bus.EventBus
	logger  log.Log

	mu      sync.Mutex
	order   []models.AgentID
	balance map[models.AgentID]int64
	joining map[models.AgentID]struct{}
	sub     bus.Subscription
}

func NewService(store Store, journal Journal, events bus.EventBus, logger log.Log) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	if journal == nil {
		journal = NopJournal
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:   store,
		journal: journal,
		events:  events,
		logger:  logger.With(log.String("component", "economy")),
		balance: make(map[models.AgentID]int64),
		joining: make(map[models.AgentID]struct{}),
	}
}

// Listen credits agents for every ScoreAwarded event on the bus.
func (s *Service) Listen() error {
	if s.events == nil || s.sub != nil {
		return nil
	}
	sub, err := s.events.Subscribe(EventScoreAwarded, func(e bus.Event) error {
		award, ok := e.Data().(ScoreAwarded)
		if !ok {
			return errors.Errorf("economy: unexpected payload %T", e.Data())
		}
		s.credit(award.Agent, award.Amount, award.Source)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "economy: subscribe")
	}
	s.sub = sub
	return nil
}

// Join loads any stored balance and then opens the agent's ledger. A failed
// load leaves no trace, so the agent may retry.
func (s *Service) Join(ctx context.Context, agent models.AgentID) (int64, error) {
	s.mu.Lock()
	if _, ok := s.balance[agent]; ok {
		s.mu.Unlock()
		return 0, ErrAlreadyJoined
	}
	if _, ok := s.joining[agent]; ok {
		s.mu.Unlock()
		return 0, ErrAlreadyJoined
	}
	s.joining[agent] = struct{}{}
	s.mu.Unlock()

	stored, _, err := s.store.Load(ctx, agent)

	s.mu.Lock()
	delete(s.joining, agent)
	if err == nil {
		s.balance[agent] = stored
		s.order = append(s.order, agent)
	}
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("load ledger failed", log.Stringer("agent", agent), log.Error(err))
		return 0, err
	}
	s.logger.Info("ledger opened", log.Stringer("agent", agent), log.Int64("balance", stored))
	s.publish(agent, stored)
	return stored, nil
}

// Leave saves the agent's ledger and closes it once the save succeeds. On a
// failed save the ledger stays open with its balance intact.
func (s *Service) Leave(ctx context.Context, agent models.AgentID) error {
	for {
		s.mu.Lock()
		balance, ok := s.balance[agent]
		s.mu.Unlock()
		if !ok {
			return ErrUnknownAgent
		}

		if err := s.store.Save(ctx, agent, balance); err != nil {
			s.logger.Error("save ledger failed", log.Stringer("agent", agent), log.Error(err))
			return err
		}

		s.mu.Lock()
		current, still := s.balance[agent]
		if still && current != balance {
			// Credited while saving; save again.
			s.mu.Unlock()
			continue
		}
		delete(s.balance, agent)
		s.order = slices.DeleteFunc(s.order, func(a models.AgentID) bool { return a == agent })
		s.mu.Unlock()
		if !still {
			return ErrUnknownAgent
		}
		s.logger.Info("ledger saved", log.Stringer("agent", agent), log.Int64("balance", balance))
		return nil
	}
}

// AddScore credits agent. Agents without a ledger are skipped.
func (s *Service) AddScore(agent models.AgentID, amount int64) {
	s.credit(agent, amount, "")
}

func (s *Service) credit(agent models.AgentID, amount int64, source string) {
	s.mu.Lock()
	balance, ok := s.balance[agent]
	if ok {
		balance += amount
		s.balance[agent] = balance
	}
	s.mu.Unlock()
	if !ok {
		s.logger.Warn("credit for agent without ledger", log.Stringer("agent", agent), log.Int64("amount", amount))
		return
	}
	if err := s.journal.Append(Entry{Agent: agent, Amount: amount, Balance: balance, Source: source}); err != nil {
		s.logger.Error("journal append failed", log.Error(err))
	}
	s.publish(agent, balance)
}

func (s *Service) publish(agent models.AgentID, balance int64) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(bus.NewEvent(EventBalanceChanged, "economy", BalanceChanged{Agent: agent, Balance: balance}))
	if err != nil {
		s.logger.Warn("balance event failed", log.Error(err))
	}
}

func (s *Service) Balance(agent models.AgentID) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.balance[agent]
	return v, ok
}

// FirstEligible is the earliest joined agent that still holds a ledger.
func (s *Service) FirstEligible() (models.AgentID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return models.NoAgent, false
	}
	return s.order[0], true
}

func (s *Service) Agents() []models.AgentID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// Close saves every open ledger and releases the store and journal.
func (s *Service) Close(ctx context.Context) error {
	if s.sub != nil {
		_ = s.sub.Cancel()
	}
	var errs []error
	for _, agent := range s.Agents() {
		if err := s.Leave(ctx, agent); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.journal.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Wrap(stderrors.Join(errs...), "economy: close")
	}
	return nil
}
