package server

import (
	"context"

	"github.com/pkg/errors"

	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/session"
)

const outboundQueue = 64

// Sim is the part of the session the gateways drive.
type Sim interface {
	Join(ctx context.Context, agent models.AgentID) (int64, error)
	Leave(ctx context.Context, agent models.AgentID) error
	Submit(ctx context.Context, cmd session.Command) error
}

// peer is one framed, bidirectional client stream.
type peer interface {
	Read() ([]byte, error)
	Write(b []byte) error
	Close() error
	RemoteAddr() string
}

// serve runs the protocol over p: a join handshake, then commands until the
// stream ends. Writes go through one goroutine so replies and pushes never
// interleave.
func (s *Server) serve(ctx context.Context, p peer) {
	defer func() { _ = p.Close() }()
	logger := s.logger.With(log.String("remote_addr", p.RemoteAddr()))

	raw, err := p.Read()
	if err != nil {
		return
	}
	hello, err := decode(raw)
	if err == nil && hello.Type != string(session.CmdJoin) {
		err = ErrNotJoined
	}
	agent := models.NewAgentID()
	if err == nil && hello.Agent != "" {
		agent, err = models.ParseAgentID(hello.Agent)
	}
	if err != nil {
		_ = p.Write(encode(failure(hello.Seq, err)))
		logger.Debug("handshake rejected", log.Error(err))
		return
	}
	balance, err := s.sim.Join(ctx, agent)
	if err != nil {
		_ = p.Write(encode(failure(hello.Seq, err)))
		logger.Warn("join failed", log.Stringer("agent", agent), log.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	out := make(chan []byte, outboundQueue)
	out <- encode(Message{Type: TypeWelcome, Seq: hello.Seq, Agent: agent.String(), Balance: &balance})
	s.hub.Register(agent, out)
	logger = logger.With(log.Stringer("agent", agent))
	logger.Info("client connected")

	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = p.Close()
				return
			case b := <-out:
				if err := p.Write(b); err != nil {
					cancel()
					_ = p.Close()
					return
				}
			}
		}
	}()

	for ctx.Err() == nil {
		raw, err := p.Read()
		if err != nil {
			break
		}
		msg, err := decode(raw)
		if err != nil {
			s.reply(out, failure(0, err))
			continue
		}
		if msg.Type == string(session.CmdLeave) {
			break
		}
		cmd, err := msg.command(agent)
		if err == nil {
			err = s.sim.Submit(ctx, cmd)
		}
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Debug("command failed", log.String("type", msg.Type), log.Error(err))
			}
			s.reply(out, failure(msg.Seq, err))
			continue
		}
		s.reply(out, ack(msg.Seq))
	}

	s.hub.Unregister(agent)
	leaveCtx, done := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.LeaveTimeout)
	defer done()
	if err := s.sim.Leave(leaveCtx, agent); err != nil && !errors.Is(err, session.ErrClosed) {
		logger.Warn("leave failed", log.Error(err))
	}
	logger.Info("client disconnected")
}

func (s *Server) reply(out chan []byte, m Message) {
	select {
	case out <- encode(m):
	default:
		s.logger.Warn("reply dropped", log.String("type", m.Type))
	}
}
