package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/warehouse/internal/core/observability/log"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 5 * time.Second
	wsMaxMessage   = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type wsPeer struct {
	conn *websocket.Conn
}

func (p *wsPeer) Read() ([]byte, error) {
	_ = p.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	_, b, err := p.conn.ReadMessage()
	return b, err
}

func (p *wsPeer) Write(b []byte) error {
	_ = p.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return p.conn.WriteMessage(websocket.TextMessage, b)
}

func (p *wsPeer) Close() error { return p.conn.Close() }

func (p *wsPeer) RemoteAddr() string { return p.conn.RemoteAddr().String() }

// handleWebSocket upgrades /ws and serves one agent until it disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", log.Error(err))
		return
	}
	conn.SetReadLimit(wsMaxMessage)
	s.serve(s.baseContext(r.Context()), &wsPeer{conn: conn})
}

// baseContext ties a connection to the server lifetime rather than the
// request, which net/http cancels only when the handler returns.
func (s *Server) baseContext(fallback context.Context) context.Context {
	if ctx := s.runCtx.Load(); ctx != nil {
		return *ctx
	}
	return fallback
}

// Handler exposes the websocket endpoint for embedding and tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}
