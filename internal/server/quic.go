package server

import (
	"bufio"
	"context"
	"crypto/tls"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"

	"github.com/zeusync/warehouse/internal/core/observability/log"
)

// ALPN is the application protocol negotiated on the QUIC gateway.
const ALPN = "warehouse-json"

// quicPeer speaks newline delimited JSON on the first bidirectional stream of
// a connection.
type quicPeer struct {
	conn   *quic.Conn
	stream *quic.Stream
	reader *bufio.Reader
}

func (p *quicPeer) Read() ([]byte, error) {
	line, err := p.reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, err
	}
	return line, nil
}

func (p *quicPeer) Write(b []byte) error {
	_, err := p.stream.Write(append(b, '\n'))
	return err
}

func (p *quicPeer) Close() error {
	_ = p.stream.Close()
	return p.conn.CloseWithError(0, "bye")
}

func (p *quicPeer) RemoteAddr() string { return p.conn.RemoteAddr().String() }

func (s *Server) serveQUIC(ctx context.Context, addr string, tlsConf *tls.Config) error {
	listener, err := quic.ListenAddr(addr, tlsConf, &quic.Config{
		MaxIdleTimeout:  s.cfg.IdleTimeout,
		KeepAlivePeriod: s.cfg.IdleTimeout / 3,
	})
	if err != nil {
		return errors.Wrapf(ErrListenerFailed, "quic %s: %v", addr, err)
	}
	bound := listener.Addr()
	s.udpAddr.Store(&bound)
	s.logger.Info("quic gateway listening", log.String("addr", bound.String()))
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "quic accept")
		}
		go func() {
			stream, err := conn.AcceptStream(ctx)
			if err != nil {
				s.logger.Debug("quic stream not opened", log.Error(err))
				_ = conn.CloseWithError(1, "no stream")
				return
			}
			s.serve(ctx, &quicPeer{conn: conn, stream: stream, reader: bufio.NewReader(stream)})
		}()
	}
}
