package session

import (
	"context"
	"crypto/tls"
	"math/rand"
	"net"
	"time"

	"github.com/rs/zerolog/log"
)

// DialConn opens a TCP or TLS connection to addr, retrying with backoff until
// MaxConnectAttempts is reached (zero retries forever) or ctx is done.
func DialConn(ctx context.Context, addr string, cfg Config) (net.Conn, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.ValidateClientTransport(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var attempt int
	for {
		attempt++
		conn, err := dialOnce(ctx, addr, cfg)
		if err == nil {
			return conn, nil
		}
		log.Warn().Int("attempt", attempt).Str("addr", addr).Err(err).Msg("dial failed")
		if cfg.MaxConnectAttempts > 0 && attempt >= cfg.MaxConnectAttempts {
			return nil, err
		}
		if err := waitBackoff(ctx, cfg.Backoff, attempt, rng); err != nil {
			return nil, err
		}
	}
}

func dialOnce(ctx context.Context, addr string, cfg Config) (net.Conn, error) {
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if !cfg.TLS.Enabled {
		return rawConn, nil
	}

	tlsCfg, err := cfg.clientTLSConfig(addr)
	if err != nil {
		_ = rawConn.Close()
		return nil, err
	}
	conn := tls.Client(rawConn, tlsCfg)
	handshakeCtx, cancel := context.WithTimeout(ctx, cfg.HandshakeTimeout)
	defer cancel()
	if err := conn.HandshakeContext(handshakeCtx); err != nil {
		_ = rawConn.Close()
		return nil, err
	}
	return conn, nil
}

// Dial connects to addr and wraps the connection in a Client.
func Dial(ctx context.Context, addr string, cfg Config, h ClientHandler, opts ...Option) (*Client, error) {
	conn, err := DialConn(ctx, addr, cfg)
	if err != nil {
		return nil, err
	}
	c, err := NewClient(conn, cfg, h, opts...)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	c.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("connected")
	return c, nil
}

// Listen opens a TCP listener, or a TLS listener when cfg.TLS is enabled.
func Listen(addr string, cfg Config) (net.Listener, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.ValidateServerTransport(); err != nil {
		return nil, err
	}
	if !cfg.TLS.Enabled {
		return net.Listen("tcp", addr)
	}
	tlsCfg, err := cfg.serverTLSConfig()
	if err != nil {
		return nil, err
	}
	return tls.Listen("tcp", addr, tlsCfg)
}

// Accept waits for the next connection on ln and wraps it in a Server. TLS
// connections complete their handshake before Accept returns.
func Accept(ctx context.Context, ln net.Listener, cfg Config, h ServerHandler, opts ...Option) (*Server, error) {
	cfg = cfg.WithDefaults()
	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*tls.Conn); ok {
		handshakeCtx, cancel := context.WithTimeout(ctx, cfg.HandshakeTimeout)
		defer cancel()
		if err := tc.HandshakeContext(handshakeCtx); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	s, err := NewServer(conn, cfg, h, opts...)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	s.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("accepted")
	return s, nil
}
