package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/danmuck/marketwire/internal/auth"
	"github.com/danmuck/marketwire/internal/observability"
	"github.com/danmuck/marketwire/internal/protocol/cboefx"
	"github.com/danmuck/marketwire/internal/protocol/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errLoggedOut = errors.New("itchctl: client logged out")

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a configured book to one client at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := session.Listen(cfg.Addr, cfg.Session)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.Addr, err)
			}
			return newFeed(cfg).serve(ctx, ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config file")

	return cmd
}

// feed serves the configured book. Sessions are handled one at a time.
type feed struct {
	cfg      appConfig
	auth     auth.Validator
	accepted atomic.Int64
	logins   atomic.Int64
	active   atomic.Int64
}

func newFeed(cfg appConfig) *feed {
	return &feed{cfg: cfg, auth: auth.Static{LoginName: cfg.LoginName, Password: cfg.Password}}
}

func (f *feed) status() any {
	return map[string]any{
		"addr":           f.cfg.Addr,
		"currency_pairs": f.cfg.CurrencyPairs,
		"orders":         len(f.cfg.Orders),
		"accepted":       f.accepted.Load(),
		"logins":         f.logins.Load(),
		"active":         f.active.Load(),
	}
}

// serve accepts sessions on ln until ctx is done. ln is closed on return.
func (f *feed) serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	if f.cfg.AdminListenAddr != "" {
		admin := observability.NewAdmin("itchctl", f.cfg.AdminListenAddr, f.cfg.AdminCORSOrigins, f.status)
		go func() {
			if err := admin.Serve(ctx); err != nil {
				log.Error().Err(err).Msg("admin listener stopped")
			}
		}()
	}
	log.Info().Str("addr", ln.Addr().String()).Int("orders", len(f.cfg.Orders)).Msg("feed listening")

	for {
		srv, err := session.Accept(ctx, ln, f.cfg.Session, &publisher{feed: f})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warn().Err(err).Msg("accept failed")
			continue
		}
		f.accepted.Add(1)
		f.active.Add(1)
		err = drive(ctx, srv.Session)
		f.active.Add(-1)
		switch {
		case err == nil, errors.Is(err, errLoggedOut):
			log.Info().Str("session", srv.ID()).Msg("session finished")
		default:
			log.Warn().Str("session", srv.ID()).Err(err).Msg("session failed")
		}
	}
}

// publisher answers the requests of one client session.
type publisher struct {
	feed     *feed
	loggedIn bool
}

func (p *publisher) Handle(s *session.Server, m session.ClientMessage) error {
	if login, ok := m.(*session.LoginRequest); ok {
		return p.login(s, login)
	}
	if !p.loggedIn {
		return s.NotifyError("login required")
	}

	switch m := m.(type) {
	case session.LogoutRequest:
		if err := s.EndSession(); err != nil {
			return err
		}
		return errLoggedOut
	case session.InstrumentDirectoryRequest:
		return s.InstrumentDirectory(p.feed.cfg.CurrencyPairs)
	case *session.MarketSnapshotRequest:
		return p.snapshot(s, m.CurrencyPair)
	case *session.MarketDataSubscribeRequest:
		s.Logger().Info().Str("pair", m.CurrencyPair).Msg("market data subscribe")
	case *session.MarketDataUnsubscribeRequest:
		s.Logger().Info().Str("pair", m.CurrencyPair).Msg("market data unsubscribe")
	case *session.TickerSubscribeRequest:
		s.Logger().Info().Str("pair", m.CurrencyPair).Msg("ticker subscribe")
	case *session.TickerUnsubscribeRequest:
		s.Logger().Info().Str("pair", m.CurrencyPair).Msg("ticker unsubscribe")
	}
	return nil
}

func (p *publisher) HeartbeatTimeout(s *session.Server) error {
	return errHeartbeatTimeout
}

func (p *publisher) login(s *session.Server, m *session.LoginRequest) error {
	if err := p.feed.auth.Validate(m.LoginName, m.Password); err != nil {
		s.Logger().Warn().Str("login", m.LoginName).Err(err).Msg("login rejected")
		return s.Reject("invalid credentials")
	}
	p.loggedIn = true
	p.feed.logins.Add(1)
	s.Logger().Info().Str("login", m.LoginName).Msg("login accepted")
	return s.Accept(1)
}

func (p *publisher) snapshot(s *session.Server, pair string) error {
	var entries []cboefx.SnapshotEntry
	for _, en := range p.feed.cfg.Orders {
		if en.CurrencyPair == pair {
			entries = append(entries, en)
		}
	}
	payload, err := cboefx.AppendSnapshot(nil, entries)
	if err != nil {
		return err
	}
	return s.SendSequenced(session.FormatSequencedTime(time.Now()), payload)
}
