package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/danmuck/marketwire/internal/observability"
	"github.com/danmuck/marketwire/internal/protocol/cboefx"
	"github.com/danmuck/marketwire/internal/protocol/session"
	"github.com/danmuck/marketwire/internal/protocol/wire"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	errLoginRejected    = errors.New("itchctl: login rejected")
	errEndOfSession     = errors.New("itchctl: end of session")
	errHeartbeatTimeout = errors.New("itchctl: heartbeat timeout")
)

func connectCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Log in to a feed and print decoded book messages",
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
			return runConnect(ctx, cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "feed address, overrides the config file")

	return cmd
}

func runConnect(ctx context.Context, cfg appConfig, out io.Writer) error {
	sub := newSubscriber(cfg, out)
	c, err := session.Dial(ctx, cfg.Addr, cfg.Session, sub)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Addr, err)
	}
	if err := c.Login(&session.LoginRequest{
		LoginName: cfg.LoginName,
		Password:  cfg.Password,
	}); err != nil {
		_ = c.Close()
		return fmt.Errorf("login: %w", err)
	}

	err = drive(ctx, c.Session)
	if errors.Is(err, errEndOfSession) {
		log.Info().Str("session", c.ID()).Msg("feed ended the session")
		return nil
	}
	return err
}

// subscriber prints every book message of the session it is attached to.
type subscriber struct {
	cfg    appConfig
	parser *cboefx.Parser

	mu  sync.Mutex
	out io.Writer
}

func newSubscriber(cfg appConfig, out io.Writer) *subscriber {
	s := &subscriber{cfg: cfg, out: out}
	s.parser = cboefx.NewParser(cboefx.HandlerFunc(s.book))
	return s
}

func (s *subscriber) Handle(c *session.Client, m session.ServerMessage) error {
	switch m := m.(type) {
	case *session.LoginAccepted:
		log.Info().Uint64("sequence", m.SequenceNumber).Msg("login accepted")
		if err := c.RequestInstrumentDirectory(); err != nil {
			return err
		}
		return s.subscribe(c, s.cfg.CurrencyPairs)
	case *session.LoginRejected:
		return fmt.Errorf("%w: %s", errLoginRejected, m.Reason)
	case *session.InstrumentDirectory:
		s.printf("directory %v\n", m.CurrencyPairs)
		if len(s.cfg.CurrencyPairs) == 0 {
			return s.subscribe(c, m.CurrencyPairs)
		}
		return nil
	case *session.SequencedData:
		return s.parser.Parse(m.Payload)
	case *session.ErrorNotification:
		log.Warn().Str("explanation", m.Explanation).Msg("feed error notification")
		s.printf("error %s\n", m.Explanation)
		return nil
	case session.EndOfSession:
		return errEndOfSession
	default:
		return nil
	}
}

func (s *subscriber) HeartbeatTimeout(c *session.Client) error {
	return errHeartbeatTimeout
}

func (s *subscriber) subscribe(c *session.Client, pairs []string) error {
	for _, pair := range pairs {
		if err := c.RequestMarketSnapshot(pair); err != nil {
			return err
		}
		if err := c.SubscribeMarketData(pair); err != nil {
			return err
		}
		if err := c.SubscribeTicker(pair); err != nil {
			return err
		}
		log.Debug().Str("pair", pair).Msg("subscribed")
	}
	return nil
}

func (s *subscriber) book(m cboefx.Message) error {
	switch m := m.(type) {
	case *cboefx.NewOrder:
		observability.RecordDecoded("cboefx", m.Type())
		s.printf("new %s %s %s %s amount=%d min=%d lot=%d\n",
			m.CurrencyPair, m.Side, m.OrderID, price(m.Price), m.Amount, m.MinQty, m.LotSize)
	case *cboefx.ModifyOrder:
		observability.RecordDecoded("cboefx", m.Type())
		s.printf("modify %s %s amount=%d min=%d lot=%d\n",
			m.CurrencyPair, m.OrderID, m.Amount, m.MinQty, m.LotSize)
	case *cboefx.CancelOrder:
		observability.RecordDecoded("cboefx", m.Type())
		s.printf("cancel %s %s\n", m.CurrencyPair, m.OrderID)
	case *cboefx.Ticker:
		observability.RecordDecoded("cboefx", m.Type())
		s.printf("ticker %s %s %s %s %s\n",
			m.CurrencyPair, m.AggressorSide, price(m.Price), m.TransactionDate, m.TransactionTime)
	case cboefx.SnapshotStart:
		observability.RecordDecoded("cboefx", cboefx.MessageTypeMarketSnapshot)
		s.printf("snapshot begin\n")
	case cboefx.SnapshotEntry:
		s.printf("snapshot %s %s %s %s amount=%d min=%d lot=%d\n",
			m.CurrencyPair, m.Side, m.OrderID, price(m.Price), m.Amount, m.MinQty, m.LotSize)
	case cboefx.SnapshotEnd:
		s.printf("snapshot end\n")
	}
	return nil
}

func (s *subscriber) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func price(v int64) string {
	return wire.FormatASCIIDecimal(v, cboefx.PriceScale)
}
