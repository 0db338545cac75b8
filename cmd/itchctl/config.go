package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/marketwire/internal/protocol/cboefx"
	"github.com/danmuck/marketwire/internal/protocol/session"
	"github.com/danmuck/marketwire/internal/protocol/wire"
)

// itchctl.toml key mapping.
type fileConfig struct {
	Addr                string        `toml:"addr"`
	AdminListenAddr     string        `toml:"admin_listen_addr"`
	AdminCORSOrigins    []string      `toml:"admin_cors_origins"`
	LoginName           string        `toml:"login_name"`
	Password            string        `toml:"password"`
	CurrencyPairs       []string      `toml:"currency_pairs"`
	HeartbeatInterval   string        `toml:"heartbeat_interval"`
	HeartbeatTimeout    string        `toml:"heartbeat_timeout"`
	RxBufferCapacity    int           `toml:"rx_buffer_capacity"`
	MaxConnectAttempts  int           `toml:"max_connect_attempts"`
	SessionSecurityMode string        `toml:"session_security_mode"`
	SessionTLSEnabled   bool          `toml:"session_tls_enabled"`
	SessionTLSMutual    bool          `toml:"session_tls_mutual"`
	SessionTLSCertFile  string        `toml:"session_tls_cert_file"`
	SessionTLSKeyFile   string        `toml:"session_tls_key_file"`
	SessionTLSCAFile    string        `toml:"session_tls_ca_file"`
	SessionTLSServer    string        `toml:"session_tls_server_name"`
	Orders              []orderConfig `toml:"orders"`
}

// orderConfig is one resting order of the book served by `itchctl serve`.
type orderConfig struct {
	CurrencyPair string `toml:"currency_pair"`
	Side         string `toml:"side"`
	Price        string `toml:"price"`
	Amount       uint64 `toml:"amount"`
	MinQty       uint64 `toml:"min_qty"`
	LotSize      uint64 `toml:"lot_size"`
	OrderID      string `toml:"order_id"`
}

type appConfig struct {
	Addr             string
	AdminListenAddr  string
	AdminCORSOrigins []string
	LoginName        string
	Password         string
	CurrencyPairs    []string
	Orders           []cboefx.SnapshotEntry
	Session          session.Config
}

func defaultAppConfig() appConfig {
	return appConfig{
		Addr:    "127.0.0.1:9100",
		Session: session.DefaultConfig(),
	}
}

// loadConfig overlays path onto the defaults. An empty path yields defaults.
func loadConfig(path string) (appConfig, error) {
	cfg := defaultAppConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return appConfig{}, fmt.Errorf("load itchctl config: %w", err)
	}

	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("admin_listen_addr") {
		cfg.AdminListenAddr = strings.TrimSpace(raw.AdminListenAddr)
	}
	if meta.IsDefined("admin_cors_origins") {
		cfg.AdminCORSOrigins = raw.AdminCORSOrigins
	}
	if meta.IsDefined("login_name") {
		cfg.LoginName = raw.LoginName
	}
	if meta.IsDefined("password") {
		cfg.Password = raw.Password
	}
	if meta.IsDefined("currency_pairs") {
		cfg.CurrencyPairs = trimAll(raw.CurrencyPairs)
	}
	if meta.IsDefined("heartbeat_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.HeartbeatInterval))
		if err != nil {
			return appConfig{}, fmt.Errorf("load itchctl config: heartbeat_interval: %w", err)
		}
		cfg.Session.HeartbeatInterval = d
	}
	if meta.IsDefined("heartbeat_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.HeartbeatTimeout))
		if err != nil {
			return appConfig{}, fmt.Errorf("load itchctl config: heartbeat_timeout: %w", err)
		}
		cfg.Session.HeartbeatTimeout = d
	}
	if meta.IsDefined("rx_buffer_capacity") {
		cfg.Session.RxBufferCapacity = raw.RxBufferCapacity
	}
	if meta.IsDefined("max_connect_attempts") {
		cfg.Session.MaxConnectAttempts = raw.MaxConnectAttempts
	}
	if meta.IsDefined("session_security_mode") {
		cfg.Session.SecurityMode = session.SecurityMode(strings.TrimSpace(raw.SessionSecurityMode))
	}
	if meta.IsDefined("session_tls_enabled") {
		cfg.Session.TLS.Enabled = raw.SessionTLSEnabled
	}
	if meta.IsDefined("session_tls_mutual") {
		cfg.Session.TLS.Mutual = raw.SessionTLSMutual
	}
	if meta.IsDefined("session_tls_cert_file") {
		cfg.Session.TLS.CertFile = strings.TrimSpace(raw.SessionTLSCertFile)
	}
	if meta.IsDefined("session_tls_key_file") {
		cfg.Session.TLS.KeyFile = strings.TrimSpace(raw.SessionTLSKeyFile)
	}
	if meta.IsDefined("session_tls_ca_file") {
		cfg.Session.TLS.CAFile = strings.TrimSpace(raw.SessionTLSCAFile)
	}
	if meta.IsDefined("session_tls_server_name") {
		cfg.Session.TLS.ServerName = strings.TrimSpace(raw.SessionTLSServer)
	}

	for i, o := range raw.Orders {
		en, err := o.entry()
		if err != nil {
			return appConfig{}, fmt.Errorf("load itchctl config: orders[%d]: %w", i, err)
		}
		cfg.Orders = append(cfg.Orders, en)
	}
	cboefx.SortEntries(cfg.Orders)
	if len(cfg.CurrencyPairs) == 0 {
		cfg.CurrencyPairs = pairsOf(cfg.Orders)
	}

	cfg.Session = cfg.Session.WithDefaults()
	return cfg, nil
}

func (o orderConfig) entry() (cboefx.SnapshotEntry, error) {
	var side cboefx.Side
	switch strings.ToLower(strings.TrimSpace(o.Side)) {
	case "b", "buy", "bid":
		side = cboefx.Buy
	case "s", "sell", "offer", "ask":
		side = cboefx.Sell
	default:
		return cboefx.SnapshotEntry{}, fmt.Errorf("%w: %q", cboefx.ErrInvalidSide, o.Side)
	}
	price, err := wire.ParseASCIIDecimal([]byte(o.Price), cboefx.PriceScale)
	if err != nil {
		return cboefx.SnapshotEntry{}, fmt.Errorf("price: %w", err)
	}
	return cboefx.SnapshotEntry{
		CurrencyPair: strings.TrimSpace(o.CurrencyPair),
		Side:         side,
		Price:        price,
		Amount:       o.Amount,
		MinQty:       o.MinQty,
		LotSize:      o.LotSize,
		OrderID:      strings.TrimSpace(o.OrderID),
	}, nil
}

func pairsOf(entries []cboefx.SnapshotEntry) []string {
	var pairs []string
	for _, en := range entries {
		if len(pairs) == 0 || pairs[len(pairs)-1] != en.CurrencyPair {
			pairs = append(pairs, en.CurrencyPair)
		}
	}
	return pairs
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
