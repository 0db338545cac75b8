package session

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/marketwire/internal/observability"
	"github.com/danmuck/marketwire/internal/protocol"
	"github.com/danmuck/marketwire/internal/protocol/wire"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Trailer terminates every session packet.
const Trailer byte = 0x0A

var (
	ErrSessionClosed  = errors.New("session: closed")
	ErrTrailerInBody  = errors.New("session: packet body contains trailer byte")
	ErrNilHandler     = errors.New("session: nil handler")
	ErrDirectoryLimit = errors.New("session: too many currency pairs in directory")
)

type Role string

const (
	RoleClient Role = "client"
	RoleServer Role = "server"
)

// Clock supplies the session's notion of now for heartbeat bookkeeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

type Option func(*Session)

func WithClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.baseLog = &l }
}

// WithID overrides the generated session id used in logs.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session frames line-feed terminated packets over a byte stream. It starts
// no goroutines: the owner drives Receive and KeepAlive.
//
// Receive and KeepAlive may run on different goroutines. Sends are
// serialized internally.
type Session struct {
	id    string
	role  Role
	rw    io.ReadWriteCloser
	cfg   Config
	clock Clock

	baseLog *zerolog.Logger
	log     zerolog.Logger

	rx  []byte
	rxN int

	heartbeatType byte
	dispatch      func(messageType byte, body []byte) error
	timeout       func() error

	lastRx atomic.Int64

	txMu   sync.Mutex
	lastTx time.Time

	closed atomic.Bool
}

func newSession(role Role, rw io.ReadWriteCloser, cfg Config, heartbeatType byte, opts ...Option) *Session {
	cfg = cfg.WithDefaults()
	s := &Session{
		id:            xid.New().String(),
		role:          role,
		rw:            rw,
		cfg:           cfg,
		clock:         SystemClock,
		rx:            make([]byte, cfg.RxBufferCapacity),
		heartbeatType: heartbeatType,
	}
	for _, opt := range opts {
		opt(s)
	}
	base := log.Logger
	if s.baseLog != nil {
		base = *s.baseLog
	}
	s.log = base.With().Str("session", s.id).Str("role", string(role)).Logger()

	now := s.clock.Now()
	s.lastRx.Store(now.UnixNano())
	s.lastTx = now
	observability.SessionOpened(string(role))
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Role() Role {
	return s.role
}

func (s *Session) Config() Config {
	return s.cfg
}

// Logger returns the session scoped logger.
func (s *Session) Logger() *zerolog.Logger {
	return &s.log
}

// Receive performs one read and dispatches every complete packet it makes
// available. It returns the number of bytes read; zero or less means no
// progress and err tells why (io.EOF at end of stream).
//
// A packet that cannot fit in the receive buffer yields
// protocol.ErrFrameTooLarge. That error and unrecognized message types are
// fatal: the caller should close the session.
func (s *Session) Receive() (int, error) {
	if s.closed.Load() {
		return 0, ErrSessionClosed
	}
	n, err := s.rw.Read(s.rx[s.rxN:])
	if n <= 0 {
		return n, s.transportError(err)
	}
	observability.RecordBytes(string(s.role), "rx", n)
	s.rxN += n

	off := 0
	for s.rxN-off >= 2 {
		i := bytes.IndexByte(s.rx[off+1:s.rxN], Trailer)
		if i < 0 {
			break
		}
		messageType := s.rx[off]
		body := s.rx[off+1 : off+1+i]
		observability.RecordPacket(string(s.role), "rx", messageType)
		if perr := s.dispatch(messageType, body); perr != nil {
			s.compact(off + 2 + i)
			return n, s.packetError(messageType, perr)
		}
		off += 2 + i
	}
	s.compact(off)

	if s.rxN == len(s.rx) {
		observability.RecordSessionError(string(s.role), "frame_too_large")
		s.log.Warn().Int("capacity", len(s.rx)).Msg("packet exceeds receive buffer")
		return n, fmt.Errorf("session: %w: no trailer within %d bytes", protocol.ErrFrameTooLarge, len(s.rx))
	}

	s.lastRx.Store(s.clock.Now().UnixNano())
	return n, s.transportError(err)
}

func (s *Session) compact(off int) {
	if off == 0 {
		return
	}
	s.rxN = copy(s.rx, s.rx[off:s.rxN])
}

func (s *Session) packetError(messageType byte, err error) error {
	var unknown *protocol.UnrecognizedMessageTypeError
	switch {
	case errors.As(err, &unknown):
		observability.RecordSessionError(string(s.role), "unrecognized_type")
		s.log.Warn().Str("type", string(rune(messageType))).Msg("unrecognized message type")
	case errors.Is(err, protocol.ErrUnderflow):
		observability.RecordSessionError(string(s.role), "underflow")
		s.log.Warn().Str("type", string(rune(messageType))).Err(err).Msg("short packet")
	}
	return err
}

func (s *Session) transportError(err error) error {
	if err == nil {
		return nil
	}
	if s.closed.Load() {
		return ErrSessionClosed
	}
	return err
}

// send writes [type][payloads...][trailer] as one vectored write.
func (s *Session) send(messageType byte, payloads ...[]byte) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	bufs := make(net.Buffers, 0, len(payloads)+2)
	bufs = append(bufs, []byte{messageType})
	for _, p := range payloads {
		if bytes.IndexByte(p, Trailer) >= 0 {
			return ErrTrailerInBody
		}
		if len(p) > 0 {
			bufs = append(bufs, p)
		}
	}
	bufs = append(bufs, []byte{Trailer})

	s.txMu.Lock()
	defer s.txMu.Unlock()
	n, err := bufs.WriteTo(s.rw)
	observability.RecordBytes(string(s.role), "tx", int(n))
	if err != nil {
		return s.transportError(err)
	}
	s.lastTx = s.clock.Now()
	observability.RecordPacket(string(s.role), "tx", messageType)
	return nil
}

// sendPacket encodes p and sends it with any trailing payload buffers.
func (s *Session) sendPacket(p packet, payloads ...[]byte) error {
	w := wire.NewWriter(make([]byte, p.size()))
	p.encode(w)
	if err := w.Err(); err != nil {
		return fmt.Errorf("session: encode %T: %w", p, err)
	}
	return s.send(p.Type(), append([][]byte{w.Bytes()}, payloads...)...)
}

// KeepAlive sends a heartbeat once HeartbeatInterval has passed without a
// send, and runs the heartbeat timeout handler once HeartbeatTimeout has
// passed without a receive. The handler fires once per silent window: the
// receive timer restarts when it runs.
func (s *Session) KeepAlive() error {
	now := s.clock.Now()

	s.txMu.Lock()
	idle := now.Sub(s.lastTx)
	s.txMu.Unlock()
	if idle > s.cfg.HeartbeatInterval {
		if err := s.send(s.heartbeatType); err != nil {
			return err
		}
		s.log.Debug().Dur("idle", idle).Msg("heartbeat sent")
	}

	silent := now.Sub(time.Unix(0, s.lastRx.Load()))
	if silent > s.cfg.HeartbeatTimeout {
		s.lastRx.Store(now.UnixNano())
		observability.RecordHeartbeatTimeout(string(s.role))
		s.log.Warn().Dur("silent", silent).Msg("heartbeat timeout")
		if s.timeout != nil {
			return s.timeout()
		}
	}
	return nil
}

// Close closes the transport. Later calls return ErrSessionClosed.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return ErrSessionClosed
	}
	observability.SessionClosed(string(s.role))
	s.log.Debug().Msg("session closed")
	return s.rw.Close()
}

func (s *Session) Closed() bool {
	return s.closed.Load()
}

// decodePacket decodes body into m and reports short bodies as underflow.
func decodePacket(m packet, body []byte) error {
	r := wire.NewReader(body)
	if err := r.Need(m.size()); err != nil {
		return fmt.Errorf("session: decode %T: %w", m, err)
	}
	m.decode(r)
	if err := r.Err(); err != nil {
		return fmt.Errorf("session: decode %T: %w", m, err)
	}
	return nil
}
