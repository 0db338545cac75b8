package session

import (
	"fmt"
	"io"

	"github.com/danmuck/marketwire/internal/protocol"
)

// ServerHandler receives client requests decoded by a Server.
type ServerHandler interface {
	Handle(s *Server, m ClientMessage) error
	HeartbeatTimeout(s *Server) error
}

// Server is the publisher side of a session. It heartbeats with 'H'.
type Server struct {
	*Session
	handler ServerHandler
}

func NewServer(rw io.ReadWriteCloser, cfg Config, h ServerHandler, opts ...Option) (*Server, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	s := &Server{handler: h}
	s.Session = newSession(RoleServer, rw, cfg, MessageTypeServerHeartbeat, opts...)
	s.dispatch = s.packet
	s.timeout = func() error { return h.HeartbeatTimeout(s) }
	return s, nil
}

// Send writes any server message. A SequencedData payload is written as its
// own buffer without copying.
func (s *Server) Send(m ServerMessage) error {
	switch m := m.(type) {
	case *SequencedData:
		return s.SendSequenced(m.Time, m.Payload)
	case *InstrumentDirectory:
		return s.InstrumentDirectory(m.CurrencyPairs)
	default:
		return s.sendPacket(m)
	}
}

func (s *Server) Accept(sequenceNumber uint64) error {
	return s.sendPacket(&LoginAccepted{SequenceNumber: sequenceNumber})
}

func (s *Server) Reject(reason string) error {
	return s.sendPacket(&LoginRejected{Reason: reason})
}

// SendSequenced sends one book message. An empty payload would read as end
// of session, so it is refused.
func (s *Server) SendSequenced(time string, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("session: %w: empty sequenced payload", protocol.ErrUnderflow)
	}
	return s.sendPacket(&SequencedData{Time: time}, payload)
}

// EndSession tells the client no more sequenced data will follow.
func (s *Server) EndSession() error {
	return s.send(MessageTypeSequencedData)
}

func (s *Server) NotifyError(explanation string) error {
	return s.sendPacket(&ErrorNotification{Explanation: explanation})
}

func (s *Server) InstrumentDirectory(pairs []string) error {
	if len(pairs) > MaxDirectoryPairs {
		return fmt.Errorf("%w: %d", ErrDirectoryLimit, len(pairs))
	}
	return s.sendPacket(&InstrumentDirectory{CurrencyPairs: pairs})
}

func (s *Server) packet(messageType byte, body []byte) error {
	var m ClientMessage
	switch messageType {
	case MessageTypeClientHeartbeat:
		return nil
	case MessageTypeLoginRequest:
		m = &LoginRequest{}
	case MessageTypeLogoutRequest:
		m = LogoutRequest{}
	case MessageTypeMarketSnapshotRequest:
		m = &MarketSnapshotRequest{}
	case MessageTypeTickerSubscribeRequest:
		m = &TickerSubscribeRequest{}
	case MessageTypeTickerUnsubscribeRequest:
		m = &TickerUnsubscribeRequest{}
	case MessageTypeMarketDataSubscribeRequest:
		m = &MarketDataSubscribeRequest{}
	case MessageTypeMarketDataUnsubscribeRequest:
		m = &MarketDataUnsubscribeRequest{}
	case MessageTypeInstrumentDirectoryRequest:
		m = InstrumentDirectoryRequest{}
	default:
		return &protocol.UnrecognizedMessageTypeError{Type: messageType}
	}
	if err := decodePacket(m, body); err != nil {
		return err
	}
	return s.handler.Handle(s, m)
}
