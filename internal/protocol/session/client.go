package session

import (
	"io"

	"github.com/danmuck/marketwire/internal/protocol"
)

// ClientHandler receives server messages decoded by a Client. Messages are
// fresh values except SequencedData.Payload, which is only valid for the
// duration of the call.
type ClientHandler interface {
	Handle(c *Client, m ServerMessage) error
	HeartbeatTimeout(c *Client) error
}

// Client is the subscriber side of a session. It heartbeats with 'R'.
type Client struct {
	*Session
	handler ClientHandler
}

func NewClient(rw io.ReadWriteCloser, cfg Config, h ClientHandler, opts ...Option) (*Client, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	c := &Client{handler: h}
	c.Session = newSession(RoleClient, rw, cfg, MessageTypeClientHeartbeat, opts...)
	c.dispatch = c.packet
	c.timeout = func() error { return h.HeartbeatTimeout(c) }
	return c, nil
}

// Send writes any client message.
func (c *Client) Send(m ClientMessage) error {
	return c.sendPacket(m)
}

func (c *Client) Login(m *LoginRequest) error {
	return c.sendPacket(m)
}

func (c *Client) Logout() error {
	return c.sendPacket(LogoutRequest{})
}

func (c *Client) RequestMarketSnapshot(pair string) error {
	return c.sendPacket(&MarketSnapshotRequest{CurrencyPair: pair})
}

func (c *Client) SubscribeTicker(pair string) error {
	return c.sendPacket(&TickerSubscribeRequest{CurrencyPair: pair})
}

func (c *Client) UnsubscribeTicker(pair string) error {
	return c.sendPacket(&TickerUnsubscribeRequest{CurrencyPair: pair})
}

func (c *Client) SubscribeMarketData(pair string) error {
	return c.sendPacket(&MarketDataSubscribeRequest{CurrencyPair: pair})
}

func (c *Client) UnsubscribeMarketData(pair string) error {
	return c.sendPacket(&MarketDataUnsubscribeRequest{CurrencyPair: pair})
}

func (c *Client) RequestInstrumentDirectory() error {
	return c.sendPacket(InstrumentDirectoryRequest{})
}

func (c *Client) packet(messageType byte, body []byte) error {
	var m ServerMessage
	switch messageType {
	case MessageTypeServerHeartbeat:
		return nil
	case MessageTypeLoginAccepted:
		m = &LoginAccepted{}
	case MessageTypeLoginRejected:
		m = &LoginRejected{}
	case MessageTypeSequencedData:
		if len(body) == 0 {
			c.log.Info().Msg("end of session")
			return c.handler.Handle(c, EndOfSession{})
		}
		m = &SequencedData{}
	case MessageTypeErrorNotification:
		m = &ErrorNotification{}
	case MessageTypeInstrumentDirectory:
		m = &InstrumentDirectory{}
	default:
		return &protocol.UnrecognizedMessageTypeError{Type: messageType}
	}
	if err := decodePacket(m, body); err != nil {
		return err
	}
	return c.handler.Handle(c, m)
}
