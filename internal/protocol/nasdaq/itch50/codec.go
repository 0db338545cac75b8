// Package itch50 implements the NASDAQ TotalView-ITCH 5.0 message codec.
package itch50

import (
	"fmt"

	"github.com/danmuck/marketwire/internal/protocol"
	"github.com/danmuck/marketwire/internal/protocol/wire"
)

// New returns a zero message for messageType, or nil when the type is unknown.
func New(messageType byte) Message {
	switch messageType {
	case MessageTypeSystemEvent:
		return &SystemEvent{}
	case MessageTypeStockDirectory:
		return &StockDirectory{}
	case MessageTypeStockTradingAction:
		return &StockTradingAction{}
	case MessageTypeRegSHORestriction:
		return &RegSHORestriction{}
	case MessageTypeMarketParticipantPosition:
		return &MarketParticipantPosition{}
	case MessageTypeMWCBDeclineLevel:
		return &MWCBDeclineLevel{}
	case MessageTypeMWCBStatus:
		return &MWCBStatus{}
	case MessageTypeIPOQuotingPeriodUpdate:
		return &IPOQuotingPeriodUpdate{}
	case MessageTypeLULDAuctionCollar:
		return &LULDAuctionCollar{}
	case MessageTypeOperationalHalt:
		return &OperationalHalt{}
	case MessageTypeAddOrder:
		return &AddOrder{}
	case MessageTypeAddOrderMPID:
		return &AddOrderMPID{}
	case MessageTypeOrderExecuted:
		return &OrderExecuted{}
	case MessageTypeOrderExecutedWithPrice:
		return &OrderExecutedWithPrice{}
	case MessageTypeOrderCancel:
		return &OrderCancel{}
	case MessageTypeOrderDelete:
		return &OrderDelete{}
	case MessageTypeOrderReplace:
		return &OrderReplace{}
	case MessageTypeTrade:
		return &Trade{}
	case MessageTypeCrossTrade:
		return &CrossTrade{}
	case MessageTypeBrokenTrade:
		return &BrokenTrade{}
	case MessageTypeNOII:
		return &NOII{}
	case MessageTypeRPII:
		return &RPII{}
	default:
		return nil
	}
}

// Decode reads one message from b, which starts at the type byte.
// Bytes past the message's fixed size are ignored.
func Decode(b []byte) (Message, error) {
	if len(b) < 1 {
		return nil, fmt.Errorf("itch50: %w: empty message", protocol.ErrUnderflow)
	}
	m := New(b[0])
	if m == nil {
		return nil, &protocol.UnrecognizedMessageTypeError{Type: b[0]}
	}
	r := wire.NewReader(b[1:])
	if err := r.Need(m.Size()); err != nil {
		return nil, fmt.Errorf("itch50: decode %T: %w", m, err)
	}
	m.decode(r)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("itch50: decode %T: %w", m, err)
	}
	return m, nil
}

// Encode writes m with its type byte into dst and returns the bytes written.
// Nothing is written when dst is too small.
func Encode(m Message, dst []byte) (int, error) {
	return EncodeTo(m, wire.NewWriter(dst))
}

// EncodeTo appends m to w.
func EncodeTo(m Message, w *wire.Writer) (int, error) {
	start := w.Len()
	if err := w.Need(1 + m.Size()); err != nil {
		return 0, fmt.Errorf("itch50: encode %T: %w", m, err)
	}
	w.PutByte(m.Type())
	m.encode(w)
	if err := w.Err(); err != nil {
		return 0, fmt.Errorf("itch50: encode %T: %w", m, err)
	}
	return w.Len() - start, nil
}

// Append encodes m onto the end of dst.
func Append(dst []byte, m Message) ([]byte, error) {
	buf := make([]byte, 1+m.Size())
	n, err := Encode(m, buf)
	if err != nil {
		return dst, err
	}
	return append(dst, buf[:n]...), nil
}

// Handler receives decoded messages.
type Handler interface {
	Handle(Message) error
}

type HandlerFunc func(Message) error

func (f HandlerFunc) Handle(m Message) error {
	return f(m)
}

// Parser decodes framed message bodies and forwards them to a Handler.
type Parser struct {
	handler Handler
}

func NewParser(h Handler) *Parser {
	return &Parser{handler: h}
}

// Parse decodes one message and dispatches it.
func (p *Parser) Parse(b []byte) error {
	m, err := Decode(b)
	if err != nil {
		return err
	}
	return p.handler.Handle(m)
}
