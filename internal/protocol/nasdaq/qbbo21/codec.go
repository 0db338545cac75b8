// Package qbbo21 implements the NASDAQ Best Bid and Offer (QBBO) 2.1 codec.
package qbbo21

import (
	"fmt"

	"github.com/danmuck/marketwire/internal/protocol"
	"github.com/danmuck/marketwire/internal/protocol/wire"
)

var factories = map[byte]func() Message{
	MessageTypeSystemEvent:            func() Message { return &SystemEvent{} },
	MessageTypeStockDirectory:         func() Message { return &StockDirectory{} },
	MessageTypeStockTradingAction:     func() Message { return &StockTradingAction{} },
	MessageTypeRegSHORestriction:      func() Message { return &RegSHORestriction{} },
	MessageTypeMWCBDeclineLevel:       func() Message { return &MWCBDeclineLevel{} },
	MessageTypeMWCBStatus:             func() Message { return &MWCBStatus{} },
	MessageTypeIPOQuotingPeriodUpdate: func() Message { return &IPOQuotingPeriodUpdate{} },
	MessageTypeOperationalHalt:        func() Message { return &OperationalHalt{} },
	MessageTypeNextSharesQuotation:    func() Message { return &NextSharesQuotation{} },
	MessageTypeQuotation:              func() Message { return &Quotation{} },
	MessageTypeRPII:                   func() Message { return &RPII{} },
}

// New returns a zero message for messageType, or nil when the type is unknown.
func New(messageType byte) Message {
	f, ok := factories[messageType]
	if !ok {
		return nil
	}
	return f()
}

// Decode reads one message from b, which starts at the type byte.
func Decode(b []byte) (Message, error) {
	if len(b) < 1 {
		return nil, fmt.Errorf("qbbo21: %w: empty message", protocol.ErrUnderflow)
	}
	m := New(b[0])
	if m == nil {
		return nil, &protocol.UnrecognizedMessageTypeError{Type: b[0]}
	}
	r := wire.NewReader(b[1:])
	if err := r.Need(m.Size()); err != nil {
		return nil, fmt.Errorf("qbbo21: decode %T: %w", m, err)
	}
	m.decode(r)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("qbbo21: decode %T: %w", m, err)
	}
	return m, nil
}

// Encode writes m with its type byte into dst and returns the bytes written.
func Encode(m Message, dst []byte) (int, error) {
	w := wire.NewWriter(dst)
	if err := w.Need(1 + m.Size()); err != nil {
		return 0, fmt.Errorf("qbbo21: encode %T: %w", m, err)
	}
	w.PutByte(m.Type())
	m.encode(w)
	if err := w.Err(); err != nil {
		return 0, fmt.Errorf("qbbo21: encode %T: %w", m, err)
	}
	return w.Len(), nil
}

func Append(dst []byte, m Message) ([]byte, error) {
	buf := make([]byte, 1+m.Size())
	n, err := Encode(m, buf)
	if err != nil {
		return dst, err
	}
	return append(dst, buf[:n]...), nil
}

type Handler interface {
	Handle(Message) error
}

type HandlerFunc func(Message) error

func (f HandlerFunc) Handle(m Message) error {
	return f(m)
}

type Parser struct {
	handler Handler
}

func NewParser(h Handler) *Parser {
	return &Parser{handler: h}
}

func (p *Parser) Parse(b []byte) error {
	m, err := Decode(b)
	if err != nil {
		return err
	}
	return p.handler.Handle(m)
}
