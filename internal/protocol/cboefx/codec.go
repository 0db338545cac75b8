// Package cboefx implements the Cboe FX (Hotspot) ITCH book messages carried
// inside sequenced session data, including the grouped market snapshot.
package cboefx

import (
	"fmt"

	"github.com/danmuck/marketwire/internal/protocol"
	"github.com/danmuck/marketwire/internal/protocol/wire"
)

// New returns a zero record for messageType. MarketSnapshot is not a fixed
// record and yields nil like any unknown type.
func New(messageType byte) Record {
	switch messageType {
	case MessageTypeNewOrder:
		return &NewOrder{}
	case MessageTypeModifyOrder:
		return &ModifyOrder{}
	case MessageTypeCancelOrder:
		return &CancelOrder{}
	case MessageTypeTicker:
		return &Ticker{}
	default:
		return nil
	}
}

// Decode reads one fixed record starting at its type byte.
func Decode(b []byte) (Record, error) {
	if len(b) < 1 {
		return nil, fmt.Errorf("cboefx: %w: empty message", protocol.ErrUnderflow)
	}
	m := New(b[0])
	if m == nil {
		return nil, &protocol.UnrecognizedMessageTypeError{Type: b[0]}
	}
	r := wire.NewReader(b[1:])
	if err := decodeRecord(m, r); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeRecord(m Record, r *wire.Reader) error {
	if err := r.Need(m.Size()); err != nil {
		return fmt.Errorf("cboefx: decode %T: %w", m, err)
	}
	m.decode(r)
	if err := r.Err(); err != nil {
		return fmt.Errorf("cboefx: decode %T: %w", m, err)
	}
	return nil
}

// Encode writes m with its type byte into dst.
func Encode(m Record, dst []byte) (int, error) {
	w := wire.NewWriter(dst)
	if err := w.Need(1 + m.Size()); err != nil {
		return 0, fmt.Errorf("cboefx: encode %T: %w", m, err)
	}
	w.PutByte(m.Type())
	m.encode(w)
	if err := w.Err(); err != nil {
		return 0, fmt.Errorf("cboefx: encode %T: %w", m, err)
	}
	return w.Len(), nil
}

func Append(dst []byte, m Record) ([]byte, error) {
	buf := make([]byte, 1+m.Size())
	n, err := Encode(m, buf)
	if err != nil {
		return dst, err
	}
	return append(dst, buf[:n]...), nil
}

// Handler receives decoded book messages: *NewOrder, *ModifyOrder,
// *CancelOrder, *Ticker, SnapshotStart, SnapshotEntry and SnapshotEnd.
type Handler interface {
	Handle(Message) error
}

type HandlerFunc func(Message) error

func (f HandlerFunc) Handle(m Message) error {
	return f(m)
}

// Parser decodes the payload of one sequenced data packet.
type Parser struct {
	handler Handler
}

func NewParser(h Handler) *Parser {
	return &Parser{handler: h}
}

// Parse decodes b, which starts at the book message type byte.
func (p *Parser) Parse(b []byte) error {
	if len(b) < 1 {
		return fmt.Errorf("cboefx: %w: empty message", protocol.ErrUnderflow)
	}
	r := wire.NewReader(b[1:])
	if b[0] == MessageTypeMarketSnapshot {
		return decodeSnapshot(r, p.handler)
	}
	m := New(b[0])
	if m == nil {
		return &protocol.UnrecognizedMessageTypeError{Type: b[0]}
	}
	if err := decodeRecord(m, r); err != nil {
		return err
	}
	return p.handler.Handle(m)
}
