package cboefx

import (
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/marketwire/internal/protocol/wire"
)

const (
	MessageTypeNewOrder       byte = 'N'
	MessageTypeModifyOrder    byte = 'M'
	MessageTypeCancelOrder    byte = 'X'
	MessageTypeMarketSnapshot byte = 'S'
	MessageTypeTicker         byte = 'T'
)

// PriceScale is the number of implied decimals in every book price.
const PriceScale = 4

const (
	CurrencyPairLen = 7
	OrderIDLen      = 15
	PriceLen        = 10
	QuantityLen     = 16
	CountLen        = 4
	LengthLen       = 6
	DateLen         = 8
	TimeLen         = 6
)

var ErrInvalidSide = errors.New("cboefx: invalid side")

// Side is the buy/sell indicator byte.
type Side byte

const (
	Buy  Side = 'B'
	Sell Side = 'S'
)

func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return fmt.Sprintf("side(%q)", rune(s))
	}
}

// Message is anything the book Parser can deliver to a Handler.
type Message interface {
	isMessage()
}

// Record is a fixed-size book message that can be encoded on its own.
type Record interface {
	Message
	Type() byte
	// Size is the encoded length excluding the type byte.
	Size() int
	decode(r *wire.Reader)
	encode(w *wire.Writer)
}

func putPrice(w *wire.Writer, v int64) {
	w.PutASCIIDecimal(v, PriceScale, PriceLen, wire.Left)
}

func getPrice(r *wire.Reader) int64 {
	return r.ASCIIDecimal(PriceLen, PriceScale)
}

type NewOrder struct {
	Side         Side
	CurrencyPair string
	OrderID      string
	Price        int64
	Amount       uint64
	MinQty       uint64
	LotSize      uint64
}

func (NewOrder) isMessage()  {}
func (*NewOrder) Type() byte { return MessageTypeNewOrder }
func (*NewOrder) Size() int  { return 1 + CurrencyPairLen + OrderIDLen + PriceLen + 3*QuantityLen }

func (m *NewOrder) decode(r *wire.Reader) {
	m.Side = Side(r.Byte())
	m.CurrencyPair = r.Text(CurrencyPairLen)
	m.OrderID = r.Text(OrderIDLen)
	m.Price = getPrice(r)
	m.Amount = r.ASCIIUint(QuantityLen)
	m.MinQty = r.ASCIIUint(QuantityLen)
	m.LotSize = r.ASCIIUint(QuantityLen)
}

func (m *NewOrder) encode(w *wire.Writer) {
	w.PutByte(byte(m.Side))
	w.PutText(m.CurrencyPair, CurrencyPairLen)
	w.PutText(m.OrderID, OrderIDLen)
	putPrice(w, m.Price)
	w.PutASCIIUintLeft(m.Amount, QuantityLen)
	w.PutASCIIUintLeft(m.MinQty, QuantityLen)
	w.PutASCIIUintLeft(m.LotSize, QuantityLen)
}

type ModifyOrder struct {
	CurrencyPair string
	OrderID      string
	Amount       uint64
	MinQty       uint64
	LotSize      uint64
}

func (ModifyOrder) isMessage()  {}
func (*ModifyOrder) Type() byte { return MessageTypeModifyOrder }
func (*ModifyOrder) Size() int  { return CurrencyPairLen + OrderIDLen + 3*QuantityLen }

func (m *ModifyOrder) decode(r *wire.Reader) {
	m.CurrencyPair = r.Text(CurrencyPairLen)
	m.OrderID = r.Text(OrderIDLen)
	m.Amount = r.ASCIIUint(QuantityLen)
	m.MinQty = r.ASCIIUint(QuantityLen)
	m.LotSize = r.ASCIIUint(QuantityLen)
}

func (m *ModifyOrder) encode(w *wire.Writer) {
	w.PutText(m.CurrencyPair, CurrencyPairLen)
	w.PutText(m.OrderID, OrderIDLen)
	w.PutASCIIUintLeft(m.Amount, QuantityLen)
	w.PutASCIIUintLeft(m.MinQty, QuantityLen)
	w.PutASCIIUintLeft(m.LotSize, QuantityLen)
}

type CancelOrder struct {
	CurrencyPair string
	OrderID      string
}

func (CancelOrder) isMessage()  {}
func (*CancelOrder) Type() byte { return MessageTypeCancelOrder }
func (*CancelOrder) Size() int  { return CurrencyPairLen + OrderIDLen }

func (m *CancelOrder) decode(r *wire.Reader) {
	m.CurrencyPair = r.Text(CurrencyPairLen)
	m.OrderID = r.Text(OrderIDLen)
}

func (m *CancelOrder) encode(w *wire.Writer) {
	w.PutText(m.CurrencyPair, CurrencyPairLen)
	w.PutText(m.OrderID, OrderIDLen)
}

// Ticker reports a trade. TransactionDate is YYYYMMDD and TransactionTime is
// HHMMSS, both UTC.
type Ticker struct {
	AggressorSide   Side
	CurrencyPair    string
	Price           int64
	TransactionDate string
	TransactionTime string
}

func (Ticker) isMessage()  {}
func (*Ticker) Type() byte { return MessageTypeTicker }
func (*Ticker) Size() int  { return 1 + CurrencyPairLen + PriceLen + DateLen + TimeLen }

func (m *Ticker) decode(r *wire.Reader) {
	m.AggressorSide = Side(r.Byte())
	m.CurrencyPair = r.Text(CurrencyPairLen)
	m.Price = getPrice(r)
	m.TransactionDate = r.Text(DateLen)
	m.TransactionTime = r.Text(TimeLen)
}

func (m *Ticker) encode(w *wire.Writer) {
	w.PutByte(byte(m.AggressorSide))
	w.PutText(m.CurrencyPair, CurrencyPairLen)
	putPrice(w, m.Price)
	w.PutText(m.TransactionDate, DateLen)
	w.PutText(m.TransactionTime, TimeLen)
}

// Time parses the transaction date and time.
func (m *Ticker) Time() (time.Time, error) {
	return time.Parse("20060102150405", m.TransactionDate+m.TransactionTime)
}

// SetTime fills the transaction date and time from ts in UTC.
func (m *Ticker) SetTime(ts time.Time) {
	ts = ts.UTC()
	m.TransactionDate = ts.Format("20060102")
	m.TransactionTime = ts.Format("150405")
}

// SnapshotStart opens a decoded market snapshot.
type SnapshotStart struct{}

// SnapshotEnd closes a decoded market snapshot.
type SnapshotEnd struct{}

// SnapshotEntry is one resting order inside a market snapshot.
type SnapshotEntry struct {
	CurrencyPair string
	Side         Side
	Price        int64
	Amount       uint64
	MinQty       uint64
	LotSize      uint64
	OrderID      string
}

func (SnapshotStart) isMessage() {}
func (SnapshotEnd) isMessage()   {}
func (SnapshotEntry) isMessage() {}
