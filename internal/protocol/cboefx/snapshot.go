package cboefx

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/danmuck/marketwire/internal/protocol"
	"github.com/danmuck/marketwire/internal/protocol/wire"
)

var (
	ErrSnapshotNotStarted = errors.New("cboefx: snapshot not started")
	ErrSnapshotOpen       = errors.New("cboefx: snapshot already started")
)

const entryLen = 3*QuantityLen + OrderIDLen

// maxEntryCost bounds the bytes one entry can add: a new pair header with
// both side counts, a price level and the order itself.
const maxEntryCost = CurrencyPairLen + 2*CountLen + PriceLen + CountLen + entryLen

// MaxSnapshotSize bounds the encoded size of a snapshot of n entries.
func MaxSnapshotSize(n int) int {
	return 1 + LengthLen + CountLen + n*maxEntryCost
}

// SnapshotEncoder writes a MarketSnapshot from entries already sorted by
// currency pair, then side (buy before sell), then price.
//
// Counts are reserved as blank slots and backfilled once their group closes.
// The length slot is filled by End. An encoder is reusable after End.
type SnapshotEncoder struct {
	w       *wire.Writer
	started bool

	lengthOff int
	bodyOff   int

	pairCountOff  int
	pairs         uint64
	priceCountOff int
	prices        uint64
	orderCountOff int
	orders        uint64

	pair     string
	side     Side
	price    int64
	hasPrice bool
}

func NewSnapshotEncoder() *SnapshotEncoder {
	return &SnapshotEncoder{}
}

// Start writes the type byte and reserves the length slot.
func (e *SnapshotEncoder) Start(w *wire.Writer) error {
	if e.started {
		return ErrSnapshotOpen
	}
	*e = SnapshotEncoder{w: w}
	if err := w.Need(1 + LengthLen); err != nil {
		return fmt.Errorf("cboefx: snapshot start: %w", err)
	}
	w.PutByte(MessageTypeMarketSnapshot)
	e.lengthOff = w.Reserve(LengthLen)
	e.bodyOff = w.Len()
	e.started = true
	return w.Err()
}

// Entry appends one order, opening pair, side and price groups as needed.
func (e *SnapshotEncoder) Entry(en SnapshotEntry) error {
	if !e.started {
		return ErrSnapshotNotStarted
	}
	if !en.Side.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSide, rune(en.Side))
	}
	w := e.w

	// A sell followed by a buy on the same pair cannot share a pair group,
	// so it starts a new one.
	if e.pairs == 0 || en.CurrencyPair != e.pair || (e.side == Sell && en.Side == Buy) {
		if e.pairs == 0 {
			e.pairCountOff = w.Reserve(CountLen)
		} else {
			e.closePair()
		}
		e.pairs++
		w.PutASCIIUintAt(e.pairCountOff, e.pairs, CountLen)
		w.PutText(en.CurrencyPair, CurrencyPairLen)
		e.pair = en.CurrencyPair
		e.openSide(Buy)
	}

	if en.Side != e.side {
		e.closeSide()
		e.openSide(Sell)
	}

	if !e.hasPrice || en.Price != e.price {
		e.closePrice()
		putPrice(w, en.Price)
		e.orderCountOff = w.Reserve(CountLen)
		e.orders = 0
		e.price = en.Price
		e.hasPrice = true
		e.prices++
		w.PutASCIIUintAt(e.priceCountOff, e.prices, CountLen)
	}

	w.PutASCIIUintLeft(en.Amount, QuantityLen)
	w.PutASCIIUintLeft(en.MinQty, QuantityLen)
	w.PutASCIIUintLeft(en.LotSize, QuantityLen)
	w.PutText(en.OrderID, OrderIDLen)
	e.orders++

	if err := w.Err(); err != nil {
		return fmt.Errorf("cboefx: snapshot entry: %w", err)
	}
	return nil
}

// End closes every open group and fills the length slot.
func (e *SnapshotEncoder) End() error {
	if !e.started {
		return ErrSnapshotNotStarted
	}
	w := e.w
	if e.pairs > 0 {
		e.closePair()
	} else {
		w.PutASCIIUint(0, CountLen)
	}
	w.PutASCIIUintAt(e.lengthOff, uint64(w.Len()-e.bodyOff), LengthLen)
	e.started = false
	if err := w.Err(); err != nil {
		return fmt.Errorf("cboefx: snapshot end: %w", err)
	}
	return nil
}

func (e *SnapshotEncoder) openSide(side Side) {
	e.side = side
	e.priceCountOff = e.w.Reserve(CountLen)
	e.prices = 0
	e.hasPrice = false
}

func (e *SnapshotEncoder) closePrice() {
	if e.hasPrice {
		e.w.PutASCIIUintAt(e.orderCountOff, e.orders, CountLen)
	}
}

func (e *SnapshotEncoder) closeSide() {
	e.closePrice()
	e.w.PutASCIIUintAt(e.priceCountOff, e.prices, CountLen)
}

func (e *SnapshotEncoder) closePair() {
	e.closeSide()
	if e.side == Buy {
		e.w.PutASCIIUint(0, CountLen)
	}
}

// SortEntries orders entries the way SnapshotEncoder expects: by currency
// pair, buys before sells, best price first within a side. Orders at one
// price keep their relative order.
func SortEntries(entries []SnapshotEntry) {
	slices.SortStableFunc(entries, func(a, b SnapshotEntry) int {
		if c := cmp.Compare(a.CurrencyPair, b.CurrencyPair); c != 0 {
			return c
		}
		if a.Side != b.Side {
			if a.Side == Buy {
				return -1
			}
			return 1
		}
		if a.Side == Buy {
			return cmp.Compare(b.Price, a.Price)
		}
		return cmp.Compare(a.Price, b.Price)
	})
}

// EncodeSnapshot writes a complete snapshot of entries into dst.
func EncodeSnapshot(dst []byte, entries []SnapshotEntry) (int, error) {
	w := wire.NewWriter(dst)
	var enc SnapshotEncoder
	if err := enc.Start(w); err != nil {
		return 0, err
	}
	for _, en := range entries {
		if err := enc.Entry(en); err != nil {
			return 0, err
		}
	}
	if err := enc.End(); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

// AppendSnapshot encodes entries onto the end of dst.
func AppendSnapshot(dst []byte, entries []SnapshotEntry) ([]byte, error) {
	buf := make([]byte, MaxSnapshotSize(len(entries)))
	n, err := EncodeSnapshot(buf, entries)
	if err != nil {
		return dst, err
	}
	return append(dst, buf[:n]...), nil
}

// decodeSnapshot reads the body that follows the type byte and emits
// SnapshotStart, one SnapshotEntry per order, then SnapshotEnd.
func decodeSnapshot(r *wire.Reader, h Handler) error {
	if err := h.Handle(SnapshotStart{}); err != nil {
		return err
	}
	length := r.ASCIIUint(LengthLen)
	if err := r.Err(); err != nil {
		return fmt.Errorf("cboefx: snapshot length: %w", err)
	}
	if length < CountLen {
		return h.Handle(SnapshotEnd{})
	}
	if uint64(r.Len()) < length {
		return fmt.Errorf("cboefx: snapshot body: %w: length %d, have %d", protocol.ErrUnderflow, length, r.Len())
	}
	br := wire.NewReader(r.Bytes(int(length)))

	pairs := br.ASCIIUint(CountLen)
	for i := uint64(0); i < pairs && br.Err() == nil; i++ {
		pair := br.Text(CurrencyPairLen)
		for _, side := range [...]Side{Buy, Sell} {
			if err := decodeSide(br, h, pair, side); err != nil {
				return err
			}
		}
	}
	if err := br.Err(); err != nil {
		return fmt.Errorf("cboefx: snapshot body: %w", err)
	}
	return h.Handle(SnapshotEnd{})
}

func decodeSide(br *wire.Reader, h Handler, pair string, side Side) error {
	prices := br.ASCIIUint(CountLen)
	for j := uint64(0); j < prices && br.Err() == nil; j++ {
		price := getPrice(br)
		orders := br.ASCIIUint(CountLen)
		for k := uint64(0); k < orders && br.Err() == nil; k++ {
			en := SnapshotEntry{
				CurrencyPair: pair,
				Side:         side,
				Price:        price,
				Amount:       br.ASCIIUint(QuantityLen),
				MinQty:       br.ASCIIUint(QuantityLen),
				LotSize:      br.ASCIIUint(QuantityLen),
				OrderID:      br.Text(OrderIDLen),
			}
			if br.Err() != nil {
				break
			}
			if err := h.Handle(en); err != nil {
				return err
			}
		}
	}
	return nil
}
