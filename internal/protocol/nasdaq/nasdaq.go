// Package nasdaq holds field types shared by the NASDAQ binary feeds.
package nasdaq

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Price4Scale = 4
	Price8Scale = 7
)

// Price4 is a 4-byte price with four implied decimal places.
type Price4 uint32

// Price8 is an 8-byte price with seven implied decimal places.
type Price8 uint64

func (p Price4) Decimal() decimal.Decimal {
	return decimal.New(int64(p), -Price4Scale)
}

func (p Price4) String() string {
	return p.Decimal().StringFixed(Price4Scale)
}

func (p Price8) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(p)), -Price8Scale)
}

func (p Price8) String() string {
	return p.Decimal().StringFixed(Price8Scale)
}

// NewPrice4 converts d to Price4, truncating extra digits.
func NewPrice4(d decimal.Decimal) Price4 {
	return Price4(d.Shift(Price4Scale).IntPart())
}

// NewPrice8 converts d to Price8, truncating extra digits.
func NewPrice8(d decimal.Decimal) Price8 {
	return Price8(d.Shift(Price8Scale).BigInt().Uint64())
}

// Timestamp is a 48-bit nanoseconds-since-midnight value split across a
// 2-byte high part and a 4-byte low part.
type Timestamp struct {
	High uint16
	Low  uint32
}

func NewTimestamp(sinceMidnight time.Duration) Timestamp {
	ns := uint64(sinceMidnight)
	return Timestamp{High: uint16(ns >> 32), Low: uint32(ns)}
}

func (ts Timestamp) Nanos() uint64 {
	return uint64(ts.High)<<32 | uint64(ts.Low)
}

func (ts Timestamp) SinceMidnight() time.Duration {
	return time.Duration(ts.Nanos())
}

const (
	Buy  byte = 'B'
	Sell byte = 'S'
)
