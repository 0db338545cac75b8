package wire

import (
	"errors"
	"math"
	"testing"

	"github.com/danmuck/marketwire/internal/protocol"
	"github.com/danmuck/marketwire/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func TestBinaryFieldsRoundTrip(t *testing.T) {
	testlog.Start(t)
	w := NewWriter(make([]byte, 64))
	w.PutByte('A')
	w.PutUint16(math.MaxUint16)
	w.PutUint32(math.MaxUint32)
	w.PutUint64(math.MaxUint64)
	w.PutInt64(-42)
	w.PutText("AAPL", 8)
	require.NoError(t, w.Err())
	require.Equal(t, 1+2+4+8+8+8, w.Len())

	r := NewReader(w.Bytes())
	require.Equal(t, byte('A'), r.Byte())
	require.Equal(t, uint16(math.MaxUint16), r.Uint16())
	require.Equal(t, uint32(math.MaxUint32), r.Uint32())
	require.Equal(t, uint64(math.MaxUint64), r.Uint64())
	require.Equal(t, int64(-42), r.Int64())
	require.Equal(t, "AAPL", r.Text(8))
	require.NoError(t, r.Err())
	require.Zero(t, r.Len())
}

func TestReaderUnderflowIsSticky(t *testing.T) {
	testlog.Start(t)
	r := NewReader([]byte{0x01, 0x02, 0x03})
	require.Equal(t, uint16(0x0102), r.Uint16())
	require.Zero(t, r.Uint32())
	require.True(t, errors.Is(r.Err(), protocol.ErrUnderflow))
	require.Zero(t, r.Byte())
	require.True(t, errors.Is(r.Err(), protocol.ErrUnderflow))
}

func TestWriterOverflowWritesNothing(t *testing.T) {
	testlog.Start(t)
	w := NewWriter(make([]byte, 3))
	require.True(t, errors.Is(w.Need(4), protocol.ErrOverflow))
	w.PutUint32(1)
	require.Zero(t, w.Len())
}

func TestReadOnlyWriter(t *testing.T) {
	testlog.Start(t)
	w := NewReadOnlyWriter(make([]byte, 16))
	w.PutByte('x')
	require.ErrorIs(t, w.Err(), protocol.ErrNotWritable)
	require.Zero(t, w.Len())
}

func TestTextTooLong(t *testing.T) {
	testlog.Start(t)
	w := NewWriter(make([]byte, 16))
	w.PutText("EUR/USD!", 7)
	require.ErrorIs(t, w.Err(), ErrFieldTooLong)
}

func TestTextExactWidth(t *testing.T) {
	testlog.Start(t)
	w := NewWriter(make([]byte, 7))
	w.PutText("EUR/USD", 7)
	require.NoError(t, w.Err())
	require.Equal(t, "EUR/USD", NewReader(w.Bytes()).Text(7))
}

func TestASCIINumbers(t *testing.T) {
	testlog.Start(t)
	w := NewWriter(make([]byte, 64))
	w.PutASCIIUint(12, 4)
	w.PutASCIIUintLeft(100000, 16)
	w.PutASCIIDecimal(9500, 4, 10, Left)
	require.NoError(t, w.Err())
	require.Equal(t, "  12100000          0.9500    ", string(w.Bytes()))

	r := NewReader(w.Bytes())
	require.Equal(t, uint64(12), r.ASCIIUint(4))
	require.Equal(t, uint64(100000), r.ASCIIUint(16))
	require.Equal(t, int64(9500), r.ASCIIDecimal(10, 4))
	require.NoError(t, r.Err())
}

func TestASCIIDecimalAcceptsShortFraction(t *testing.T) {
	testlog.Start(t)
	v, err := ParseASCIIDecimal([]byte("1.5       "), 4)
	require.NoError(t, err)
	require.Equal(t, int64(15000), v)

	v, err = ParseASCIIDecimal([]byte("          "), 4)
	require.NoError(t, err)
	require.Zero(t, v)
}

func TestASCIIInvalidDigit(t *testing.T) {
	testlog.Start(t)
	r := NewReader([]byte("  1x"))
	require.Zero(t, r.ASCIIUint(4))
	require.ErrorIs(t, r.Err(), ErrInvalidDigit)
}

func TestReserveAndBackfill(t *testing.T) {
	testlog.Start(t)
	w := NewWriter(make([]byte, 16))
	off := w.Reserve(4)
	w.PutText("ab", 2)
	w.PutASCIIUintAt(off, 3, 4)
	require.NoError(t, w.Err())
	require.Equal(t, "   3ab", string(w.Bytes()))

	w.PutASCIIUintAt(w.Len(), 1, 4)
	require.ErrorIs(t, w.Err(), protocol.ErrOverflow)
}
