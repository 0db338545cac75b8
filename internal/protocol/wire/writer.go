package wire

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/danmuck/marketwire/internal/protocol"
	"github.com/shopspring/decimal"
)

// Justify selects the padding side of a fixed-width ASCII field.
type Justify int

const (
	Left Justify = iota
	Right
)

// Writer appends fields to a fixed-capacity destination.
//
// Reserve and the *At methods support backfilling: a caller reserves a slot,
// writes past it, and fills the slot once its value is known. Errors are
// sticky like Reader.
type Writer struct {
	buf      []byte
	n        int
	readOnly bool
	err      error
}

// NewWriter writes into buf up to len(buf) bytes.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// NewReadOnlyWriter wraps buf but refuses every write with ErrNotWritable.
func NewReadOnlyWriter(buf []byte) *Writer {
	return &Writer{buf: buf, readOnly: true}
}

func (w *Writer) Len() int {
	return w.n
}

func (w *Writer) Cap() int {
	return len(w.buf)
}

func (w *Writer) Available() int {
	return len(w.buf) - w.n
}

// Bytes returns the written prefix of the destination.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.n]
}

func (w *Writer) Err() error {
	return w.err
}

// Reset discards written bytes and any sticky error.
func (w *Writer) Reset() {
	w.n = 0
	w.err = nil
}

// Need fails when n more bytes cannot be written.
func (w *Writer) Need(n int) error {
	if w.err != nil {
		return w.err
	}
	if w.readOnly {
		w.err = protocol.ErrNotWritable
		return w.err
	}
	if avail := w.Available(); avail < n {
		w.err = fmt.Errorf("%w: need %d bytes, have %d", protocol.ErrOverflow, n, avail)
		return w.err
	}
	return nil
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) next(n int) []byte {
	if w.Need(n) != nil {
		return nil
	}
	b := w.buf[w.n : w.n+n]
	w.n += n
	return b
}

func (w *Writer) at(off, n int) []byte {
	if w.err != nil {
		return nil
	}
	if w.readOnly {
		w.fail(protocol.ErrNotWritable)
		return nil
	}
	if off < 0 || off+n > w.n {
		w.fail(fmt.Errorf("%w: backfill [%d:%d] outside written range %d", protocol.ErrOverflow, off, off+n, w.n))
		return nil
	}
	return w.buf[off : off+n]
}

// Reserve writes n spaces and returns their offset for a later *At call.
func (w *Writer) Reserve(n int) int {
	off := w.n
	b := w.next(n)
	for i := range b {
		b[i] = ' '
	}
	return off
}

func (w *Writer) PutByte(v byte) {
	if b := w.next(1); b != nil {
		b[0] = v
	}
}

func (w *Writer) PutUint16(v uint16) {
	if b := w.next(2); b != nil {
		binary.BigEndian.PutUint16(b, v)
	}
}

func (w *Writer) PutUint32(v uint32) {
	if b := w.next(4); b != nil {
		binary.BigEndian.PutUint32(b, v)
	}
}

func (w *Writer) PutUint64(v uint64) {
	if b := w.next(8); b != nil {
		binary.BigEndian.PutUint64(b, v)
	}
}

func (w *Writer) PutInt64(v int64) {
	w.PutUint64(uint64(v))
}

func (w *Writer) PutBytes(v []byte) {
	if b := w.next(len(v)); b != nil {
		copy(b, v)
	}
}

// PutText writes s left-justified and space-padded to width.
func (w *Writer) PutText(s string, width int) {
	w.putField(s, width, Left)
}

// PutASCIIUint writes v right-justified and space-padded to width.
func (w *Writer) PutASCIIUint(v uint64, width int) {
	w.putField(strconv.FormatUint(v, 10), width, Right)
}

// PutASCIIUintLeft writes v left-justified and space-padded to width.
func (w *Writer) PutASCIIUintLeft(v uint64, width int) {
	w.putField(strconv.FormatUint(v, 10), width, Left)
}

// PutASCIIDecimal writes v / 10^scale with exactly scale fraction digits.
func (w *Writer) PutASCIIDecimal(v int64, scale int32, width int, justify Justify) {
	w.putField(FormatASCIIDecimal(v, scale), width, justify)
}

// PutASCIIUintAt overwrites a reserved slot with v right-justified.
func (w *Writer) PutASCIIUintAt(off int, v uint64, width int) {
	b := w.at(off, width)
	if b == nil {
		return
	}
	if err := pad(b, strconv.FormatUint(v, 10), Right); err != nil {
		w.fail(err)
	}
}

func (w *Writer) putField(s string, width int, justify Justify) {
	if len(s) > width {
		w.fail(fmt.Errorf("%w: %q exceeds %d bytes", ErrFieldTooLong, s, width))
		return
	}
	b := w.next(width)
	if b == nil {
		return
	}
	_ = pad(b, s, justify)
}

func pad(dst []byte, s string, justify Justify) error {
	if len(s) > len(dst) {
		return fmt.Errorf("%w: %q exceeds %d bytes", ErrFieldTooLong, s, len(dst))
	}
	for i := range dst {
		dst[i] = ' '
	}
	if justify == Right {
		copy(dst[len(dst)-len(s):], s)
	} else {
		copy(dst, s)
	}
	return nil
}

func FormatASCIIDecimal(v int64, scale int32) string {
	return decimal.New(v, -scale).StringFixed(scale)
}
