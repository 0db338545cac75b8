package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/marketwire/internal/protocol"
	"github.com/shopspring/decimal"
)

var (
	ErrFieldTooLong = errors.New("wire: field value too long")
	ErrInvalidDigit = errors.New("wire: invalid ascii number")
)

// Reader is a forward-only cursor over a byte slice.
//
// Errors are sticky: once a read fails every later read returns a zero value
// and Err reports the first failure. Decoders check Need once for the static
// message size and read fields unconditionally after that.
type Reader struct {
	buf []byte
	off int
	err error
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.buf) - r.off
}

func (r *Reader) Offset() int {
	return r.off
}

func (r *Reader) Err() error {
	return r.err
}

// Need fails with ErrUnderflow when fewer than n bytes remain.
func (r *Reader) Need(n int) error {
	if r.err != nil {
		return r.err
	}
	if rem := r.Len(); rem < n {
		r.err = fmt.Errorf("%w: need %d bytes, have %d", protocol.ErrUnderflow, n, rem)
		return r.err
	}
	return nil
}

// Bytes returns the next n bytes as a view into the underlying slice.
func (r *Reader) Bytes(n int) []byte {
	if r.Need(n) != nil {
		return nil
	}
	b := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return b
}

// Rest returns every unread byte as a view.
func (r *Reader) Rest() []byte {
	if r.err != nil {
		return nil
	}
	return r.Bytes(r.Len())
}

func (r *Reader) Skip(n int) {
	_ = r.Bytes(n)
}

func (r *Reader) Byte() byte {
	b := r.Bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) Uint16() uint16 {
	b := r.Bytes(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *Reader) Uint32() uint32 {
	b := r.Bytes(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *Reader) Uint64() uint64 {
	b := r.Bytes(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *Reader) Int64() int64 {
	return int64(r.Uint64())
}

// Text reads a fixed-width left-justified field and trims the space padding.
func (r *Reader) Text(width int) string {
	b := r.Bytes(width)
	if b == nil {
		return ""
	}
	return strings.TrimRight(string(b), " ")
}

// ASCIIUint reads a space-padded unsigned decimal integer of the given width.
// Padding may be on either side; an all-space field reads as zero.
func (r *Reader) ASCIIUint(width int) uint64 {
	b := r.Bytes(width)
	if b == nil {
		return 0
	}
	v, err := ParseASCIIUint(b)
	if err != nil {
		r.err = err
		return 0
	}
	return v
}

// ASCIIDecimal reads a space-padded decimal number and returns it scaled by
// 10^scale.
func (r *Reader) ASCIIDecimal(width int, scale int32) int64 {
	b := r.Bytes(width)
	if b == nil {
		return 0
	}
	v, err := ParseASCIIDecimal(b, scale)
	if err != nil {
		r.err = err
		return 0
	}
	return v
}

func ParseASCIIUint(b []byte) (uint64, error) {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDigit, s)
	}
	return v, nil
}

func ParseASCIIDecimal(b []byte, scale int32) (int64, error) {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDigit, s)
	}
	return d.Shift(scale).IntPart(), nil
}
