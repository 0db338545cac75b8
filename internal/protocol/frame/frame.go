// Package frame reads and writes binary market data messages carried behind a
// 2-byte big-endian length prefix, the layout of NASDAQ ITCH and QBBO sample
// files and of SoupBinTCP style carriers.
package frame

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const PrefixLen = 2

var (
	ErrShortPrefix     = errors.New("frame: short length prefix")
	ErrEmptyMessage    = errors.New("frame: empty message")
	ErrMessageTooLarge = errors.New("frame: message too large")
)

// Limits constrains decode and encode memory use. MaxMessageBytes can never
// exceed what the prefix can express.
type Limits struct {
	MaxMessageBytes int
}

func DefaultLimits() Limits {
	return Limits{MaxMessageBytes: 0xFFFF}
}

func (l Limits) max() int {
	if l.MaxMessageBytes <= 0 || l.MaxMessageBytes > 0xFFFF {
		return 0xFFFF
	}
	return l.MaxMessageBytes
}

// ReadMessage reads one message into buf, growing it when too small, and
// returns the message bytes. A clean end of stream before a prefix yields
// io.EOF; a torn prefix yields ErrShortPrefix; a torn body yields
// io.ErrUnexpectedEOF.
func ReadMessage(r io.Reader, buf []byte, limits Limits) ([]byte, error) {
	var prefix [PrefixLen]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortPrefix
		}
		return nil, err
	}
	n := int(binary.BigEndian.Uint16(prefix[:]))
	if n == 0 {
		return nil, ErrEmptyMessage
	}
	if n > limits.max() {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, n)
	}
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// WriteMessage writes msg behind its length prefix.
func WriteMessage(w io.Writer, msg []byte, limits Limits) error {
	if len(msg) == 0 {
		return ErrEmptyMessage
	}
	if len(msg) > limits.max() {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(msg))
	}
	var prefix [PrefixLen]byte
	binary.BigEndian.PutUint16(prefix[:], uint16(len(msg)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err := w.Write(msg)
	return err
}

// Scanner iterates the messages of a buffered stream, reusing one buffer.
type Scanner struct {
	r      *bufio.Reader
	limits Limits
	buf    []byte
	msg    []byte
	count  int
	err    error
}

func NewScanner(r io.Reader, limits Limits) *Scanner {
	return &Scanner{
		r:      bufio.NewReaderSize(r, 64*1024),
		limits: limits,
		buf:    make([]byte, 0, 512),
	}
}

// Scan advances to the next message. It returns false at end of stream or on
// error; Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	msg, err := ReadMessage(s.r, s.buf, s.limits)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = fmt.Errorf("frame: message %d: %w", s.count+1, err)
		} else {
			s.err = io.EOF
		}
		s.msg = nil
		return false
	}
	if cap(msg) > cap(s.buf) {
		s.buf = msg[:0]
	}
	s.msg = msg
	s.count++
	return true
}

// Message returns the current message. It is overwritten by the next Scan.
func (s *Scanner) Message() []byte {
	return s.msg
}

// Count reports how many messages have been scanned.
func (s *Scanner) Count() int {
	return s.count
}

func (s *Scanner) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}
