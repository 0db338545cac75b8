package frame

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/danmuck/marketwire/internal/testutil/testlog"
)

func TestReadWriteMessageRoundTrip(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	msgs := [][]byte{[]byte("S\x00\x01"), bytes.Repeat([]byte{'A'}, 300), {'x'}}
	for _, m := range msgs {
		if err := WriteMessage(&buf, m, DefaultLimits()); err != nil {
			t.Fatalf("write message: %v", err)
		}
	}
	if got := buf.Bytes()[:2]; !bytes.Equal(got, []byte{0x00, 0x03}) {
		t.Fatalf("prefix mismatch: %x", got)
	}

	var scratch []byte
	for i, want := range msgs {
		got, err := ReadMessage(&buf, scratch, DefaultLimits())
		if err != nil {
			t.Fatalf("read message %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("message %d mismatch: %q", i, got)
		}
		scratch = got
	}
	if _, err := ReadMessage(&buf, scratch, DefaultLimits()); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestReadMessageShortPrefix(t *testing.T) {
	testlog.Start(t)
	_, err := ReadMessage(bytes.NewReader([]byte{0x01}), nil, DefaultLimits())
	if !errors.Is(err, ErrShortPrefix) {
		t.Fatalf("expected ErrShortPrefix, got %v", err)
	}
}

func TestReadMessageTornBody(t *testing.T) {
	testlog.Start(t)
	_, err := ReadMessage(bytes.NewReader([]byte{0x00, 0x05, 'a', 'b'}), nil, DefaultLimits())
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestReadMessageLimits(t *testing.T) {
	testlog.Start(t)
	_, err := ReadMessage(bytes.NewReader([]byte{0x00, 0x05, 1, 2, 3, 4, 5}), nil, Limits{MaxMessageBytes: 4})
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
	_, err = ReadMessage(bytes.NewReader([]byte{0x00, 0x00}), nil, DefaultLimits())
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestWriteMessageLimits(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := WriteMessage(&buf, make([]byte, 0x10000), DefaultLimits()); !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
	if err := WriteMessage(&buf, nil, DefaultLimits()); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("rejected writes left %d bytes", buf.Len())
	}
}

func TestScanner(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	for _, m := range []string{"one", "two", "three"} {
		if err := WriteMessage(&buf, []byte(m), DefaultLimits()); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	var got []string
	s := NewScanner(&buf, DefaultLimits())
	for s.Scan() {
		got = append(got, string(s.Message()))
	}
	if err := s.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 3 || got[0] != "one" || got[2] != "three" || s.Count() != 3 {
		t.Fatalf("unexpected scan result: %q count=%d", got, s.Count())
	}
}

func TestScannerReportsTornMessage(t *testing.T) {
	testlog.Start(t)
	s := NewScanner(bytes.NewReader([]byte{0x00, 0x01, 'a', 0x00, 0x04, 'b'}), DefaultLimits())
	if !s.Scan() {
		t.Fatalf("expected first message")
	}
	if s.Scan() {
		t.Fatalf("expected scan to stop")
	}
	if !errors.Is(s.Err(), io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", s.Err())
	}
}
