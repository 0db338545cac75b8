package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/danmuck/marketwire/internal/protocol"
	"github.com/danmuck/marketwire/internal/protocol/frame"
	"github.com/danmuck/marketwire/internal/protocol/nasdaq/itch50"
	"github.com/danmuck/marketwire/internal/protocol/nasdaq/qbbo21"
	"github.com/danmuck/marketwire/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func framed(t *testing.T, msgs ...[]byte) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range msgs {
		require.NoError(t, frame.WriteMessage(&buf, m, frame.DefaultLimits()))
	}
	return &buf
}

func TestDumpITCH50(t *testing.T) {
	testlog.Start(t)
	start, err := itch50.Append(nil, &itch50.SystemEvent{EventCode: 'O'})
	require.NoError(t, err)
	end, err := itch50.Append(nil, &itch50.SystemEvent{EventCode: 'C'})
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := dump(framed(t, start, end), &out, dumpOptions{protocol: "itch50"})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "S *itch50.SystemEvent"))
}

func TestDumpQBBO21Limit(t *testing.T) {
	testlog.Start(t)
	msg, err := qbbo21.Append(nil, &qbbo21.SystemEvent{EventCode: 'O'})
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := dump(framed(t, msg, msg, msg), &out, dumpOptions{protocol: "QBBO21", limit: 2})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Contains(t, out.String(), "*qbbo21.SystemEvent")
}

func TestDumpUnknownType(t *testing.T) {
	testlog.Start(t)
	msg, err := itch50.Append(nil, &itch50.SystemEvent{EventCode: 'O'})
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = dump(framed(t, []byte{'?', 0, 0}, msg), &out, dumpOptions{protocol: "itch50"})
	var unknown *protocol.UnrecognizedMessageTypeError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, byte('?'), unknown.Type)

	out.Reset()
	n, err := dump(framed(t, []byte{'?', 0, 0}, msg), &out, dumpOptions{protocol: "itch50", skipUnknown: true})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestDumpErrors(t *testing.T) {
	testlog.Start(t)
	_, err := dump(&bytes.Buffer{}, &bytes.Buffer{}, dumpOptions{protocol: "ouch"})
	require.ErrorIs(t, err, errUnknownProtocol)

	_, err = dump(bytes.NewReader([]byte{0x00, 0x10, 'S'}), &bytes.Buffer{}, dumpOptions{protocol: "itch50"})
	require.Error(t, err)

	_, err = dump(framed(t, []byte{'S', 0}), &bytes.Buffer{}, dumpOptions{protocol: "itch50"})
	require.ErrorIs(t, err, protocol.ErrUnderflow)
}
