package session

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/marketwire/internal/protocol"
	"github.com/danmuck/marketwire/internal/protocol/wire"
	"github.com/danmuck/marketwire/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func left(s string, width int) string { return fmt.Sprintf("%-*s", width, s) }

func TestClientWireLayout(t *testing.T) {
	testlog.Start(t)
	conn := &scriptConn{}
	c, err := NewClient(conn, DefaultConfig(), &clientEvents{})
	require.NoError(t, err)

	require.NoError(t, c.Login(&LoginRequest{LoginName: "foo", Password: "bar", MarketDataUnsubscribe: true}))
	require.NoError(t, c.Send(&TickerSubscribeRequest{CurrencyPair: "EUR/USD"}))
	require.NoError(t, c.RequestInstrumentDirectory())

	want := "L" + left("foo", 40) + left("bar", 40) + "T" + "        0" + "\n" +
		"TEUR/USD\n" +
		"I\n"
	require.Equal(t, want, conn.out.String())
}

func TestServerWireLayout(t *testing.T) {
	testlog.Start(t)
	conn := &scriptConn{}
	s, err := NewServer(conn, DefaultConfig(), &serverEvents{})
	require.NoError(t, err)

	require.NoError(t, s.Accept(1))
	require.NoError(t, s.Send(&LoginRejected{Reason: "bad"}))
	require.NoError(t, s.Send(&InstrumentDirectory{CurrencyPairs: []string{"FOO/BAR", "BAR/BAZ", "BAZ/FOO"}}))
	require.NoError(t, s.Send(&SequencedData{Time: "093000250", Payload: []byte("foo")}))
	require.NoError(t, s.Send(EndOfSession{}))

	want := "A         1\n" +
		"J" + left("bad", 20) + "\n" +
		"R   3FOO/BARBAR/BAZBAZ/FOO\n" +
		"S093000250foo\n" +
		"S\n"
	require.Equal(t, want, conn.out.String())
}

func TestTextFillingWidthRoundTrips(t *testing.T) {
	testlog.Start(t)
	name := strings.Repeat("n", LoginNameLen)
	conn := &scriptConn{}
	c, err := NewClient(conn, DefaultConfig(), &clientEvents{})
	require.NoError(t, err)
	require.NoError(t, c.Login(&LoginRequest{LoginName: name, Password: "p"}))

	events := &serverEvents{}
	s, err := NewServer(&scriptConn{chunks: [][]byte{conn.out.Bytes()}}, DefaultConfig(), events)
	require.NoError(t, err)
	_, err = s.Receive()
	require.NoError(t, err)
	require.Equal(t, []ClientMessage{&LoginRequest{LoginName: name, Password: "p"}}, events.messages)

	require.ErrorIs(t, c.Login(&LoginRequest{LoginName: name + "x"}), wire.ErrFieldTooLong)
}

func TestDirectoryLimit(t *testing.T) {
	testlog.Start(t)
	s, err := NewServer(&scriptConn{}, DefaultConfig(), &serverEvents{})
	require.NoError(t, err)
	require.ErrorIs(t, s.InstrumentDirectory(make([]string, MaxDirectoryPairs+1)), ErrDirectoryLimit)
}

func TestDirectoryCountBeyondBody(t *testing.T) {
	testlog.Start(t)
	c, err := NewClient(&scriptConn{chunks: [][]byte{[]byte("R   2FOO/BAR\n")}}, DefaultConfig(), &clientEvents{})
	require.NoError(t, err)
	_, err = c.Receive()
	require.ErrorIs(t, err, protocol.ErrUnderflow)
}

func TestSequencedTime(t *testing.T) {
	testlog.Start(t)
	ts := time.Date(2024, 3, 5, 9, 30, 0, 250*int(time.Millisecond), time.UTC)
	var m SequencedData
	m.SetTime(ts)
	require.Equal(t, "093000250", m.Time)

	off, err := m.Offset()
	require.NoError(t, err)
	require.Equal(t, 9*time.Hour+30*time.Minute+250*time.Millisecond, off)

	for _, bad := range []string{"", "12345678", "246000000", "09x000000", "096000000"} {
		_, err := ParseSequencedTime(bad)
		require.Error(t, err, bad)
	}
}
