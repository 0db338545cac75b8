package session

import (
	"bytes"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danmuck/marketwire/internal/protocol"
	"github.com/danmuck/marketwire/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

const testRxCapacity = 1024

type fixedClock struct {
	ms atomic.Int64
}

func (c *fixedClock) Now() time.Time { return time.UnixMilli(c.ms.Load()) }

func (c *fixedClock) Set(ms int64) { c.ms.Store(ms) }

type clientEvents struct {
	messages []ServerMessage
	timeouts int
}

func (e *clientEvents) Handle(_ *Client, m ServerMessage) error {
	if sd, ok := m.(*SequencedData); ok {
		m = &SequencedData{Time: sd.Time, Payload: bytes.Clone(sd.Payload)}
	}
	e.messages = append(e.messages, m)
	return nil
}

func (e *clientEvents) HeartbeatTimeout(*Client) error {
	e.timeouts++
	return nil
}

type serverEvents struct {
	messages []ClientMessage
	timeouts int
}

func (e *serverEvents) Handle(_ *Server, m ClientMessage) error {
	e.messages = append(e.messages, m)
	return nil
}

func (e *serverEvents) HeartbeatTimeout(*Server) error {
	e.timeouts++
	return nil
}

// scriptConn replays fixed read chunks and records writes.
type scriptConn struct {
	chunks [][]byte
	out    bytes.Buffer
}

func (c *scriptConn) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:]
	if len(c.chunks[0]) == 0 {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func (c *scriptConn) Write(p []byte) (int, error) { return c.out.Write(p) }
func (c *scriptConn) Close() error                { return nil }

func tcpPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			accepted <- nil
			return
		}
		accepted <- conn
	}()
	clientConn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	serverConn := <-accepted
	require.NotNil(t, serverConn)

	deadline := time.Now().Add(5 * time.Second)
	_ = clientConn.SetDeadline(deadline)
	_ = serverConn.SetDeadline(deadline)
	return clientConn, serverConn
}

type fixture struct {
	clock        *fixedClock
	client       *Client
	server       *Server
	clientEvents *clientEvents
	serverEvents *serverEvents
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:        &fixedClock{},
		clientEvents: &clientEvents{},
		serverEvents: &serverEvents{},
	}
	cfg := DefaultConfig()
	cfg.RxBufferCapacity = testRxCapacity

	clientConn, serverConn := tcpPair(t)
	var err error
	f.client, err = NewClient(clientConn, cfg, f.clientEvents, WithClock(f.clock))
	require.NoError(t, err)
	f.server, err = NewServer(serverConn, cfg, f.serverEvents, WithClock(f.clock))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = f.client.Close()
		_ = f.server.Close()
	})
	return f
}

func (f *fixture) clientReceive(t *testing.T, n int) []ServerMessage {
	t.Helper()
	for len(f.clientEvents.messages) < n {
		_, err := f.client.Receive()
		require.NoError(t, err)
	}
	return f.clientEvents.messages
}

func (f *fixture) serverReceive(t *testing.T, n int) []ClientMessage {
	t.Helper()
	for len(f.serverEvents.messages) < n {
		_, err := f.server.Receive()
		require.NoError(t, err)
	}
	return f.serverEvents.messages
}

func TestLoginAccepted(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	require.NoError(t, f.server.Accept(1))
	require.Equal(t, []ServerMessage{&LoginAccepted{SequenceNumber: 1}}, f.clientReceive(t, 1))
}

func TestLoginRejected(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	require.NoError(t, f.server.Reject("foo"))
	require.Equal(t, []ServerMessage{&LoginRejected{Reason: "foo"}}, f.clientReceive(t, 1))
}

func TestSequencedData(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	require.NoError(t, f.server.SendSequenced("093000250", []byte("foo")))
	require.Equal(t, []ServerMessage{&SequencedData{Time: "093000250", Payload: []byte("foo")}}, f.clientReceive(t, 1))
}

func TestFullBuffer(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	payload := bytes.Repeat([]byte{'A'}, testRxCapacity-11)
	require.NoError(t, f.server.SendSequenced("093000250", payload))
	require.Equal(t, []ServerMessage{&SequencedData{Time: "093000250", Payload: payload}}, f.clientReceive(t, 1))
}

func TestPacketLengthExceedsBufferCapacity(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	payload := bytes.Repeat([]byte{'A'}, testRxCapacity-10)
	require.NoError(t, f.server.SendSequenced("093000250", payload))

	var err error
	for err == nil {
		_, err = f.client.Receive()
	}
	require.ErrorIs(t, err, protocol.ErrFrameTooLarge)
	require.Empty(t, f.clientEvents.messages)
}

func TestEndOfSession(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	require.NoError(t, f.server.EndSession())
	require.Equal(t, []ServerMessage{EndOfSession{}}, f.clientReceive(t, 1))
}

func TestErrorNotification(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	require.NoError(t, f.server.NotifyError("foo"))
	require.Equal(t, []ServerMessage{&ErrorNotification{Explanation: "foo"}}, f.clientReceive(t, 1))
}

func TestInstrumentDirectory(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	pairs := []string{"FOO/BAR", "BAR/BAZ", "BAZ/FOO"}
	require.NoError(t, f.server.InstrumentDirectory(pairs))
	require.Equal(t, []ServerMessage{&InstrumentDirectory{CurrencyPairs: pairs}}, f.clientReceive(t, 1))
}

func TestLoginRequest(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	in := &LoginRequest{LoginName: "foo", Password: "bar", MarketDataUnsubscribe: true}
	require.NoError(t, f.client.Login(in))
	require.Equal(t, []ClientMessage{in}, f.serverReceive(t, 1))
}

func TestLogoutRequest(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	require.NoError(t, f.client.Logout())
	require.Equal(t, []ClientMessage{LogoutRequest{}}, f.serverReceive(t, 1))
}

func TestMarketSnapshotRequest(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	require.NoError(t, f.client.RequestMarketSnapshot("FOO/BAR"))
	require.Equal(t, []ClientMessage{&MarketSnapshotRequest{CurrencyPair: "FOO/BAR"}}, f.serverReceive(t, 1))
}

func TestTickerSubscription(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	require.NoError(t, f.client.SubscribeTicker("FOO/BAR"))
	require.NoError(t, f.client.UnsubscribeTicker("FOO/BAR"))
	require.Equal(t, []ClientMessage{
		&TickerSubscribeRequest{CurrencyPair: "FOO/BAR"},
		&TickerUnsubscribeRequest{CurrencyPair: "FOO/BAR"},
	}, f.serverReceive(t, 2))
}

func TestMarketDataSubscription(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	require.NoError(t, f.client.SubscribeMarketData("FOO/BAR"))
	require.NoError(t, f.client.UnsubscribeMarketData("FOO/BAR"))
	require.Equal(t, []ClientMessage{
		&MarketDataSubscribeRequest{CurrencyPair: "FOO/BAR"},
		&MarketDataUnsubscribeRequest{CurrencyPair: "FOO/BAR"},
	}, f.serverReceive(t, 2))
}

func TestInstrumentDirectoryRequest(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	require.NoError(t, f.client.RequestInstrumentDirectory())
	require.Equal(t, []ClientMessage{InstrumentDirectoryRequest{}}, f.serverReceive(t, 1))
}

func TestServerKeepAlive(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	f.clock.Set(1500)
	require.NoError(t, f.client.KeepAlive())
	require.NoError(t, f.server.KeepAlive())
	_, err := f.server.Receive()
	require.NoError(t, err)

	f.clock.Set(15500)
	require.NoError(t, f.server.KeepAlive())
	require.Zero(t, f.serverEvents.timeouts)

	f.clock.Set(16750)
	require.NoError(t, f.server.KeepAlive())
	require.Equal(t, 1, f.serverEvents.timeouts)
	require.Empty(t, f.serverEvents.messages)
}

func TestClientKeepAlive(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	f.clock.Set(1500)
	require.NoError(t, f.client.KeepAlive())
	require.NoError(t, f.server.KeepAlive())
	_, err := f.client.Receive()
	require.NoError(t, err)

	f.clock.Set(15500)
	require.NoError(t, f.client.KeepAlive())
	require.Zero(t, f.clientEvents.timeouts)

	f.clock.Set(16750)
	require.NoError(t, f.client.KeepAlive())
	require.Equal(t, 1, f.clientEvents.timeouts)
	require.Empty(t, f.clientEvents.messages)
}

func TestHeartbeatTimeoutFiresOncePerWindow(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)

	f.clock.Set(15001)
	require.NoError(t, f.client.KeepAlive())
	require.Equal(t, 1, f.clientEvents.timeouts)

	require.NoError(t, f.client.KeepAlive())
	f.clock.Set(30001)
	require.NoError(t, f.client.KeepAlive())
	require.Equal(t, 1, f.clientEvents.timeouts)

	f.clock.Set(30002)
	require.NoError(t, f.client.KeepAlive())
	require.Equal(t, 2, f.clientEvents.timeouts)
}

func TestHeartbeatSentOnlyAfterInterval(t *testing.T) {
	testlog.Start(t)
	conn := &scriptConn{}
	clock := &fixedClock{}
	c, err := NewClient(conn, DefaultConfig(), &clientEvents{}, WithClock(clock))
	require.NoError(t, err)

	clock.Set(1000)
	require.NoError(t, c.KeepAlive())
	require.Zero(t, conn.out.Len())

	clock.Set(1001)
	require.NoError(t, c.KeepAlive())
	require.Equal(t, "R\n", conn.out.String())

	require.NoError(t, c.KeepAlive())
	require.Equal(t, "R\n", conn.out.String())
}

func TestReceiveIsChunkingIndependent(t *testing.T) {
	testlog.Start(t)
	out := &scriptConn{}
	clock := &fixedClock{}
	srv, err := NewServer(out, DefaultConfig(), &serverEvents{}, WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, srv.Accept(42))
	require.NoError(t, srv.InstrumentDirectory([]string{"EUR/USD", "USD/JPY"}))
	require.NoError(t, srv.SendSequenced("120000000", []byte("TSEUR/USD1.1      20240305143015")))
	clock.Set(2000)
	require.NoError(t, srv.KeepAlive())
	require.NoError(t, srv.NotifyError("bad pair"))
	require.NoError(t, srv.EndSession())
	stream := out.out.Bytes()

	var want []ServerMessage
	for size := 1; size <= len(stream); size++ {
		var chunks [][]byte
		for off := 0; off < len(stream); off += size {
			chunks = append(chunks, bytes.Clone(stream[off:min(off+size, len(stream))]))
		}
		events := &clientEvents{}
		c, err := NewClient(&scriptConn{chunks: chunks}, DefaultConfig(), events)
		require.NoError(t, err)
		for {
			_, err := c.Receive()
			if errors.Is(err, io.EOF) {
				break
			}
			require.NoError(t, err)
		}
		if want == nil {
			want = events.messages
			require.Len(t, want, 5)
			continue
		}
		require.Equal(t, want, events.messages, "chunk size %d", size)
	}
}

func TestReceiveUnknownTypeIsFatal(t *testing.T) {
	testlog.Start(t)
	c, err := NewClient(&scriptConn{chunks: [][]byte{[]byte("Zfoo\n")}}, DefaultConfig(), &clientEvents{})
	require.NoError(t, err)
	_, err = c.Receive()
	require.True(t, protocol.IsUnrecognizedMessageType(err))
	require.True(t, protocol.IsFatal(err))
}

func TestReceiveShortBodyIsUnderflow(t *testing.T) {
	testlog.Start(t)
	c, err := NewClient(&scriptConn{chunks: [][]byte{[]byte("A12\n")}}, DefaultConfig(), &clientEvents{})
	require.NoError(t, err)
	_, err = c.Receive()
	require.ErrorIs(t, err, protocol.ErrUnderflow)
}

func TestSendRejectsTrailerInPayload(t *testing.T) {
	testlog.Start(t)
	conn := &scriptConn{}
	srv, err := NewServer(conn, DefaultConfig(), &serverEvents{})
	require.NoError(t, err)
	require.ErrorIs(t, srv.SendSequenced("093000000", []byte("a\nb")), ErrTrailerInBody)
	require.ErrorIs(t, srv.SendSequenced("093000000", nil), protocol.ErrUnderflow)
	require.Zero(t, conn.out.Len())
}

func TestClosedSession(t *testing.T) {
	testlog.Start(t)
	f := newFixture(t)
	require.NoError(t, f.client.Close())
	require.ErrorIs(t, f.client.Close(), ErrSessionClosed)
	_, err := f.client.Receive()
	require.ErrorIs(t, err, ErrSessionClosed)
	require.ErrorIs(t, f.client.Logout(), ErrSessionClosed)
	require.True(t, f.client.Closed())

	_, err = f.server.Receive()
	require.ErrorIs(t, err, io.EOF)
}

func TestNilHandler(t *testing.T) {
	testlog.Start(t)
	_, err := NewClient(&scriptConn{}, DefaultConfig(), nil)
	require.ErrorIs(t, err, ErrNilHandler)
	_, err = NewServer(&scriptConn{}, DefaultConfig(), nil)
	require.ErrorIs(t, err, ErrNilHandler)
}
