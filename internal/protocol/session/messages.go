package session

import (
	"fmt"
	"time"

	"github.com/danmuck/marketwire/internal/protocol/wire"
)

// Server to client message types.
const (
	MessageTypeLoginAccepted       byte = 'A'
	MessageTypeLoginRejected       byte = 'J'
	MessageTypeSequencedData       byte = 'S'
	MessageTypeServerHeartbeat     byte = 'H'
	MessageTypeErrorNotification   byte = 'E'
	MessageTypeInstrumentDirectory byte = 'R'
)

// Client to server message types.
const (
	MessageTypeLoginRequest                 byte = 'L'
	MessageTypeLogoutRequest                byte = 'O'
	MessageTypeClientHeartbeat              byte = 'R'
	MessageTypeMarketSnapshotRequest        byte = 'M'
	MessageTypeTickerSubscribeRequest       byte = 'T'
	MessageTypeTickerUnsubscribeRequest     byte = 'U'
	MessageTypeMarketDataSubscribeRequest   byte = 'A'
	MessageTypeMarketDataUnsubscribeRequest byte = 'B'
	MessageTypeInstrumentDirectoryRequest   byte = 'I'
)

const (
	LoginNameLen        = 40
	PasswordLen         = 40
	LoginReservedLen    = 9
	SequenceNumberLen   = 10
	RejectReasonLen     = 20
	SequencedTimeLen    = 9
	ErrorExplanationLen = 100
	CurrencyPairLen     = 7
	PairCountLen        = 4
	MaxDirectoryPairs   = 256
)

const (
	flagTrue  byte = 'T'
	flagFalse byte = 'F'
)

// packet is the body codec shared by every session message.
type packet interface {
	Type() byte
	size() int
	encode(w *wire.Writer)
	decode(r *wire.Reader)
}

// ServerMessage is one of *LoginAccepted, *LoginRejected, *SequencedData,
// EndOfSession, *ErrorNotification or *InstrumentDirectory.
type ServerMessage interface {
	packet
	isServerMessage()
}

// ClientMessage is one of *LoginRequest, LogoutRequest,
// *MarketSnapshotRequest, *TickerSubscribeRequest, *TickerUnsubscribeRequest,
// *MarketDataSubscribeRequest, *MarketDataUnsubscribeRequest or
// InstrumentDirectoryRequest.
type ClientMessage interface {
	packet
	isClientMessage()
}

type LoginAccepted struct {
	SequenceNumber uint64
}

func (*LoginAccepted) isServerMessage() {}
func (*LoginAccepted) Type() byte       { return MessageTypeLoginAccepted }
func (*LoginAccepted) size() int        { return SequenceNumberLen }

func (m *LoginAccepted) encode(w *wire.Writer) {
	w.PutASCIIUint(m.SequenceNumber, SequenceNumberLen)
}

func (m *LoginAccepted) decode(r *wire.Reader) {
	m.SequenceNumber = r.ASCIIUint(SequenceNumberLen)
}

type LoginRejected struct {
	Reason string
}

func (*LoginRejected) isServerMessage() {}
func (*LoginRejected) Type() byte       { return MessageTypeLoginRejected }
func (*LoginRejected) size() int        { return RejectReasonLen }

func (m *LoginRejected) encode(w *wire.Writer) { w.PutText(m.Reason, RejectReasonLen) }
func (m *LoginRejected) decode(r *wire.Reader) { m.Reason = r.Text(RejectReasonLen) }

// SequencedData carries one book message. Time is HHMMSSmmm. On receive,
// Payload aliases the session buffer and is only valid until the handler
// returns.
type SequencedData struct {
	Time    string
	Payload []byte
}

func (*SequencedData) isServerMessage() {}
func (*SequencedData) Type() byte       { return MessageTypeSequencedData }

// size covers the time field only; the payload travels as its own buffer.
func (*SequencedData) size() int { return SequencedTimeLen }

func (m *SequencedData) encode(w *wire.Writer) { w.PutText(m.Time, SequencedTimeLen) }

func (m *SequencedData) decode(r *wire.Reader) {
	m.Time = r.Text(SequencedTimeLen)
	m.Payload = r.Rest()
}

// SetTime stores the wall clock time of ts as HHMMSSmmm.
func (m *SequencedData) SetTime(ts time.Time) {
	m.Time = FormatSequencedTime(ts)
}

// Offset parses Time as a duration since midnight.
func (m *SequencedData) Offset() (time.Duration, error) {
	return ParseSequencedTime(m.Time)
}

func FormatSequencedTime(ts time.Time) string {
	return fmt.Sprintf("%02d%02d%02d%03d", ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond()/int(time.Millisecond))
}

func ParseSequencedTime(s string) (time.Duration, error) {
	v, err := wire.ParseASCIIUint([]byte(s))
	if err != nil || len(s) != SequencedTimeLen {
		return 0, fmt.Errorf("session: invalid sequenced time %q", s)
	}
	ms := v % 1000
	sec := v / 1000 % 100
	minute := v / 100000 % 100
	hour := v / 10000000
	if hour > 23 || minute > 59 || sec > 59 {
		return 0, fmt.Errorf("session: invalid sequenced time %q", s)
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute +
		time.Duration(sec)*time.Second + time.Duration(ms)*time.Millisecond, nil
}

// EndOfSession is a SequencedData packet with an empty body.
type EndOfSession struct{}

func (EndOfSession) isServerMessage()    {}
func (EndOfSession) Type() byte          { return MessageTypeSequencedData }
func (EndOfSession) size() int           { return 0 }
func (EndOfSession) encode(*wire.Writer) {}
func (EndOfSession) decode(*wire.Reader) {}

type ErrorNotification struct {
	Explanation string
}

func (*ErrorNotification) isServerMessage() {}
func (*ErrorNotification) Type() byte       { return MessageTypeErrorNotification }
func (*ErrorNotification) size() int        { return ErrorExplanationLen }

func (m *ErrorNotification) encode(w *wire.Writer) { w.PutText(m.Explanation, ErrorExplanationLen) }
func (m *ErrorNotification) decode(r *wire.Reader) { m.Explanation = r.Text(ErrorExplanationLen) }

// InstrumentDirectory lists the currency pairs a server offers.
type InstrumentDirectory struct {
	CurrencyPairs []string
}

func (*InstrumentDirectory) isServerMessage() {}
func (*InstrumentDirectory) Type() byte       { return MessageTypeInstrumentDirectory }

func (m *InstrumentDirectory) size() int {
	return PairCountLen + len(m.CurrencyPairs)*CurrencyPairLen
}

func (m *InstrumentDirectory) encode(w *wire.Writer) {
	w.PutASCIIUint(uint64(len(m.CurrencyPairs)), PairCountLen)
	for _, pair := range m.CurrencyPairs {
		w.PutText(pair, CurrencyPairLen)
	}
}

func (m *InstrumentDirectory) decode(r *wire.Reader) {
	n := r.ASCIIUint(PairCountLen)
	if r.Err() != nil {
		return
	}
	if r.Need(int(n)*CurrencyPairLen) != nil {
		return
	}
	m.CurrencyPairs = make([]string, 0, n)
	for i := uint64(0); i < n && r.Err() == nil; i++ {
		m.CurrencyPairs = append(m.CurrencyPairs, r.Text(CurrencyPairLen))
	}
}

type LoginRequest struct {
	LoginName             string
	Password              string
	MarketDataUnsubscribe bool
}

func (*LoginRequest) isClientMessage() {}
func (*LoginRequest) Type() byte       { return MessageTypeLoginRequest }
func (*LoginRequest) size() int        { return LoginNameLen + PasswordLen + 1 + LoginReservedLen }

func (m *LoginRequest) encode(w *wire.Writer) {
	w.PutText(m.LoginName, LoginNameLen)
	w.PutText(m.Password, PasswordLen)
	flag := flagFalse
	if m.MarketDataUnsubscribe {
		flag = flagTrue
	}
	w.PutByte(flag)
	w.PutASCIIUint(0, LoginReservedLen)
}

func (m *LoginRequest) decode(r *wire.Reader) {
	m.LoginName = r.Text(LoginNameLen)
	m.Password = r.Text(PasswordLen)
	m.MarketDataUnsubscribe = r.Byte() == flagTrue
	r.Skip(LoginReservedLen)
}

type LogoutRequest struct{}

func (LogoutRequest) isClientMessage()    {}
func (LogoutRequest) Type() byte          { return MessageTypeLogoutRequest }
func (LogoutRequest) size() int           { return 0 }
func (LogoutRequest) encode(*wire.Writer) {}
func (LogoutRequest) decode(*wire.Reader) {}

type InstrumentDirectoryRequest struct{}

func (InstrumentDirectoryRequest) isClientMessage()    {}
func (InstrumentDirectoryRequest) Type() byte          { return MessageTypeInstrumentDirectoryRequest }
func (InstrumentDirectoryRequest) size() int           { return 0 }
func (InstrumentDirectoryRequest) encode(*wire.Writer) {}
func (InstrumentDirectoryRequest) decode(*wire.Reader) {}

type MarketSnapshotRequest struct {
	CurrencyPair string
}

func (*MarketSnapshotRequest) isClientMessage() {}
func (*MarketSnapshotRequest) Type() byte       { return MessageTypeMarketSnapshotRequest }
func (*MarketSnapshotRequest) size() int        { return CurrencyPairLen }

func (m *MarketSnapshotRequest) encode(w *wire.Writer) { w.PutText(m.CurrencyPair, CurrencyPairLen) }
func (m *MarketSnapshotRequest) decode(r *wire.Reader) { m.CurrencyPair = r.Text(CurrencyPairLen) }

type TickerSubscribeRequest struct {
	CurrencyPair string
}

func (*TickerSubscribeRequest) isClientMessage() {}
func (*TickerSubscribeRequest) Type() byte       { return MessageTypeTickerSubscribeRequest }
func (*TickerSubscribeRequest) size() int        { return CurrencyPairLen }

func (m *TickerSubscribeRequest) encode(w *wire.Writer) { w.PutText(m.CurrencyPair, CurrencyPairLen) }
func (m *TickerSubscribeRequest) decode(r *wire.Reader) { m.CurrencyPair = r.Text(CurrencyPairLen) }

type TickerUnsubscribeRequest struct {
	CurrencyPair string
}

func (*TickerUnsubscribeRequest) isClientMessage() {}
func (*TickerUnsubscribeRequest) Type() byte       { return MessageTypeTickerUnsubscribeRequest }
func (*TickerUnsubscribeRequest) size() int        { return CurrencyPairLen }

func (m *TickerUnsubscribeRequest) encode(w *wire.Writer) { w.PutText(m.CurrencyPair, CurrencyPairLen) }
func (m *TickerUnsubscribeRequest) decode(r *wire.Reader) { m.CurrencyPair = r.Text(CurrencyPairLen) }

type MarketDataSubscribeRequest struct {
	CurrencyPair string
}

func (*MarketDataSubscribeRequest) isClientMessage() {}
func (*MarketDataSubscribeRequest) Type() byte       { return MessageTypeMarketDataSubscribeRequest }
func (*MarketDataSubscribeRequest) size() int        { return CurrencyPairLen }

func (m *MarketDataSubscribeRequest) encode(w *wire.Writer) {
	w.PutText(m.CurrencyPair, CurrencyPairLen)
}
func (m *MarketDataSubscribeRequest) decode(r *wire.Reader) { m.CurrencyPair = r.Text(CurrencyPairLen) }

type MarketDataUnsubscribeRequest struct {
	CurrencyPair string
}

func (*MarketDataUnsubscribeRequest) isClientMessage() {}
func (*MarketDataUnsubscribeRequest) Type() byte       { return MessageTypeMarketDataUnsubscribeRequest }
func (*MarketDataUnsubscribeRequest) size() int        { return CurrencyPairLen }

func (m *MarketDataUnsubscribeRequest) encode(w *wire.Writer) {
	w.PutText(m.CurrencyPair, CurrencyPairLen)
}
func (m *MarketDataUnsubscribeRequest) decode(r *wire.Reader) {
	m.CurrencyPair = r.Text(CurrencyPairLen)
}
