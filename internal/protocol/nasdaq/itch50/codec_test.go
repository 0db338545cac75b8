package itch50

import (
	"errors"
	"math"
	"testing"

	"github.com/danmuck/marketwire/internal/protocol"
	"github.com/danmuck/marketwire/internal/protocol/nasdaq"
	"github.com/danmuck/marketwire/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

var header = Header{
	StockLocate:    7,
	TrackingNumber: 2,
	Timestamp:      nasdaq.Timestamp{High: 0x1234, Low: math.MaxUint32},
}

func sampleMessages() []Message {
	return []Message{
		&SystemEvent{Header: header, EventCode: EventCodeStartOfMessages},
		&StockDirectory{
			Header:                      header,
			Stock:                       "AAPL",
			MarketCategory:              'Q',
			FinancialStatusIndicator:    'N',
			RoundLotSize:                100,
			RoundLotsOnly:               'N',
			IssueClassification:         'C',
			IssueSubType:                "Z",
			Authenticity:                'P',
			ShortSaleThresholdIndicator: 'N',
			IPOFlag:                     ' ',
			LULDReferencePriceTier:      '1',
			ETPFlag:                     'N',
			ETPLeverageFactor:           0,
			InverseIndicator:            'N',
		},
		&StockTradingAction{Header: header, Stock: "ABCDEFGH", TradingState: TradingStateTrading, Reason: "MWC1"},
		&RegSHORestriction{Header: header, Stock: "FOO", RegSHOAction: '1'},
		&MarketParticipantPosition{Header: header, MPID: "NSDQ", Stock: "FOO", PrimaryMarketMaker: 'Y', MarketMakerMode: 'N', MarketParticipantState: 'A'},
		&MWCBDeclineLevel{Header: header, Level1: 1, Level2: math.MaxUint64, Level3: 123456789},
		&MWCBStatus{Header: header, BreachedLevel: '2'},
		&IPOQuotingPeriodUpdate{Header: header, Stock: "IPO", IPOQuotationReleaseTime: 34200, IPOQuotationReleaseQualifier: 'A', IPOPrice: 250000},
		&LULDAuctionCollar{Header: header, Stock: "FOO", AuctionCollarReferencePrice: 1, UpperAuctionCollarPrice: 2, LowerAuctionCollarPrice: 3, AuctionCollarExtension: 4},
		&OperationalHalt{Header: header, Stock: "FOO", MarketCode: 'Q', OperationalHaltAction: 'H'},
		&AddOrder{Header: header, OrderReferenceNumber: 1, BuySellIndicator: nasdaq.Buy, Shares: math.MaxUint32, Stock: "FOO", Price: math.MaxUint32},
		&AddOrderMPID{Header: header, OrderReferenceNumber: 2, BuySellIndicator: nasdaq.Sell, Shares: 100, Stock: "FOO", Price: 10000, Attribution: "ABCD"},
		&OrderExecuted{Header: header, OrderReferenceNumber: 3, ExecutedShares: 50, MatchNumber: math.MaxInt64},
		&OrderExecutedWithPrice{Header: header, OrderReferenceNumber: 4, ExecutedShares: 50, MatchNumber: 9, Printable: 'Y', ExecutionPrice: 12345},
		&OrderCancel{Header: header, OrderReferenceNumber: 5, CanceledShares: 10},
		&OrderDelete{Header: header, OrderReferenceNumber: 6},
		&OrderReplace{Header: header, OriginalOrderReferenceNumber: 6, NewOrderReferenceNumber: 7, Shares: 10, Price: 5},
		&Trade{Header: header, OrderReferenceNumber: 8, BuySellIndicator: nasdaq.Buy, Shares: 10, Stock: "FOO", Price: 5, MatchNumber: 11},
		&CrossTrade{Header: header, Shares: math.MaxUint64, Stock: "FOO", CrossPrice: 5, MatchNumber: 12, CrossType: CrossTypeOpening},
		&BrokenTrade{Header: header, MatchNumber: 13},
		&NOII{Header: header, PairedShares: 1, ImbalanceShares: 2, ImbalanceDirection: 'B', Stock: "FOO", FarPrice: 3, NearPrice: 4, CurrentReferencePrice: 5, CrossType: 'C', PriceVariationIndicator: 'L'},
		&RPII{Header: header, Stock: "FOO", InterestFlag: 'A'},
	}
}

func TestMessageSizes(t *testing.T) {
	testlog.Start(t)
	want := map[byte]int{
		MessageTypeSystemEvent:               11,
		MessageTypeStockDirectory:            38,
		MessageTypeStockTradingAction:        24,
		MessageTypeRegSHORestriction:         19,
		MessageTypeMarketParticipantPosition: 25,
		MessageTypeMWCBDeclineLevel:          34,
		MessageTypeMWCBStatus:                11,
		MessageTypeIPOQuotingPeriodUpdate:    27,
		MessageTypeLULDAuctionCollar:         34,
		MessageTypeOperationalHalt:           20,
		MessageTypeAddOrder:                  35,
		MessageTypeAddOrderMPID:              39,
		MessageTypeOrderExecuted:             30,
		MessageTypeOrderExecutedWithPrice:    35,
		MessageTypeOrderCancel:               22,
		MessageTypeOrderDelete:               18,
		MessageTypeOrderReplace:              34,
		MessageTypeTrade:                     43,
		MessageTypeCrossTrade:                39,
		MessageTypeBrokenTrade:               18,
		MessageTypeNOII:                      49,
		MessageTypeRPII:                      19,
	}
	for tag, size := range want {
		m := New(tag)
		require.NotNil(t, m, "type %q", tag)
		require.Equal(t, size, m.Size(), "type %q", tag)
	}
}

func TestRoundTripAllMessages(t *testing.T) {
	testlog.Start(t)
	for _, in := range sampleMessages() {
		buf := make([]byte, 64)
		n, err := Encode(in, buf)
		require.NoError(t, err, "%T", in)
		require.Equal(t, 1+in.Size(), n, "%T", in)
		require.Equal(t, in.Type(), buf[0])

		out, err := Decode(buf[:n])
		require.NoError(t, err, "%T", in)
		require.Equal(t, in, out)
	}
}

func TestAddOrderWireLayout(t *testing.T) {
	testlog.Start(t)
	in := &AddOrder{
		Header:               Header{StockLocate: 1, TrackingNumber: 2, Timestamp: nasdaq.Timestamp{High: 3, Low: 4}},
		OrderReferenceNumber: 5,
		BuySellIndicator:     nasdaq.Buy,
		Shares:               6,
		Stock:                "FOO",
		Price:                nasdaq.Price4(95000),
	}
	b, err := Append(nil, in)
	require.NoError(t, err)
	require.Equal(t, []byte{
		'A',
		0x00, 0x01,
		0x00, 0x02,
		0x00, 0x03,
		0x00, 0x00, 0x00, 0x04,
		0, 0, 0, 0, 0, 0, 0, 5,
		'B',
		0x00, 0x00, 0x00, 0x06,
		'F', 'O', 'O', ' ', ' ', ' ', ' ', ' ',
		0x00, 0x01, 0x73, 0x18,
	}, b)
	require.Equal(t, "9.5000", in.Price.String())
}

func TestDecodeTruncated(t *testing.T) {
	testlog.Start(t)
	buf := make([]byte, 64)
	n, err := Encode(sampleMessages()[10], buf)
	require.NoError(t, err)
	_, err = Decode(buf[:n-1])
	require.True(t, errors.Is(err, protocol.ErrUnderflow), "got %v", err)
}

func TestDecodeUnknownType(t *testing.T) {
	testlog.Start(t)
	_, err := Decode([]byte{'z', 0, 0})
	var unknown *protocol.UnrecognizedMessageTypeError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, byte('z'), unknown.Type)
}

func TestEncodeOverflowWritesNothing(t *testing.T) {
	testlog.Start(t)
	buf := make([]byte, 10)
	n, err := Encode(&OrderDelete{Header: header, OrderReferenceNumber: 1}, buf)
	require.ErrorIs(t, err, protocol.ErrOverflow)
	require.Zero(t, n)
	require.Equal(t, make([]byte, 10), buf)
}

func TestEncodeFieldTooLong(t *testing.T) {
	testlog.Start(t)
	buf := make([]byte, 64)
	_, err := Encode(&RPII{Header: header, Stock: "TOOLONGNAME"}, buf)
	require.Error(t, err)
}

func TestParserDispatches(t *testing.T) {
	testlog.Start(t)
	var got []Message
	p := NewParser(HandlerFunc(func(m Message) error {
		got = append(got, m)
		return nil
	}))
	for _, m := range sampleMessages() {
		b, err := Append(nil, m)
		require.NoError(t, err)
		require.NoError(t, p.Parse(b))
	}
	require.Equal(t, sampleMessages(), got)
}
