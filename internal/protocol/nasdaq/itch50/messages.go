package itch50

import (
	"github.com/danmuck/marketwire/internal/protocol/nasdaq"
	"github.com/danmuck/marketwire/internal/protocol/wire"
)

const (
	MessageTypeSystemEvent               byte = 'S'
	MessageTypeStockDirectory            byte = 'R'
	MessageTypeStockTradingAction        byte = 'H'
	MessageTypeRegSHORestriction         byte = 'Y'
	MessageTypeMarketParticipantPosition byte = 'L'
	MessageTypeMWCBDeclineLevel          byte = 'V'
	MessageTypeMWCBStatus                byte = 'W'
	MessageTypeIPOQuotingPeriodUpdate    byte = 'K'
	MessageTypeLULDAuctionCollar         byte = 'J'
	MessageTypeOperationalHalt           byte = 'h'
	MessageTypeAddOrder                  byte = 'A'
	MessageTypeAddOrderMPID              byte = 'F'
	MessageTypeOrderExecuted             byte = 'E'
	MessageTypeOrderExecutedWithPrice    byte = 'C'
	MessageTypeOrderCancel               byte = 'X'
	MessageTypeOrderDelete               byte = 'D'
	MessageTypeOrderReplace              byte = 'U'
	MessageTypeTrade                     byte = 'P'
	MessageTypeCrossTrade                byte = 'Q'
	MessageTypeBrokenTrade               byte = 'B'
	MessageTypeNOII                      byte = 'I'
	MessageTypeRPII                      byte = 'N'
)

const (
	EventCodeStartOfMessages    byte = 'O'
	EventCodeStartOfSystemHours byte = 'S'
	EventCodeStartOfMarketHours byte = 'Q'
	EventCodeEndOfMarketHours   byte = 'M'
	EventCodeEndOfSystemHours   byte = 'E'
	EventCodeEndOfMessages      byte = 'C'
)

const (
	TradingStateHalted          byte = 'H'
	TradingStatePaused          byte = 'P'
	TradingStateQuotationPeriod byte = 'Q'
	TradingStateTrading         byte = 'T'
)

const (
	CrossTypeOpening     byte = 'O'
	CrossTypeClosing     byte = 'C'
	CrossTypeHaltedPause byte = 'H'
	CrossTypeIntraday    byte = 'I'
)

const (
	stockLen       = 8
	issueSubLen    = 2
	reasonLen      = 4
	mpidLen        = 4
	attributionLen = 4
	headerLen      = 10
)

// Message is one decoded TotalView-ITCH 5.0 message.
type Message interface {
	Type() byte
	// Size is the encoded length excluding the type byte.
	Size() int
	decode(r *wire.Reader)
	encode(w *wire.Writer)
}

// Header is the prefix shared by every ITCH 5.0 message.
type Header struct {
	StockLocate    uint16
	TrackingNumber uint16
	Timestamp      nasdaq.Timestamp
}

func (h *Header) decode(r *wire.Reader) {
	h.StockLocate = r.Uint16()
	h.TrackingNumber = r.Uint16()
	h.Timestamp.High = r.Uint16()
	h.Timestamp.Low = r.Uint32()
}

func (h *Header) encode(w *wire.Writer) {
	w.PutUint16(h.StockLocate)
	w.PutUint16(h.TrackingNumber)
	w.PutUint16(h.Timestamp.High)
	w.PutUint32(h.Timestamp.Low)
}

func getPrice4(r *wire.Reader) nasdaq.Price4 { return nasdaq.Price4(r.Uint32()) }
func getPrice8(r *wire.Reader) nasdaq.Price8 { return nasdaq.Price8(r.Uint64()) }

type SystemEvent struct {
	Header
	EventCode byte
}

func (*SystemEvent) Type() byte { return MessageTypeSystemEvent }
func (*SystemEvent) Size() int  { return headerLen + 1 }

func (m *SystemEvent) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.EventCode = r.Byte()
}

func (m *SystemEvent) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutByte(m.EventCode)
}

type StockDirectory struct {
	Header
	Stock                       string
	MarketCategory              byte
	FinancialStatusIndicator    byte
	RoundLotSize                uint32
	RoundLotsOnly               byte
	IssueClassification         byte
	IssueSubType                string
	Authenticity                byte
	ShortSaleThresholdIndicator byte
	IPOFlag                     byte
	LULDReferencePriceTier      byte
	ETPFlag                     byte
	ETPLeverageFactor           uint32
	InverseIndicator            byte
}

func (*StockDirectory) Type() byte { return MessageTypeStockDirectory }
func (*StockDirectory) Size() int  { return headerLen + stockLen + 2 + 4 + 2 + issueSubLen + 5 + 4 + 1 }

func (m *StockDirectory) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.Stock = r.Text(stockLen)
	m.MarketCategory = r.Byte()
	m.FinancialStatusIndicator = r.Byte()
	m.RoundLotSize = r.Uint32()
	m.RoundLotsOnly = r.Byte()
	m.IssueClassification = r.Byte()
	m.IssueSubType = r.Text(issueSubLen)
	m.Authenticity = r.Byte()
	m.ShortSaleThresholdIndicator = r.Byte()
	m.IPOFlag = r.Byte()
	m.LULDReferencePriceTier = r.Byte()
	m.ETPFlag = r.Byte()
	m.ETPLeverageFactor = r.Uint32()
	m.InverseIndicator = r.Byte()
}

func (m *StockDirectory) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutText(m.Stock, stockLen)
	w.PutByte(m.MarketCategory)
	w.PutByte(m.FinancialStatusIndicator)
	w.PutUint32(m.RoundLotSize)
	w.PutByte(m.RoundLotsOnly)
	w.PutByte(m.IssueClassification)
	w.PutText(m.IssueSubType, issueSubLen)
	w.PutByte(m.Authenticity)
	w.PutByte(m.ShortSaleThresholdIndicator)
	w.PutByte(m.IPOFlag)
	w.PutByte(m.LULDReferencePriceTier)
	w.PutByte(m.ETPFlag)
	w.PutUint32(m.ETPLeverageFactor)
	w.PutByte(m.InverseIndicator)
}

type StockTradingAction struct {
	Header
	Stock        string
	TradingState byte
	Reserved     byte
	Reason       string
}

func (*StockTradingAction) Type() byte { return MessageTypeStockTradingAction }
func (*StockTradingAction) Size() int  { return headerLen + stockLen + 2 + reasonLen }

func (m *StockTradingAction) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.Stock = r.Text(stockLen)
	m.TradingState = r.Byte()
	m.Reserved = r.Byte()
	m.Reason = r.Text(reasonLen)
}

func (m *StockTradingAction) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutText(m.Stock, stockLen)
	w.PutByte(m.TradingState)
	w.PutByte(m.Reserved)
	w.PutText(m.Reason, reasonLen)
}

type RegSHORestriction struct {
	Header
	Stock        string
	RegSHOAction byte
}

func (*RegSHORestriction) Type() byte { return MessageTypeRegSHORestriction }
func (*RegSHORestriction) Size() int  { return headerLen + stockLen + 1 }

func (m *RegSHORestriction) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.Stock = r.Text(stockLen)
	m.RegSHOAction = r.Byte()
}

func (m *RegSHORestriction) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutText(m.Stock, stockLen)
	w.PutByte(m.RegSHOAction)
}

type MarketParticipantPosition struct {
	Header
	MPID                   string
	Stock                  string
	PrimaryMarketMaker     byte
	MarketMakerMode        byte
	MarketParticipantState byte
}

func (*MarketParticipantPosition) Type() byte { return MessageTypeMarketParticipantPosition }
func (*MarketParticipantPosition) Size() int  { return headerLen + mpidLen + stockLen + 3 }

func (m *MarketParticipantPosition) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.MPID = r.Text(mpidLen)
	m.Stock = r.Text(stockLen)
	m.PrimaryMarketMaker = r.Byte()
	m.MarketMakerMode = r.Byte()
	m.MarketParticipantState = r.Byte()
}

func (m *MarketParticipantPosition) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutText(m.MPID, mpidLen)
	w.PutText(m.Stock, stockLen)
	w.PutByte(m.PrimaryMarketMaker)
	w.PutByte(m.MarketMakerMode)
	w.PutByte(m.MarketParticipantState)
}

type MWCBDeclineLevel struct {
	Header
	Level1 nasdaq.Price8
	Level2 nasdaq.Price8
	Level3 nasdaq.Price8
}

func (*MWCBDeclineLevel) Type() byte { return MessageTypeMWCBDeclineLevel }
func (*MWCBDeclineLevel) Size() int  { return headerLen + 3*8 }

func (m *MWCBDeclineLevel) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.Level1 = getPrice8(r)
	m.Level2 = getPrice8(r)
	m.Level3 = getPrice8(r)
}

func (m *MWCBDeclineLevel) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutUint64(uint64(m.Level1))
	w.PutUint64(uint64(m.Level2))
	w.PutUint64(uint64(m.Level3))
}

type MWCBStatus struct {
	Header
	BreachedLevel byte
}

func (*MWCBStatus) Type() byte { return MessageTypeMWCBStatus }
func (*MWCBStatus) Size() int  { return headerLen + 1 }

func (m *MWCBStatus) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.BreachedLevel = r.Byte()
}

func (m *MWCBStatus) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutByte(m.BreachedLevel)
}

type IPOQuotingPeriodUpdate struct {
	Header
	Stock                        string
	IPOQuotationReleaseTime      uint32
	IPOQuotationReleaseQualifier byte
	IPOPrice                     nasdaq.Price4
}

func (*IPOQuotingPeriodUpdate) Type() byte { return MessageTypeIPOQuotingPeriodUpdate }
func (*IPOQuotingPeriodUpdate) Size() int  { return headerLen + stockLen + 4 + 1 + 4 }

func (m *IPOQuotingPeriodUpdate) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.Stock = r.Text(stockLen)
	m.IPOQuotationReleaseTime = r.Uint32()
	m.IPOQuotationReleaseQualifier = r.Byte()
	m.IPOPrice = getPrice4(r)
}

func (m *IPOQuotingPeriodUpdate) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutText(m.Stock, stockLen)
	w.PutUint32(m.IPOQuotationReleaseTime)
	w.PutByte(m.IPOQuotationReleaseQualifier)
	w.PutUint32(uint32(m.IPOPrice))
}

type LULDAuctionCollar struct {
	Header
	Stock                       string
	AuctionCollarReferencePrice nasdaq.Price4
	UpperAuctionCollarPrice     nasdaq.Price4
	LowerAuctionCollarPrice     nasdaq.Price4
	AuctionCollarExtension      uint32
}

func (*LULDAuctionCollar) Type() byte { return MessageTypeLULDAuctionCollar }
func (*LULDAuctionCollar) Size() int  { return headerLen + stockLen + 4*4 }

func (m *LULDAuctionCollar) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.Stock = r.Text(stockLen)
	m.AuctionCollarReferencePrice = getPrice4(r)
	m.UpperAuctionCollarPrice = getPrice4(r)
	m.LowerAuctionCollarPrice = getPrice4(r)
	m.AuctionCollarExtension = r.Uint32()
}

func (m *LULDAuctionCollar) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutText(m.Stock, stockLen)
	w.PutUint32(uint32(m.AuctionCollarReferencePrice))
	w.PutUint32(uint32(m.UpperAuctionCollarPrice))
	w.PutUint32(uint32(m.LowerAuctionCollarPrice))
	w.PutUint32(m.AuctionCollarExtension)
}

type OperationalHalt struct {
	Header
	Stock                 string
	MarketCode            byte
	OperationalHaltAction byte
}

func (*OperationalHalt) Type() byte { return MessageTypeOperationalHalt }
func (*OperationalHalt) Size() int  { return headerLen + stockLen + 2 }

func (m *OperationalHalt) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.Stock = r.Text(stockLen)
	m.MarketCode = r.Byte()
	m.OperationalHaltAction = r.Byte()
}

func (m *OperationalHalt) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutText(m.Stock, stockLen)
	w.PutByte(m.MarketCode)
	w.PutByte(m.OperationalHaltAction)
}

type AddOrder struct {
	Header
	OrderReferenceNumber int64
	BuySellIndicator     byte
	Shares               uint32
	Stock                string
	Price                nasdaq.Price4
}

func (*AddOrder) Type() byte { return MessageTypeAddOrder }
func (*AddOrder) Size() int  { return headerLen + 8 + 1 + 4 + stockLen + 4 }

func (m *AddOrder) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.OrderReferenceNumber = r.Int64()
	m.BuySellIndicator = r.Byte()
	m.Shares = r.Uint32()
	m.Stock = r.Text(stockLen)
	m.Price = getPrice4(r)
}

func (m *AddOrder) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutInt64(m.OrderReferenceNumber)
	w.PutByte(m.BuySellIndicator)
	w.PutUint32(m.Shares)
	w.PutText(m.Stock, stockLen)
	w.PutUint32(uint32(m.Price))
}

type AddOrderMPID struct {
	Header
	OrderReferenceNumber int64
	BuySellIndicator     byte
	Shares               uint32
	Stock                string
	Price                nasdaq.Price4
	Attribution          string
}

func (*AddOrderMPID) Type() byte { return MessageTypeAddOrderMPID }
func (*AddOrderMPID) Size() int  { return headerLen + 8 + 1 + 4 + stockLen + 4 + attributionLen }

func (m *AddOrderMPID) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.OrderReferenceNumber = r.Int64()
	m.BuySellIndicator = r.Byte()
	m.Shares = r.Uint32()
	m.Stock = r.Text(stockLen)
	m.Price = getPrice4(r)
	m.Attribution = r.Text(attributionLen)
}

func (m *AddOrderMPID) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutInt64(m.OrderReferenceNumber)
	w.PutByte(m.BuySellIndicator)
	w.PutUint32(m.Shares)
	w.PutText(m.Stock, stockLen)
	w.PutUint32(uint32(m.Price))
	w.PutText(m.Attribution, attributionLen)
}

type OrderExecuted struct {
	Header
	OrderReferenceNumber int64
	ExecutedShares       uint32
	MatchNumber          int64
}

func (*OrderExecuted) Type() byte { return MessageTypeOrderExecuted }
func (*OrderExecuted) Size() int  { return headerLen + 8 + 4 + 8 }

func (m *OrderExecuted) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.OrderReferenceNumber = r.Int64()
	m.ExecutedShares = r.Uint32()
	m.MatchNumber = r.Int64()
}

func (m *OrderExecuted) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutInt64(m.OrderReferenceNumber)
	w.PutUint32(m.ExecutedShares)
	w.PutInt64(m.MatchNumber)
}

type OrderExecutedWithPrice struct {
	Header
	OrderReferenceNumber int64
	ExecutedShares       uint32
	MatchNumber          int64
	Printable            byte
	ExecutionPrice       nasdaq.Price4
}

func (*OrderExecutedWithPrice) Type() byte { return MessageTypeOrderExecutedWithPrice }
func (*OrderExecutedWithPrice) Size() int  { return headerLen + 8 + 4 + 8 + 1 + 4 }

func (m *OrderExecutedWithPrice) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.OrderReferenceNumber = r.Int64()
	m.ExecutedShares = r.Uint32()
	m.MatchNumber = r.Int64()
	m.Printable = r.Byte()
	m.ExecutionPrice = getPrice4(r)
}

func (m *OrderExecutedWithPrice) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutInt64(m.OrderReferenceNumber)
	w.PutUint32(m.ExecutedShares)
	w.PutInt64(m.MatchNumber)
	w.PutByte(m.Printable)
	w.PutUint32(uint32(m.ExecutionPrice))
}

type OrderCancel struct {
	Header
	OrderReferenceNumber int64
	CanceledShares       uint32
}

func (*OrderCancel) Type() byte { return MessageTypeOrderCancel }
func (*OrderCancel) Size() int  { return headerLen + 8 + 4 }

func (m *OrderCancel) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.OrderReferenceNumber = r.Int64()
	m.CanceledShares = r.Uint32()
}

func (m *OrderCancel) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutInt64(m.OrderReferenceNumber)
	w.PutUint32(m.CanceledShares)
}

type OrderDelete struct {
	Header
	OrderReferenceNumber int64
}

func (*OrderDelete) Type() byte { return MessageTypeOrderDelete }
func (*OrderDelete) Size() int  { return headerLen + 8 }

func (m *OrderDelete) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.OrderReferenceNumber = r.Int64()
}

func (m *OrderDelete) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutInt64(m.OrderReferenceNumber)
}

type OrderReplace struct {
	Header
	OriginalOrderReferenceNumber int64
	NewOrderReferenceNumber      int64
	Shares                       uint32
	Price                        nasdaq.Price4
}

func (*OrderReplace) Type() byte { return MessageTypeOrderReplace }
func (*OrderReplace) Size() int  { return headerLen + 8 + 8 + 4 + 4 }

func (m *OrderReplace) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.OriginalOrderReferenceNumber = r.Int64()
	m.NewOrderReferenceNumber = r.Int64()
	m.Shares = r.Uint32()
	m.Price = getPrice4(r)
}

func (m *OrderReplace) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutInt64(m.OriginalOrderReferenceNumber)
	w.PutInt64(m.NewOrderReferenceNumber)
	w.PutUint32(m.Shares)
	w.PutUint32(uint32(m.Price))
}

type Trade struct {
	Header
	OrderReferenceNumber int64
	BuySellIndicator     byte
	Shares               uint32
	Stock                string
	Price                nasdaq.Price4
	MatchNumber          int64
}

func (*Trade) Type() byte { return MessageTypeTrade }
func (*Trade) Size() int  { return headerLen + 8 + 1 + 4 + stockLen + 4 + 8 }

func (m *Trade) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.OrderReferenceNumber = r.Int64()
	m.BuySellIndicator = r.Byte()
	m.Shares = r.Uint32()
	m.Stock = r.Text(stockLen)
	m.Price = getPrice4(r)
	m.MatchNumber = r.Int64()
}

func (m *Trade) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutInt64(m.OrderReferenceNumber)
	w.PutByte(m.BuySellIndicator)
	w.PutUint32(m.Shares)
	w.PutText(m.Stock, stockLen)
	w.PutUint32(uint32(m.Price))
	w.PutInt64(m.MatchNumber)
}

// CrossTrade carries 8-byte shares as published in ITCH 5.0.
type CrossTrade struct {
	Header
	Shares      uint64
	Stock       string
	CrossPrice  nasdaq.Price4
	MatchNumber int64
	CrossType   byte
}

func (*CrossTrade) Type() byte { return MessageTypeCrossTrade }
func (*CrossTrade) Size() int  { return headerLen + 8 + stockLen + 4 + 8 + 1 }

func (m *CrossTrade) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.Shares = r.Uint64()
	m.Stock = r.Text(stockLen)
	m.CrossPrice = getPrice4(r)
	m.MatchNumber = r.Int64()
	m.CrossType = r.Byte()
}

func (m *CrossTrade) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutUint64(m.Shares)
	w.PutText(m.Stock, stockLen)
	w.PutUint32(uint32(m.CrossPrice))
	w.PutInt64(m.MatchNumber)
	w.PutByte(m.CrossType)
}

type BrokenTrade struct {
	Header
	MatchNumber int64
}

func (*BrokenTrade) Type() byte { return MessageTypeBrokenTrade }
func (*BrokenTrade) Size() int  { return headerLen + 8 }

func (m *BrokenTrade) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.MatchNumber = r.Int64()
}

func (m *BrokenTrade) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutInt64(m.MatchNumber)
}

// NOII is the Net Order Imbalance Indicator.
type NOII struct {
	Header
	PairedShares            uint64
	ImbalanceShares         uint64
	ImbalanceDirection      byte
	Stock                   string
	FarPrice                nasdaq.Price4
	NearPrice               nasdaq.Price4
	CurrentReferencePrice   nasdaq.Price4
	CrossType               byte
	PriceVariationIndicator byte
}

func (*NOII) Type() byte { return MessageTypeNOII }
func (*NOII) Size() int  { return headerLen + 8 + 8 + 1 + stockLen + 3*4 + 2 }

func (m *NOII) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.PairedShares = r.Uint64()
	m.ImbalanceShares = r.Uint64()
	m.ImbalanceDirection = r.Byte()
	m.Stock = r.Text(stockLen)
	m.FarPrice = getPrice4(r)
	m.NearPrice = getPrice4(r)
	m.CurrentReferencePrice = getPrice4(r)
	m.CrossType = r.Byte()
	m.PriceVariationIndicator = r.Byte()
}

func (m *NOII) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutUint64(m.PairedShares)
	w.PutUint64(m.ImbalanceShares)
	w.PutByte(m.ImbalanceDirection)
	w.PutText(m.Stock, stockLen)
	w.PutUint32(uint32(m.FarPrice))
	w.PutUint32(uint32(m.NearPrice))
	w.PutUint32(uint32(m.CurrentReferencePrice))
	w.PutByte(m.CrossType)
	w.PutByte(m.PriceVariationIndicator)
}

// RPII is the Retail Price Improvement Indicator.
type RPII struct {
	Header
	Stock        string
	InterestFlag byte
}

func (*RPII) Type() byte { return MessageTypeRPII }
func (*RPII) Size() int  { return headerLen + stockLen + 1 }

func (m *RPII) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.Stock = r.Text(stockLen)
	m.InterestFlag = r.Byte()
}

func (m *RPII) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutText(m.Stock, stockLen)
	w.PutByte(m.InterestFlag)
}
