package qbbo21

import (
	"github.com/danmuck/marketwire/internal/protocol/nasdaq"
	"github.com/danmuck/marketwire/internal/protocol/wire"
)

const (
	MessageTypeSystemEvent            byte = 'S'
	MessageTypeStockDirectory         byte = 'R'
	MessageTypeStockTradingAction     byte = 'H'
	MessageTypeRegSHORestriction      byte = 'Y'
	MessageTypeMWCBDeclineLevel       byte = 'V'
	MessageTypeMWCBStatus             byte = 'W'
	MessageTypeIPOQuotingPeriodUpdate byte = 'K'
	MessageTypeOperationalHalt        byte = 'h'
	MessageTypeNextSharesQuotation    byte = 'A'
	MessageTypeQuotation              byte = 'Q'
	MessageTypeRPII                   byte = 'N'
)

const (
	SecurityClassNasdaq    byte = 'Q'
	SecurityClassNonNasdaq byte = 'N'
)

const (
	stockLen    = 8
	issueSubLen = 2
	reasonLen   = 4
	headerLen   = 8
)

// Message is one decoded QBBO 2.1 message.
type Message interface {
	Type() byte
	// Size is the encoded length excluding the type byte.
	Size() int
	decode(r *wire.Reader)
	encode(w *wire.Writer)
}

// Header is the QBBO prefix. Unlike ITCH 5.0 it carries no stock locate.
type Header struct {
	TrackingNumber uint16
	Timestamp      nasdaq.Timestamp
}

func (h *Header) decode(r *wire.Reader) {
	h.TrackingNumber = r.Uint16()
	h.Timestamp.High = r.Uint16()
	h.Timestamp.Low = r.Uint32()
}

func (h *Header) encode(w *wire.Writer) {
	w.PutUint16(h.TrackingNumber)
	w.PutUint16(h.Timestamp.High)
	w.PutUint32(h.Timestamp.Low)
}

func getPrice4(r *wire.Reader) nasdaq.Price4 { return nasdaq.Price4(r.Uint32()) }

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
	Stock         string
	SecurityClass byte
	TradingState  byte
	Reason        string
}

func (*StockTradingAction) Type() byte { return MessageTypeStockTradingAction }
func (*StockTradingAction) Size() int  { return headerLen + stockLen + 2 + reasonLen }

func (m *StockTradingAction) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.Stock = r.Text(stockLen)
	m.SecurityClass = r.Byte()
	m.TradingState = r.Byte()
	m.Reason = r.Text(reasonLen)
}

func (m *StockTradingAction) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutText(m.Stock, stockLen)
	w.PutByte(m.SecurityClass)
	w.PutByte(m.TradingState)
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
	m.Level1 = nasdaq.Price8(r.Uint64())
	m.Level2 = nasdaq.Price8(r.Uint64())
	m.Level3 = nasdaq.Price8(r.Uint64())
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

// NextSharesQuotation is the best bid and offer of a NextShares product,
// quoted as proxy prices and amounts.
type NextSharesQuotation struct {
	Header
	Stock               string
	SecurityClass       byte
	BestBidProxyPrice   nasdaq.Price4
	BestBidSize         uint32
	BestBidAmount       nasdaq.Price4
	BestOfferProxyPrice nasdaq.Price4
	BestOfferSize       uint32
	BestOfferAmount     nasdaq.Price4
}

func (*NextSharesQuotation) Type() byte { return MessageTypeNextSharesQuotation }
func (*NextSharesQuotation) Size() int  { return headerLen + stockLen + 1 + 6*4 }

func (m *NextSharesQuotation) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.Stock = r.Text(stockLen)
	m.SecurityClass = r.Byte()
	m.BestBidProxyPrice = getPrice4(r)
	m.BestBidSize = r.Uint32()
	m.BestBidAmount = getPrice4(r)
	m.BestOfferProxyPrice = getPrice4(r)
	m.BestOfferSize = r.Uint32()
	m.BestOfferAmount = getPrice4(r)
}

func (m *NextSharesQuotation) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutText(m.Stock, stockLen)
	w.PutByte(m.SecurityClass)
	w.PutUint32(uint32(m.BestBidProxyPrice))
	w.PutUint32(m.BestBidSize)
	w.PutUint32(uint32(m.BestBidAmount))
	w.PutUint32(uint32(m.BestOfferProxyPrice))
	w.PutUint32(m.BestOfferSize)
	w.PutUint32(uint32(m.BestOfferAmount))
}

type Quotation struct {
	Header
	Stock          string
	SecurityClass  byte
	BestBidPrice   nasdaq.Price4
	BestBidSize    uint32
	BestOfferPrice nasdaq.Price4
	BestOfferSize  uint32
}

func (*Quotation) Type() byte { return MessageTypeQuotation }
func (*Quotation) Size() int  { return headerLen + stockLen + 1 + 4*4 }

func (m *Quotation) decode(r *wire.Reader) {
	m.Header.decode(r)
	m.Stock = r.Text(stockLen)
	m.SecurityClass = r.Byte()
	m.BestBidPrice = getPrice4(r)
	m.BestBidSize = r.Uint32()
	m.BestOfferPrice = getPrice4(r)
	m.BestOfferSize = r.Uint32()
}

func (m *Quotation) encode(w *wire.Writer) {
	m.Header.encode(w)
	w.PutText(m.Stock, stockLen)
	w.PutByte(m.SecurityClass)
	w.PutUint32(uint32(m.BestBidPrice))
	w.PutUint32(m.BestBidSize)
	w.PutUint32(uint32(m.BestOfferPrice))
	w.PutUint32(m.BestOfferSize)
}

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
