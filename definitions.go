package ordersend

import "time"

// SOH delimits every tag=value pair on the wire.
const SOH byte = 0x01

const (
	BeginString = "FIX.4.2"

	MsgTypeNewOrderSingle = "D"
	OrdTypeLimit          = "2"
)

// FIX tags emitted by the encoder, in wire order.
const (
	TagBeginString = 8
	TagBodyLength  = 9
	TagMsgType     = 35
	TagClOrdID     = 11
	TagSide        = 54
	TagOrderQty    = 38
	TagPrice       = 44
	TagOrdType     = 40
	TagCheckSum    = 10
)

const (
	DefaultHost          = "127.0.0.1"
	DefaultPort          = 12345
	DefaultCount         = 10000
	DefaultProgressEvery = 1000
	DefaultDialTimeout   = 10 * time.Second

	DefaultPriceMin    = 90
	DefaultPriceMax    = 110
	DefaultQuantityMin = 1
	DefaultQuantityMax = 100
)

// MaxMessageSize bounds a single encoded order with 20-digit id, price and
// quantity. Buffers sized to it never grow while encoding.
const MaxMessageSize = 128
