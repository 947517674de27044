package ordersend

import (
	"fmt"
	"strconv"

	"github.com/talostrading/ordersend/senderrors"
)

var (
	headerPrefix = []byte("8=" + BeginString + "\x01" + "9=")
	msgTypeField = []byte("35=" + MsgTypeNewOrderSingle + "\x01")
	ordTypeField = []byte("40=" + OrdTypeLimit + "\x01")
)

// BuildMessage encodes a New Order Single:
//
//	8=FIX.4.2|9=N|35=D|11=id|54=side|38=qty|44=price|40=2|10=ccc|
//
// where | is SOH, N is the byte length of the body (35= up to and including
// the SOH before 10=) and ccc is Checksum of everything before 10=.
func BuildMessage(id uint64, price, quantity int, side Side) ([]byte, error) {
	return AppendMessage(nil, Order{
		ID:       id,
		Side:     side,
		Price:    price,
		Quantity: quantity,
	})
}

// AppendMessage appends the encoding of o to dst. It does not allocate if dst
// has MaxMessageSize bytes of spare capacity.
func AppendMessage(dst []byte, o Order) ([]byte, error) {
	if err := validateOrder(o); err != nil {
		return dst, err
	}

	var scratch [MaxMessageSize]byte
	body := appendBody(scratch[:0], o)

	start := len(dst)
	dst = append(dst, headerPrefix...)
	dst = strconv.AppendInt(dst, int64(len(body)), 10)
	dst = append(dst, SOH)
	dst = append(dst, body...)

	cs := Checksum(dst[start:])
	dst = append(dst, '1', '0', '=',
		'0'+cs/100, '0'+cs/10%10, '0'+cs%10,
		SOH)
	return dst, nil
}

// Checksum is the FIX tag 10 value of b: the byte sum modulo 256.
func Checksum(b []byte) uint8 {
	var sum uint8
	for _, c := range b {
		sum += c
	}
	return sum
}

func appendBody(b []byte, o Order) []byte {
	b = append(b, msgTypeField...)

	b = append(b, '1', '1', '=')
	b = strconv.AppendUint(b, o.ID, 10)
	b = append(b, SOH)

	b = append(b, '5', '4', '=', o.Side.Code(), SOH)

	b = append(b, '3', '8', '=')
	b = strconv.AppendInt(b, int64(o.Quantity), 10)
	b = append(b, SOH)

	b = append(b, '4', '4', '=')
	b = strconv.AppendInt(b, int64(o.Price), 10)
	b = append(b, SOH)

	return append(b, ordTypeField...)
}

func validateOrder(o Order) error {
	if !o.Side.Valid() {
		return fmt.Errorf("%w: side=%s", senderrors.ErrInvalidOrder, o.Side)
	}
	if o.Price <= 0 {
		return fmt.Errorf("%w: price=%d", senderrors.ErrInvalidOrder, o.Price)
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("%w: quantity=%d", senderrors.ErrInvalidOrder, o.Quantity)
	}
	return nil
}
