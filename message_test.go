package ordersend

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talostrading/ordersend/internal/fixtest"
	"github.com/talostrading/ordersend/senderrors"
)

func fix(s string) []byte {
	return []byte(strings.ReplaceAll(s, "|", "\x01"))
}

// reference builds the message the naive way: format body, format header,
// sum the characters of the concatenation.
func reference(id uint64, price, quantity int, side Side) []byte {
	body := fmt.Sprintf("35=D\x0111=%d\x0154=%d\x0138=%d\x0144=%d\x0140=2\x01",
		id, side, quantity, price)
	msg := fmt.Sprintf("8=FIX.4.2\x019=%d\x01", len(body)) + body

	sum := 0
	for _, c := range msg {
		sum += int(c)
	}
	return []byte(msg + fmt.Sprintf("10=%03d\x01", sum%256))
}

func TestBuildMessageLiteral(t *testing.T) {
	b, err := BuildMessage(0, 100, 50, SideBuy)
	require.NoError(t, err)

	want := fix("8=FIX.4.2|9=33|35=D|11=0|54=1|38=50|44=100|40=2|10=167|")
	assert.Equal(t, string(want), string(b))

	body := fix("35=D|11=0|54=1|38=50|44=100|40=2|")
	assert.True(t, bytes.Contains(b, body))
	assert.Equal(t, reference(0, 100, 50, SideBuy), b)
}

func TestBuildMessageSell(t *testing.T) {
	b, err := BuildMessage(42, 90, 1, SideSell)
	require.NoError(t, err)

	want := fix("8=FIX.4.2|9=32|35=D|11=42|54=2|38=1|44=90|40=2|10=129|")
	assert.Equal(t, string(want), string(b))
}

func TestBuildMessageMatchesReference(t *testing.T) {
	assert := assert.New(t)

	gen := NewGenerator(7, Range{Min: 90, Max: 110}, Range{Min: 1, Max: 100})
	for id := uint64(0); id < 5000; id++ {
		o := gen.Next(id * 7919)
		b, err := BuildMessage(o.ID, o.Price, o.Quantity, o.Side)
		require.NoError(t, err)
		assert.Equal(reference(o.ID, o.Price, o.Quantity, o.Side), b)
	}

	b, err := BuildMessage(^uint64(0), 1<<62, 1<<62, SideSell)
	require.NoError(t, err)
	assert.Equal(reference(^uint64(0), 1<<62, 1<<62, SideSell), b)
	assert.LessOrEqual(len(b), MaxMessageSize)
}

func TestBuildMessageRoundTrip(t *testing.T) {
	assert := assert.New(t)

	gen := NewGenerator(1, Range{Min: 90, Max: 110}, Range{Min: 1, Max: 100})
	for id := uint64(0); id < 1000; id++ {
		o := gen.Next(id)
		b, err := BuildMessage(o.ID, o.Price, o.Quantity, o.Side)
		require.NoError(t, err)

		// 9 tokens plus the empty one after the final SOH
		tokens := bytes.Split(b, []byte{SOH})
		assert.Len(tokens, 10)
		assert.Empty(tokens[9])

		m, err := fixtest.Decode(b)
		require.NoError(t, err)
		assert.Equal([]int{
			TagBeginString,
			TagBodyLength,
			TagMsgType,
			TagClOrdID,
			TagSide,
			TagOrderQty,
			TagPrice,
			TagOrdType,
			TagCheckSum,
		}, m.Tags())

		gotID, _ := m.Int(TagClOrdID)
		assert.Equal(int64(id), gotID)
		gotPrice, _ := m.Int(TagPrice)
		assert.Equal(int64(o.Price), gotPrice)
		gotQty, _ := m.Int(TagOrderQty)
		assert.Equal(int64(o.Quantity), gotQty)
		gotSide, _ := m.Get(TagSide)
		assert.Equal(string(o.Side.Code()), gotSide)
	}
}

func TestAppendMessageAppends(t *testing.T) {
	prefix := []byte("prefix")
	b, err := AppendMessage(prefix, Order{ID: 0, Side: SideBuy, Price: 100, Quantity: 50})
	require.NoError(t, err)

	assert.Equal(t, "prefix", string(b[:6]))
	assert.Equal(t, reference(0, 100, 50, SideBuy), b[6:])
}

func TestBuildMessageInvalid(t *testing.T) {
	assert := assert.New(t)

	_, err := BuildMessage(0, 100, 50, Side(0))
	assert.ErrorIs(err, senderrors.ErrInvalidOrder)

	_, err = BuildMessage(0, 100, 50, Side(3))
	assert.ErrorIs(err, senderrors.ErrInvalidOrder)

	_, err = BuildMessage(0, 0, 50, SideBuy)
	assert.ErrorIs(err, senderrors.ErrInvalidOrder)

	_, err = BuildMessage(0, 100, -1, SideSell)
	assert.ErrorIs(err, senderrors.ErrInvalidOrder)

	dst := []byte("keep")
	dst, err = AppendMessage(dst, Order{Side: SideBuy, Price: 1})
	assert.ErrorIs(err, senderrors.ErrInvalidOrder)
	assert.Equal("keep", string(dst))
}

func TestChecksum(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint8(0), Checksum(nil))
	assert.Equal(uint8('A'), Checksum([]byte("A")))
	assert.Equal(uint8(0), Checksum(bytes.Repeat([]byte{1}, 256)))
	assert.Equal(uint8(44), Checksum(bytes.Repeat([]byte{0xff}, 212)))
}

func BenchmarkAppendMessage(b *testing.B) {
	dst := make([]byte, 0, MaxMessageSize)
	o := Order{ID: 123456, Side: SideBuy, Price: 100, Quantity: 50}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.ID = uint64(i)
		dst, _ = AppendMessage(dst[:0], o)
	}
}
