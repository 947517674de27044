package fixtest

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fix(s string) []byte {
	return []byte(strings.ReplaceAll(s, "|", "\x01"))
}

var literal = fix("8=FIX.4.2|9=33|35=D|11=0|54=1|38=50|44=100|40=2|10=167|")

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	m, err := Decode(literal)
	require.NoError(t, err)

	assert.Equal([]int{8, 9, 35, 11, 54, 38, 44, 40, 10}, m.Tags())

	v, ok := m.Get(44)
	assert.True(ok)
	assert.Equal("100", v)

	qty, err := m.Int(38)
	assert.NoError(err)
	assert.Equal(int64(50), qty)

	_, ok = m.Get(55)
	assert.False(ok)
}

func TestDecodeBadChecksum(t *testing.T) {
	_, err := Decode(fix("8=FIX.4.2|9=33|35=D|11=0|54=1|38=50|44=100|40=2|10=166|"))
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestDecodeBadBodyLength(t *testing.T) {
	_, err := Decode(fix("8=FIX.4.2|9=34|35=D|11=0|54=1|38=50|44=100|40=2|10=168|"))
	assert.ErrorIs(t, err, ErrBodyLength)
}

func TestDecodeMalformed(t *testing.T) {
	assert := assert.New(t)

	_, err := Decode(fix("8=FIX.4.2|9=33|35=D"))
	assert.ErrorIs(err, ErrIncomplete)

	_, err = Decode(fix("8=FIX.4.2||10=000|"))
	assert.ErrorIs(err, ErrMalformed)

	_, err = Decode(fix("8=FIX.4.2|35=D|10=000|"))
	assert.ErrorIs(err, ErrMalformed)
}

func TestSplit(t *testing.T) {
	assert := assert.New(t)

	stream := append(append([]byte{}, literal...), literal...)
	stream = append(stream, literal[:20]...)

	msgs, rest := Split(stream)
	assert.Len(msgs, 2)
	assert.Equal(literal, msgs[0])
	assert.Equal(literal, msgs[1])
	assert.Equal(literal[:20], rest)

	n, err := Next(literal[:len(literal)-1])
	assert.ErrorIs(err, ErrIncomplete)
	assert.Zero(n)
}

func TestSinkDecodesAcrossReads(t *testing.T) {
	sink, err := NewSink("127.0.0.1:0", SinkOpts{Keep: true, ReadBufferSize: 7})
	require.NoError(t, err)
	defer sink.Close()

	conn, err := net.Dial("tcp", sink.Addr().String())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := conn.Write(literal)
		require.NoError(t, err)
	}
	require.NoError(t, conn.Close())

	require.True(t, sink.WaitFor(10, 5*time.Second))
	assert.NoError(t, sink.Err())
	assert.Len(t, sink.Messages(), 10)
	assert.Equal(t, int64(10*len(literal)), sink.Bytes())
}
