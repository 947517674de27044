package sendopts

import "fmt"

type OptionType uint8

type Option interface {
	Type() OptionType
	Value() interface{}
}

const (
	TypeNoDelay OptionType = iota
	TypeSendBuffer
	MaxOption
)

func (t OptionType) String() string {
	switch t {
	case TypeNoDelay:
		return "no_delay"
	case TypeSendBuffer:
		return "send_buffer"
	default:
		return fmt.Sprintf("option_unknown(%d)", uint8(t))
	}
}

type optionNoDelay struct {
	v bool
}

// NoDelay toggles TCP_NODELAY. Orders are small and written back to back,
// so the sender disables Nagle by default.
func NoDelay(v bool) Option {
	return &optionNoDelay{
		v: v,
	}
}

func (o *optionNoDelay) Type() OptionType {
	return TypeNoDelay
}

func (o *optionNoDelay) Value() interface{} {
	return o.v
}

type optionSendBuffer struct {
	v int
}

// SendBuffer sets SO_SNDBUF to v bytes. The kernel may round or double it.
func SendBuffer(v int) Option {
	return &optionSendBuffer{
		v: v,
	}
}

func (o *optionSendBuffer) Type() OptionType {
	return TypeSendBuffer
}

func (o *optionSendBuffer) Value() interface{} {
	return o.v
}
