//go:build unix

package internal

import (
	"fmt"
	"os"
	"syscall"

	"github.com/talostrading/ordersend/sendopts"
	"golang.org/x/sys/unix"
)

// ApplyOpts sets the given options on the raw socket fd. It is meant to be
// called from a net.Dialer Control hook, before connect().
func ApplyOpts(fd int, opts ...sendopts.Option) error {
	for _, opt := range opts {
		switch t := opt.Type(); t {
		case sendopts.TypeNoDelay:
			v := opt.Value().(bool)
			iv := 0
			if v {
				iv = 1
			}

			if err := unix.SetsockoptInt(
				fd,
				unix.IPPROTO_TCP,
				unix.TCP_NODELAY,
				iv,
			); err != nil {
				return os.NewSyscallError(fmt.Sprintf("tcp_no_delay(%v)", v), err)
			}
		case sendopts.TypeSendBuffer:
			v := opt.Value().(int)
			if v <= 0 {
				continue
			}

			if err := unix.SetsockoptInt(
				fd,
				unix.SOL_SOCKET,
				unix.SO_SNDBUF,
				v,
			); err != nil {
				return os.NewSyscallError(fmt.Sprintf("send_buffer(%d)", v), err)
			}
		default:
			return fmt.Errorf("unsupported socket option %s", t)
		}
	}

	return nil
}

// ControlFunc adapts ApplyOpts to the signature of net.Dialer.Control.
func ControlFunc(opts ...sendopts.Option) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var err error
		if cerr := c.Control(func(fd uintptr) {
			err = ApplyOpts(int(fd), opts...)
		}); cerr != nil {
			return cerr
		}
		return err
	}
}

func IsNoDelay(fd int) (bool, error) {
	v, err := unix.GetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY)
	if err != nil {
		return false, os.NewSyscallError("getsockopt", err)
	}
	return v != 0, nil
}

func SendBufferSize(fd int) (int, error) {
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF)
	if err != nil {
		return 0, os.NewSyscallError("getsockopt", err)
	}
	return v, nil
}
