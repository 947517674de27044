//go:build unix

package internal

import (
	"net"
	"syscall"
	"testing"

	"github.com/talostrading/ordersend/sendopts"
)

func dialWith(t *testing.T, opts ...sendopts.Option) *net.TCPConn {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()
	t.Cleanup(func() {
		select {
		case conn := <-accepted:
			conn.Close()
		default:
		}
	})

	d := net.Dialer{Control: ControlFunc(opts...)}
	conn, err := d.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn.(*net.TCPConn)
}

func rawFd(t *testing.T, conn *net.TCPConn, fn func(fd int)) {
	rc, err := conn.SyscallConn()
	if err != nil {
		t.Fatal(err)
	}
	if err := rc.Control(func(fd uintptr) { fn(int(fd)) }); err != nil {
		t.Fatal(err)
	}
}

func TestApplyNoDelay(t *testing.T) {
	conn := dialWith(t, sendopts.NoDelay(true))
	rawFd(t, conn, func(fd int) {
		v, err := IsNoDelay(fd)
		if err != nil {
			t.Fatal(err)
		}
		if !v {
			t.Fatal("expected TCP_NODELAY to be set")
		}
	})
}

func TestApplySendBuffer(t *testing.T) {
	conn := dialWith(t, sendopts.SendBuffer(64*1024))
	rawFd(t, conn, func(fd int) {
		v, err := SendBufferSize(fd)
		if err != nil {
			t.Fatal(err)
		}
		if v < 64*1024 {
			t.Fatalf("send buffer too small got=%d want>=%d", v, 64*1024)
		}
	})
}

func TestApplyZeroSendBufferIsNoop(t *testing.T) {
	fd, err := syscall.Socket(syscall.AF_INET, syscall.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer syscall.Close(fd)

	if err := ApplyOpts(fd, sendopts.SendBuffer(0)); err != nil {
		t.Fatalf("zero send buffer should be ignored err=%v", err)
	}
}
