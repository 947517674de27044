//go:build !unix

package internal

import (
	"syscall"

	"github.com/talostrading/ordersend/sendopts"
)

// ControlFunc returns nil: socket options are only applied on unix, elsewhere
// the connection keeps the OS defaults.
func ControlFunc(opts ...sendopts.Option) func(network, address string, c syscall.RawConn) error {
	return nil
}
