package ordersend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/talostrading/ordersend/internal"
	"github.com/talostrading/ordersend/senderrors"
)

// dial opens the single connection of a run. There is no retry.
func dial(ctx context.Context, cfg Config) (net.Conn, error) {
	d := net.Dialer{
		Timeout: cfg.DialTimeout,
		Control: internal.ControlFunc(cfg.socketOpts()...),
	}

	conn, err := d.DialContext(ctx, "tcp", cfg.Addr())
	if err != nil {
		return nil, classifyDialErr(ctx, err)
	}
	return conn, nil
}

func classifyDialErr(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", senderrors.ErrCancelled, err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: %w", senderrors.ErrConnRefused, err)
	default:
		return fmt.Errorf("%w: %w", senderrors.ErrDial, err)
	}
}
