package ordersend

import (
	"errors"
	"fmt"
	"time"

	"github.com/talostrading/ordersend/senderrors"
	"github.com/talostrading/ordersend/util"
)

// Report describes a finished or aborted run. On failure Sent counts the orders
// fully written before the error and Bytes everything the socket accepted.
type Report struct {
	Sent    int
	Bytes   int64
	Elapsed time.Duration

	// Latency is set only if the run measured write latency.
	Latency *util.LatencySummary
}

// Throughput is in orders per second.
func (r *Report) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Sent) / r.Elapsed.Seconds()
}

func (r *Report) String() string {
	return fmt.Sprintf("Sent %d orders in %.4fs (%.2f orders/s)",
		r.Sent, r.Elapsed.Seconds(), r.Throughput())
}

type Outcome uint8

const (
	OutcomeSuccess Outcome = iota
	OutcomeConnFailure
	OutcomeTransmitFailure
	OutcomeCancelled
	OutcomeInvalid
)

// OutcomeOf classifies an error returned by Sender.Run.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, senderrors.ErrCancelled):
		return OutcomeCancelled
	case errors.Is(err, senderrors.ErrConnRefused), errors.Is(err, senderrors.ErrDial):
		return OutcomeConnFailure
	case errors.Is(err, senderrors.ErrTransmit):
		return OutcomeTransmitFailure
	default:
		return OutcomeInvalid
	}
}

func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeSuccess:
		return 0
	case OutcomeConnFailure:
		return 2
	case OutcomeTransmitFailure:
		return 3
	case OutcomeCancelled:
		return 130
	default:
		return 1
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeConnFailure:
		return "connection_failure"
	case OutcomeTransmitFailure:
		return "transmission_failure"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "invalid"
	}
}
