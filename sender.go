package ordersend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/talostrading/ordersend/senderrors"
	"github.com/talostrading/ordersend/util"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
)

type Option func(*Sender)

func WithLogger(log *zap.Logger) Option {
	return func(s *Sender) {
		if log != nil {
			s.log = log
		}
	}
}

// WithOutput sets where the console lines go. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Sender) {
		if w != nil {
			s.out = w
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Sender) {
		s.metrics = m
	}
}

// WithProgress registers fn to be called with the order id every
// ProgressEvery orders, starting with id 0. It runs on the sending goroutine.
func WithProgress(fn func(id int)) Option {
	return func(s *Sender) {
		s.progress = fn
	}
}

// Sender writes Count randomly generated orders over one TCP connection.
type Sender struct {
	cfg      Config
	log      *zap.Logger
	out      io.Writer
	metrics  *Metrics
	progress func(int)
	gen      *Generator
}

func NewSender(cfg Config, opts ...Option) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Sender{
		cfg: cfg,
		log: zap.NewNop(),
		out: os.Stdout,
		gen: NewGenerator(cfg.Seed, cfg.Prices, cfg.Quantities),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("addr", cfg.Addr()))

	return s, nil
}

// encoder yields the wire bytes of order id. The returned slice is only valid
// until the next call.
type encoder func(id uint64) ([]byte, error)

// Run connects, sends every order and prints the summary. The returned report
// is never nil; on error it holds what was sent before the failure. Errors wrap
// one of senderrors.ErrConnRefused, ErrDial, ErrTransmit or ErrCancelled.
func (s *Sender) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	if len(s.cfg.CPUs) > 0 {
		unpin, err := util.PinTo(s.cfg.CPUs...)
		if err != nil {
			return report, fmt.Errorf("%w: cpus %v: %w", senderrors.ErrInvalidConfig, s.cfg.CPUs, err)
		}
		defer unpin()
		s.log.Debug("pinned sending thread", zap.Ints("cpus", s.cfg.CPUs))
	}

	s.printf("Connecting to %s...\n", s.cfg.Addr())

	conn, err := dial(ctx, s.cfg)
	if err != nil {
		s.metrics.onConnectFailure()
		if errors.Is(err, senderrors.ErrConnRefused) {
			s.printf("Connection refused. Is the server running?\n")
		} else {
			s.printf("Could not connect: %v\n", err)
		}
		s.log.Error("connect failed", zap.Error(err))
		return report, err
	}
	defer conn.Close()

	// Unblocks a write stuck on a full socket buffer once ctx is done.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetWriteDeadline(time.Now())
	})
	defer stop()

	s.printf("Connected. Sending orders...\n")
	s.log.Info("connected",
		zap.Stringer("local_addr", conn.LocalAddr()),
		zap.Bool("no_delay", s.cfg.NoDelay),
		zap.Int("send_buffer", s.cfg.SendBuffer),
	)

	var encode encoder
	if s.cfg.Pregenerate {
		encode, err = s.pregenerate()
		if err != nil {
			return report, err
		}
	} else {
		bb := bytebufferpool.Get()
		defer bytebufferpool.Put(bb)
		encode = s.streaming(bb)
	}

	hist, err := s.send(ctx, conn, encode, report)
	if err != nil {
		s.log.Error("run aborted",
			zap.Int("sent", report.Sent),
			zap.Int64("bytes", report.Bytes),
			zap.Error(err),
		)
		return report, err
	}

	s.printf("%s\n", report)
	if hist != nil {
		report.Latency = hist.Summary()
		hist.Report(s.out)
	}
	s.log.Info("run finished",
		zap.Int("sent", report.Sent),
		zap.Int64("bytes", report.Bytes),
		zap.Duration("elapsed", report.Elapsed),
		zap.Float64("orders_per_sec", report.Throughput()),
	)

	return report, nil
}

func (s *Sender) send(
	ctx context.Context,
	conn net.Conn,
	encode encoder,
	report *Report,
) (*util.LatencyHist, error) {
	var hist *util.LatencyHist
	if s.cfg.MeasureLatency {
		hist = util.NewLatencyHist(util.DefaultLatencyHistOpts("write"))
	}

	done := ctx.Done()
	start := time.Now()
	defer func() {
		report.Elapsed = time.Since(start)
	}()

	for id := 0; id < s.cfg.Count; id++ {
		select {
		case <-done:
			return nil, fmt.Errorf("%w: after %d orders", senderrors.ErrCancelled, report.Sent)
		default:
		}

		b, err := encode(uint64(id))
		if err != nil {
			return nil, err
		}

		var t0 time.Time
		if hist != nil {
			t0 = time.Now()
		}

		n, err := conn.Write(b)
		report.Bytes += int64(n)
		if err == nil && n < len(b) {
			err = io.ErrShortWrite
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: after %d orders: %w", senderrors.ErrCancelled, report.Sent, err)
			}
			return nil, fmt.Errorf("%w: order %d: %w", senderrors.ErrTransmit, id, err)
		}

		if hist != nil {
			d := time.Since(t0)
			hist.Record(d)
			s.metrics.onWriteLatency(d)
		}
		report.Sent++
		s.metrics.onWrite(n)

		if id%s.cfg.ProgressEvery == 0 {
			s.printf("Sent %d orders\n", id)
			if s.progress != nil {
				s.progress(id)
			}
		}
	}

	return hist, nil
}

func (s *Sender) streaming(bb *bytebufferpool.ByteBuffer) encoder {
	return func(id uint64) ([]byte, error) {
		var err error
		bb.B, err = AppendMessage(bb.B[:0], s.gen.Next(id))
		return bb.B, err
	}
}

// pregenerate encodes all orders into one contiguous buffer.
func (s *Sender) pregenerate() (encoder, error) {
	s.printf("Preparing %d orders in memory...\n", s.cfg.Count)

	var (
		buf  = make([]byte, 0, s.cfg.Count*(MaxMessageSize/2))
		ends = make([]int, s.cfg.Count)
		err  error
	)
	for id := 0; id < s.cfg.Count; id++ {
		buf, err = AppendMessage(buf, s.gen.Next(uint64(id)))
		if err != nil {
			return nil, err
		}
		ends[id] = len(buf)
	}

	s.printf("Prepared %d orders (%s)\n", s.cfg.Count, util.ByteCountSI(int64(len(buf))))
	s.log.Debug("pregenerated orders",
		zap.Int("count", s.cfg.Count),
		zap.Int("bytes", len(buf)),
	)

	return func(id uint64) ([]byte, error) {
		from := 0
		if id > 0 {
			from = ends[id-1]
		}
		return buf[from:ends[id]], nil
	}, nil
}

func (s *Sender) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
