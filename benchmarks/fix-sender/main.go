package main

/*
Writes randomly generated FIX 4.2 New Order Single messages over one TCP
connection and reports the throughput.

$ go run ./benchmarks/fix-sender -n 1000000 -pregenerate -latency

Point it at anything that accepts TCP, for example ./examples/fix-sink.
Settings come from flags, then FIX_SENDER_* environment variables, then an
optional .env file. A single positional argument is taken as the order count.

Exit status: 0 on success, 2 if the connection could not be established, 3 if
a write failed, 130 if interrupted, 1 for invalid settings.
*/

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/felixge/fgprof"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/talostrading/ordersend"
	"github.com/talostrading/ordersend/util"
	"go.uber.org/zap"
)

type options struct {
	cfg         ordersend.Config
	logLevel    string
	pprofAddr   string
	metricsAddr string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ordersend.OutcomeInvalid.ExitCode()
	}

	log, err := util.NewLogger(opts.logLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ordersend.OutcomeInvalid.ExitCode()
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	metrics, err := ordersend.NewMetrics("fix_sender", reg)
	if err != nil {
		log.Error("could not register metrics", zap.Error(err))
		return ordersend.OutcomeInvalid.ExitCode()
	}

	if opts.pprofAddr != "" {
		http.DefaultServeMux.Handle("/debug/fgprof", fgprof.Handler())
		serve(log, "pprof", opts.pprofAddr, http.DefaultServeMux)
	}
	if opts.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		serve(log, "metrics", opts.metricsAddr, mux)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender, err := ordersend.NewSender(
		opts.cfg,
		ordersend.WithLogger(log),
		ordersend.WithOutput(stdout),
		ordersend.WithMetrics(metrics),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ordersend.OutcomeInvalid.ExitCode()
	}

	_, err = sender.Run(ctx)
	outcome := ordersend.OutcomeOf(err)
	switch outcome {
	case ordersend.OutcomeSuccess, ordersend.OutcomeConnFailure:
		// already reported on stdout
	default:
		fmt.Fprintf(stderr, "%s: %v\n", outcome, err)
	}
	return outcome.ExitCode()
}

func serve(log *zap.Logger, name, addr string, h http.Handler) {
	go func() {
		log.Info("serving", zap.String("name", name), zap.String("addr", addr))
		if err := http.ListenAndServe(addr, h); err != nil {
			log.Error("server stopped", zap.String("name", name), zap.Error(err))
		}
	}()
}

// parseArgs layers flags that were explicitly set over the environment.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("fix-sender", flag.ContinueOnError)
	fs.SetOutput(stderr)

	d := ordersend.DefaultConfig()
	var (
		envFile     = fs.String("env", "", ".env file to load; if empty, ./.env is tried")
		host        = fs.String("host", d.Host, "target host")
		port        = fs.Int("port", d.Port, "target port")
		count       = fs.Int("n", d.Count, "number of orders to send")
		progress    = fs.Int("progress", d.ProgressEvery, "print progress every this many orders")
		seed        = fs.Int64("seed", d.Seed, "generator seed; 0 seeds from the clock")
		priceMin    = fs.Int("price-min", d.Prices.Min, "lowest price")
		priceMax    = fs.Int("price-max", d.Prices.Max, "highest price")
		qtyMin      = fs.Int("qty-min", d.Quantities.Min, "lowest quantity")
		qtyMax      = fs.Int("qty-max", d.Quantities.Max, "highest quantity")
		dialTimeout = fs.Duration("dial-timeout", d.DialTimeout, "connect timeout")
		noDelay     = fs.Bool("nodelay", d.NoDelay, "set TCP_NODELAY")
		sndbuf      = fs.Int("sndbuf", d.SendBuffer, "SO_SNDBUF in bytes; 0 keeps the OS default")
		pregenerate = fs.Bool("pregenerate", d.Pregenerate, "encode every order before timing the writes")
		latency     = fs.Bool("latency", d.MeasureLatency, "measure and print per write latency")
		cpus        = fs.String("cpus", "", "pin the sending thread to these CPUs, e.g. 2,4-5")

		opts options
	)
	fs.StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error; logs go to stderr")
	fs.StringVar(&opts.pprofAddr, "pprof", "", "address for pprof and fgprof; if empty, no pprof")
	fs.StringVar(&opts.metricsAddr, "metrics", "", "address for prometheus metrics; if empty, none. The write latency histogram needs -latency")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := ordersend.LoadFromEnv(*envFile)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = *host
		case "port":
			cfg.Port = *port
		case "n":
			cfg.Count = *count
		case "progress":
			cfg.ProgressEvery = *progress
		case "seed":
			cfg.Seed = *seed
		case "price-min":
			cfg.Prices.Min = *priceMin
		case "price-max":
			cfg.Prices.Max = *priceMax
		case "qty-min":
			cfg.Quantities.Min = *qtyMin
		case "qty-max":
			cfg.Quantities.Max = *qtyMax
		case "dial-timeout":
			cfg.DialTimeout = *dialTimeout
		case "nodelay":
			cfg.NoDelay = *noDelay
		case "sndbuf":
			cfg.SendBuffer = *sndbuf
		case "pregenerate":
			cfg.Pregenerate = *pregenerate
		case "latency":
			cfg.MeasureLatency = *latency
		case "cpus":
			cfg.CPUs, err = util.ParseCPUList(*cpus)
		}
	})
	if err != nil {
		return nil, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		n, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return nil, fmt.Errorf("invalid order count %q", fs.Arg(0))
		}
		cfg.Count = n
	default:
		return nil, fmt.Errorf("unexpected arguments %v", fs.Args())
	}

	opts.cfg = cfg
	return &opts, cfg.Validate()
}
