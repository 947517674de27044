package ordersend

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/talostrading/ordersend/senderrors"
	"github.com/talostrading/ordersend/sendopts"
	"github.com/talostrading/ordersend/util"
)

// Environment variables read by LoadFromEnv.
const (
	EnvHost          = "FIX_SENDER_HOST"
	EnvPort          = "FIX_SENDER_PORT"
	EnvCount         = "FIX_SENDER_COUNT"
	EnvProgressEvery = "FIX_SENDER_PROGRESS_EVERY"
	EnvSeed          = "FIX_SENDER_SEED"
	EnvPriceMin      = "FIX_SENDER_PRICE_MIN"
	EnvPriceMax      = "FIX_SENDER_PRICE_MAX"
	EnvQuantityMin   = "FIX_SENDER_QTY_MIN"
	EnvQuantityMax   = "FIX_SENDER_QTY_MAX"
	EnvDialTimeout   = "FIX_SENDER_DIAL_TIMEOUT"
	EnvNoDelay       = "FIX_SENDER_NODELAY"
	EnvSendBuffer    = "FIX_SENDER_SNDBUF"
	EnvPregenerate   = "FIX_SENDER_PREGENERATE"
	EnvLatency       = "FIX_SENDER_LATENCY"
	EnvCPUs          = "FIX_SENDER_CPUS"
)

type Config struct {
	Host  string
	Port  int
	Count int

	// ProgressEvery is the interval, in orders, between progress lines.
	// Index 0 always reports.
	ProgressEvery int

	// Seed for the order generator; 0 seeds from the clock.
	Seed int64

	Prices     Range
	Quantities Range

	DialTimeout time.Duration
	NoDelay     bool

	// SendBuffer is SO_SNDBUF in bytes; 0 keeps the OS default.
	SendBuffer int

	// Pregenerate encodes every order before the clock starts so only the
	// network writes are timed.
	Pregenerate bool

	// MeasureLatency records the duration of every write.
	MeasureLatency bool

	// CPUs pins the sending thread. Linux only.
	CPUs []int
}

func DefaultConfig() Config {
	return Config{
		Host:          DefaultHost,
		Port:          DefaultPort,
		Count:         DefaultCount,
		ProgressEvery: DefaultProgressEvery,
		Prices:        Range{Min: DefaultPriceMin, Max: DefaultPriceMax},
		Quantities:    Range{Min: DefaultQuantityMin, Max: DefaultQuantityMax},
		DialTimeout:   DefaultDialTimeout,
		NoDelay:       true,
	}
}

// LoadFromEnv returns DefaultConfig overridden by the process environment and
// then by the .env file at path, if any. An empty path tries ./.env. Variables
// already set in the environment win over the file.
func LoadFromEnv(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return cfg, fmt.Errorf("%w: %v", senderrors.ErrInvalidConfig, err)
		}
	} else {
		_ = godotenv.Load()
	}

	var err error
	setString(&cfg.Host, EnvHost)
	setInt(&cfg.Port, EnvPort, &err)
	setInt(&cfg.Count, EnvCount, &err)
	setInt(&cfg.ProgressEvery, EnvProgressEvery, &err)
	setInt(&cfg.Prices.Min, EnvPriceMin, &err)
	setInt(&cfg.Prices.Max, EnvPriceMax, &err)
	setInt(&cfg.Quantities.Min, EnvQuantityMin, &err)
	setInt(&cfg.Quantities.Max, EnvQuantityMax, &err)
	setInt(&cfg.SendBuffer, EnvSendBuffer, &err)
	setBool(&cfg.NoDelay, EnvNoDelay, &err)
	setBool(&cfg.Pregenerate, EnvPregenerate, &err)
	setBool(&cfg.MeasureLatency, EnvLatency, &err)

	if v := os.Getenv(EnvSeed); v != "" && err == nil {
		cfg.Seed, err = parseEnv(EnvSeed, v, func(s string) (int64, error) {
			return strconv.ParseInt(s, 10, 64)
		})
	}
	if v := os.Getenv(EnvDialTimeout); v != "" && err == nil {
		cfg.DialTimeout, err = parseEnv(EnvDialTimeout, v, time.ParseDuration)
	}
	if v := os.Getenv(EnvCPUs); v != "" && err == nil {
		cfg.CPUs, err = parseEnv(EnvCPUs, v, util.ParseCPUList)
	}

	return cfg, err
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string, err *error) {
	if v := os.Getenv(key); v != "" && *err == nil {
		*dst, *err = parseEnv(key, v, strconv.Atoi)
	}
}

func setBool(dst *bool, key string, err *error) {
	if v := os.Getenv(key); v != "" && *err == nil {
		*dst, *err = parseEnv(key, v, strconv.ParseBool)
	}
}

func parseEnv[T any](key, v string, parse func(string) (T, error)) (T, error) {
	x, err := parse(v)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s=%q: %v", senderrors.ErrInvalidConfig, key, v, err)
	}
	return x, nil
}

func (c Config) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("%w: empty host", senderrors.ErrInvalidConfig)
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", senderrors.ErrInvalidConfig, c.Port)
	case c.Count < 0:
		return fmt.Errorf("%w: negative count %d", senderrors.ErrInvalidConfig, c.Count)
	case c.ProgressEvery <= 0:
		return fmt.Errorf("%w: progress interval must be positive", senderrors.ErrInvalidConfig)
	case !c.Prices.Valid():
		return fmt.Errorf("%w: price range %s", senderrors.ErrInvalidConfig, c.Prices)
	case !c.Quantities.Valid():
		return fmt.Errorf("%w: quantity range %s", senderrors.ErrInvalidConfig, c.Quantities)
	case c.SendBuffer < 0:
		return fmt.Errorf("%w: negative send buffer", senderrors.ErrInvalidConfig)
	case c.DialTimeout < 0:
		return fmt.Errorf("%w: negative dial timeout", senderrors.ErrInvalidConfig)
	}
	return nil
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) socketOpts() []sendopts.Option {
	opts := []sendopts.Option{sendopts.NoDelay(c.NoDelay)}
	if c.SendBuffer > 0 {
		opts = append(opts, sendopts.SendBuffer(c.SendBuffer))
	}
	return opts
}
