package util

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

type LatencyHistOpts struct {
	Name string

	// Min and Max bound the trackable latencies, in nanoseconds.
	Min int64
	Max int64

	Precision int

	// Bins whose share of samples is below MinPct are not printed.
	MinPct float64
}

func DefaultLatencyHistOpts(name string) LatencyHistOpts {
	return LatencyHistOpts{
		Name:      name,
		Min:       1,
		Max:       int64(10 * time.Second),
		Precision: 2,
		MinPct:    0.1,
	}
}

// LatencySummary is a snapshot of a LatencyHist.
type LatencySummary struct {
	Count  int64
	Min    time.Duration
	Mean   time.Duration
	Max    time.Duration
	StdDev time.Duration
	P50    time.Duration
	P90    time.Duration
	P99    time.Duration
	P999   time.Duration
}

func (s *LatencySummary) String() string {
	return fmt.Sprintf(
		"samples=%d min/avg/max/stddev = %s/%s/%s/%s p50=%s p90=%s p99=%s p99.9=%s",
		s.Count, s.Min, s.Mean, s.Max, s.StdDev, s.P50, s.P90, s.P99, s.P999)
}

// LatencyHist records durations in an HDR histogram and renders them as a
// terminal bar chart.
type LatencyHist struct {
	opts LatencyHistOpts
	hdr  *hdrhistogram.Histogram
}

func NewLatencyHist(opts LatencyHistOpts) *LatencyHist {
	return &LatencyHist{
		opts: opts,
		hdr:  hdrhistogram.New(opts.Min, opts.Max, opts.Precision),
	}
}

// Record adds d to the histogram. Values outside [Min, Max] are clamped.
func (h *LatencyHist) Record(d time.Duration) {
	v := d.Nanoseconds()
	if v < h.opts.Min {
		v = h.opts.Min
	} else if v > h.opts.Max {
		v = h.opts.Max
	}
	_ = h.hdr.RecordValue(v)
}

func (h *LatencyHist) Count() int64 {
	return h.hdr.TotalCount()
}

func (h *LatencyHist) Reset() {
	h.hdr.Reset()
}

func (h *LatencyHist) Summary() *LatencySummary {
	return &LatencySummary{
		Count:  h.hdr.TotalCount(),
		Min:    time.Duration(h.hdr.Min()),
		Mean:   time.Duration(h.hdr.Mean()),
		Max:    time.Duration(h.hdr.Max()),
		StdDev: time.Duration(h.hdr.StdDev()),
		P50:    time.Duration(h.hdr.ValueAtPercentile(50.0)),
		P90:    time.Duration(h.hdr.ValueAtPercentile(90.0)),
		P99:    time.Duration(h.hdr.ValueAtPercentile(99.0)),
		P999:   time.Duration(h.hdr.ValueAtPercentile(99.9)),
	}
}

// Report writes the summary followed by one bar per histogram bin.
func (h *LatencyHist) Report(w io.Writer) {
	if w == nil || h.hdr.TotalCount() == 0 {
		return
	}

	fmt.Fprintf(w, "%s latency %s\n", h.opts.Name, h.Summary())

	var minBinCount, maxBinCount int64 = math.MaxInt64, math.MinInt64
	for _, bin := range h.hdr.Distribution() {
		if h.pct(bin.Count) < h.opts.MinPct {
			continue
		}
		if bin.Count < minBinCount {
			minBinCount = bin.Count
		}
		if bin.Count > maxBinCount {
			maxBinCount = bin.Count
		}
	}

	tabw := tabwriter.NewWriter(w, 2, 2, 2, byte(' '), 0)
	for _, bin := range h.hdr.Distribution() {
		pct := h.pct(bin.Count)
		if pct < h.opts.MinPct {
			continue
		}

		barSize := 1
		if maxBinCount > minBinCount {
			fraction := float64(bin.Count-minBinCount) /
				float64(maxBinCount-minBinCount)
			barSize = max(1, int(math.Ceil(fraction*10)))
		}

		to := bin.To
		if bin.From == to {
			to++
		}

		fmt.Fprintf(tabw,
			"%s-%s\t%.3g%%\t%s\t%s\n",
			time.Duration(bin.From), time.Duration(to),
			pct,
			strings.Repeat("|", barSize),
			strconv.FormatInt(bin.Count, 10),
		)
	}
	_ = tabw.Flush()
}

func (h *LatencyHist) pct(count int64) float64 {
	return float64(count) * 100.0 / float64(h.hdr.TotalCount())
}
