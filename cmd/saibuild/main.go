// Command saibuild builds one or more on-disk secondary-index files from
// newline-delimited term/key/position fixtures.
package main

import (
	"bufio"
	"compress/gzip"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/klauspost/compress/zstd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/DTStax/sasi/pkg/sai"
)

type inputFlags []string

func (i *inputFlags) String() string { return strings.Join(*i, ",") }

func (i *inputFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func main() {
	var (
		inputs      inputFlags
		outputDir   string
		modeName    string
		maxTermSize int
		metricsPort int
	)

	flag.Var(&inputs, "input", "fixture file to build an index from (repeatable; builds run independently in parallel)")
	flag.StringVar(&outputDir, "output-dir", ".", "directory to write SI_<fixture>.db files into")
	flag.StringVar(&modeName, "mode", "ORIGINAL", "packing mode: ORIGINAL, SUFFIX, or SPARSE")
	flag.IntVar(&maxTermSize, "max-term-size", 0, "override the maximum accepted term size in bytes; 0 keeps the package default")
	flag.IntVar(&metricsPort, "metrics-port", 0, "port to expose Prometheus metrics on; 0 disables the server")
	flag.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	if len(inputs) == 0 {
		level.Error(logger).Log("msg", "at least one -input fixture is required")
		os.Exit(1)
	}

	cfg := sai.Config{Mode: strings.ToUpper(modeName), MaxTermSize: maxTermSize}
	mode, err := cfg.ResolvedMode()
	if err != nil {
		level.Error(logger).Log("msg", "invalid mode", "mode", modeName, "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	metrics := sai.NewMetrics(reg)

	if metricsPort != 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: fmt.Sprintf(":%d", metricsPort), Handler: mux}
		go func() {
			level.Info(logger).Log("msg", "starting metrics server", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				level.Error(logger).Log("msg", "metrics server failed", "err", err)
			}
		}()
	}

	var g errgroup.Group
	for _, input := range inputs {
		input := input
		g.Go(func() error {
			return buildOne(logger, metrics, mode, cfg.ResolvedMaxTermSize(), input, outputDir)
		})
	}

	if err := g.Wait(); err != nil {
		level.Error(logger).Log("msg", "build failed", "err", err)
		os.Exit(1)
	}
}

// buildOne drives one independent Builder over one fixture. Distinct
// builders may run in parallel without coordination.
func buildOne(logger log.Logger, metrics *sai.Metrics, mode sai.Mode, maxTermSize int, input, outputDir string) error {
	start := time.Now()
	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	defer f.Close()

	r, closeReader, err := decompress(input, f)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", input, err)
	}
	defer closeReader()

	builder := sai.NewBuilder(sai.UTF8Comparator{}, sai.UTF8Comparator{}, mode,
		sai.WithLogger(log.With(logger, "input", input)),
		sai.WithMetrics(metrics),
		sai.WithMaxTermSize(maxTermSize),
	)

	lines := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines++
		term, key, position, ok := parseFixtureLine(scanner.Text())
		if !ok {
			level.Warn(logger).Log("msg", "skipping malformed fixture line", "input", input, "line", lines)
			continue
		}
		builder.Add(term, key, position)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", input, err)
	}

	outPath := filepath.Join(outputDir, "SI_"+strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))+".db")
	wrote, err := builder.Finish(outPath)
	if err != nil {
		return fmt.Errorf("finish %s: %w", input, err)
	}

	level.Info(logger).Log(
		"msg", "build complete",
		"input", input,
		"output", outPath,
		"wrote_file", wrote,
		"lines", lines,
		"elapsed", time.Since(start),
	)
	return nil
}

// parseFixtureLine splits "term\tkey\tposition" into its fields.
func parseFixtureLine(line string) (term, key []byte, position int64, ok bool) {
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) != 3 {
		return nil, nil, 0, false
	}
	pos, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, nil, 0, false
	}
	return []byte(fields[0]), []byte(fields[1]), pos, true
}

// decompress wraps r with a decoder chosen by input's extension: .gz for
// gzip, .zst for zstd, otherwise passed through unchanged.
func decompress(input string, r io.Reader) (io.Reader, func(), error) {
	switch filepath.Ext(input) {
	case ".gz":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gz, func() { gz.Close() }, nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	default:
		return r, func() {}, nil
	}
}
