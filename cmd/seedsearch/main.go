//go:build !lambda

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"stardew-seedsearch/internal/cart"
	"stardew-seedsearch/internal/catalog"
	"stardew-seedsearch/internal/logger"
	"stardew-seedsearch/internal/search"
	"stardew-seedsearch/internal/sink"
)

const usage = `Usage: seedsearch -catalog Objects.json [flags]

Scans game ids for seeds whose traveling cart can supply every hard demand
in time, ranks them by bonus demands met and records hits to a file and/or
a Redis list. Ctrl-C once stops after the current chunk, twice aborts it.
With -stock it prints one seed's year-one cart stock instead.

Flags:
`

type options struct {
	catalog, furniture, demands string

	start, end uint64
	chunk      uint64
	seeds      string
	stock      string

	threads, partition, topK, minScore int

	out      string
	lz4      bool
	redis    string
	redisKey string

	logLevel string
	jsonLog  bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("seedsearch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&o.catalog, "catalog", "", "path to the object table (Objects.json)")
	fs.StringVar(&o.furniture, "furniture", "", "path to the furniture table (optional)")
	fs.StringVar(&o.demands, "demands", "", "JSON demand file overriding the built-in demands")
	fs.Uint64Var(&o.start, "start", 0, "first game id")
	fs.Uint64Var(&o.end, "end", 1_000_000, "game id to stop before")
	fs.Uint64Var(&o.chunk, "chunk", 50_000_000, "game ids per chunk")
	fs.StringVar(&o.seeds, "seeds", "", "comma-separated game ids to rescore instead of a range")
	fs.StringVar(&o.stock, "stock", "", "print the year-one cart stock of one game id and exit")
	fs.IntVar(&o.threads, "threads", runtime.GOMAXPROCS(0), "worker goroutines")
	fs.IntVar(&o.partition, "partition", 200_000, "game ids per worker partition")
	fs.IntVar(&o.topK, "topk", 200, "best seeds to keep")
	fs.IntVar(&o.minScore, "min-score", 1, "lowest score recorded to -out/-redis")
	fs.StringVar(&o.out, "out", "", "append hits to this file (.lz4 compresses)")
	fs.BoolVar(&o.lz4, "lz4", false, "lz4-compress -out regardless of its name")
	fs.StringVar(&o.redis, "redis", "", "RPUSH hits to the Redis server at host:port")
	fs.StringVar(&o.redisKey, "redis-key", "seedsearch:hits", "Redis list key for hits")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.BoolVar(&o.jsonLog, "json-log", false, "log JSON lines instead of console output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.catalog == "" {
		fs.Usage()
		return nil, errors.New("-catalog is required")
	}
	if o.chunk == 0 {
		return nil, errors.New("-chunk must be positive")
	}
	return o, nil
}

func parseSeeds(s string) ([]uint64, error) {
	var out []uint64
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad seed %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

func main() {
	err := realMain(os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func realMain(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.jsonLog {
		logger.SetJSONWriter()
	}
	if err := logger.SetLevel(o.logLevel); err != nil {
		return err
	}

	cat, err := catalog.Load(o.catalog, o.furniture)
	if err != nil {
		return err
	}
	logger.Info("objects", len(cat.Objects), "furniture", len(cat.Furniture), "catalog loaded")

	if o.stock != "" {
		id, err := strconv.ParseUint(strings.TrimSpace(o.stock), 10, 64)
		if err != nil {
			return fmt.Errorf("bad seed %q", o.stock)
		}
		printStock(stdout, cart.NewSimulator(cat), id)
		return nil
	}

	ds := defaultDemandSet()
	if o.demands != "" {
		if ds, err = loadDemandFile(o.demands, cat); err != nil {
			return err
		}
	}

	cfg := search.DefaultConfig()
	ds.apply(&cfg)
	cfg.Workers = o.threads
	cfg.PartitionSize = o.partition
	cfg.TopK = o.topK
	cfg.MinScoreToRecord = o.minScore
	cfg.Scanner = search.NoTrackedItems
	cfg.TownGate = search.TownAlways
	cfg.QiGate = search.QiAlways

	var q *sink.Queue
	if o.out != "" || o.redis != "" {
		q = sink.NewQueue()
		cfg.Sink = q
	}
	p, err := search.New(cat, cfg)
	if err != nil {
		return err
	}

	writers, err := openWriters(o)
	if err != nil {
		return err
	}
	format := sink.Formatter{AuxLabels: search.WeatherLabels, BonusLabels: cfg.BonusLabels()}
	pumpErr := make(chan error, 1)
	if q != nil {
		go func() { pumpErr <- sink.Pump(context.Background(), q, writers, format) }()
	}

	ctx, stopping, release := watchInterrupt(context.Background())
	defer release()

	var sum summary
	if o.seeds != "" {
		seeds, perr := parseSeeds(o.seeds)
		if perr != nil {
			err = perr
		} else {
			sum.Result, err = p.ScanList(ctx, seeds)
			sum.chunks = 1
		}
	} else {
		sum, err = scanChunks(ctx, p, o.start, o.end, o.chunk, func() bool {
			select {
			case perr := <-pumpErr:
				pumpErr <- perr
				return false
			default:
			}
			return !stopping.Load()
		})
	}

	if q != nil {
		q.Close()
		if perr := <-pumpErr; perr != nil && err == nil {
			err = fmt.Errorf("writing hits: %w", perr)
		}
	}
	if cerr := writers.Close(); cerr != nil && err == nil {
		err = cerr
	}
	printSummary(stdout, sum, format)
	return err
}

func openWriters(o *options) (sink.Multi, error) {
	var ws sink.Multi
	if o.out != "" {
		fw, err := sink.OpenFile(o.out, o.lz4)
		if err != nil {
			return nil, err
		}
		ws = append(ws, fw)
	}
	if o.redis != "" {
		rw := sink.NewRedisWriter(o.redis, os.Getenv("SEEDSEARCH_REDIS_AUTH"), o.redisKey)
		if err := rw.Ping(); err != nil {
			ws.Close()
			rw.Close()
			return nil, fmt.Errorf("redis %s: %w", o.redis, err)
		}
		ws = append(ws, rw)
	}
	return ws, nil
}

// watchInterrupt sets stopping on the first interrupt and cancels ctx on the
// second.
func watchInterrupt(parent context.Context) (context.Context, *atomic.Bool, func()) {
	ctx, cancel := context.WithCancel(parent)
	stopping := new(atomic.Bool)
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		for {
			select {
			case <-sig:
				if stopping.Swap(true) {
					logger.Warn("aborting current chunk")
					cancel()
					return
				}
				logger.Warn("stopping after current chunk; interrupt again to abort")
			case <-ctx.Done():
				return
			}
		}
	}()
	return ctx, stopping, func() {
		signal.Stop(sig)
		cancel()
	}
}

// summary accumulates results over chunks.
type summary struct {
	search.Result
	chunks int
	end    uint64 // first game id not scanned
}

// scanChunks scans [start, end) chunk by chunk, merging counters and top-K.
// more is asked before each chunk after the first; returning false stops.
func scanChunks(ctx context.Context, p *search.Pipeline, start, end, chunk uint64, more func() bool) (summary, error) {
	sum := summary{end: start}
	top := search.NewTopK(p.Config().TopK)
	printer := message.NewPrinter(language.English)
	for lo := start; lo < end; {
		if sum.chunks > 0 && !more() {
			break
		}
		hi := end
		if end-lo > chunk {
			hi = lo + chunk
		}
		res, err := p.ScanRange(ctx, lo, hi)
		sum.chunks++
		sum.Elapsed += res.Elapsed
		sum.Scanned += res.Scanned
		sum.Disqualified += res.Disqualified
		sum.GateFailed += res.GateFailed
		sum.CartFailed += res.CartFailed
		sum.HardPassed += res.HardPassed
		top.Merge(res.Top)
		sum.Top = top.Sorted()
		if err != nil {
			return sum, err
		}
		if res.Cancelled {
			sum.Cancelled = true
			break
		}
		sum.end = hi
		logger.Info(printer.Sprintf("chunk %d done: [%d, %d) %d hard passed, %.0f seeds/s",
			sum.chunks, lo, hi, res.HardPassed, res.SeedsPerSecond()))
		lo = hi
	}
	return sum, nil
}

func printSummary(w io.Writer, sum summary, f sink.Formatter) {
	printer := message.NewPrinter(language.English)
	head := color.New(color.Bold)
	good := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	head.Fprintln(w, "Summary")
	row := func(label string, v int64) {
		fmt.Fprintf(w, "  %-14s %s\n", label, printer.Sprintf("%15d", v))
	}
	row("Scanned", sum.Scanned)
	row("Disqualified", sum.Disqualified)
	row("Gate failed", sum.GateFailed)
	row("Cart failed", sum.CartFailed)
	good.Fprintf(w, "  %-14s %s\n", "Hard passed", printer.Sprintf("%15d", sum.HardPassed))
	fmt.Fprintf(w, "  %-14s %s\n", "Rate", printer.Sprintf("%15.0f seeds/s", sum.SeedsPerSecond()))
	if sum.chunks > 1 || sum.Cancelled {
		fmt.Fprintf(w, "  %-14s %s\n", "Resume at", printer.Sprintf("%15d", sum.end))
	}
	if sum.Cancelled {
		warn.Fprintln(w, "  (interrupted)")
	}

	if len(sum.Top) == 0 {
		return
	}
	head.Fprintf(w, "Top %d\n", len(sum.Top))
	for _, c := range sum.Top {
		fmt.Fprintln(w, "  "+f.Line(c))
	}
}
