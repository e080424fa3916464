// schoof counts rational points of elliptic curves y^2 = x^3 + Ax + B over
// prime fields.
//
// Batch mode (the default) reads one "p A B" triple per line from an input
// file or stdin, counts each curve and writes "p A B N" lines to stdout or
// an output file. Lines starting with '#' are comments. Numbers are decimal
// or 0x-prefixed hexadecimal.
//
// Server mode (-listen) exposes the HTTP API backed by a persistent queue
// and a background counting worker.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/vocdoni/schoof/api"
	"github.com/vocdoni/schoof/log"
	"github.com/vocdoni/schoof/schoof"
	"github.com/vocdoni/schoof/service"
	"github.com/vocdoni/schoof/storage"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
)

func main() {
	var (
		input    = flag.String("input", "", "file with one 'p A B' curve per line (empty or '-' for stdin)")
		output   = flag.String("output", "", "write results to this file instead of stdout")
		strategy = flag.String("strategy", string(schoof.StrategyNaive), "counting strategy: naive or reduced")
		timeout  = flag.Duration("timeout", 0, "wall-clock limit per curve (0 means none)")
		logLevel = flag.String("logLevel", "info", "log level (debug, info, warn, error, fatal)")
		listen   = flag.String("listen", "", "serve the HTTP API on host:port instead of batch counting")
		datadir  = flag.String("datadir", "", "data directory for server mode (defaults to ~/.schoof)")
	)
	flag.Parse()
	log.Init(*logLevel, "stderr", nil)

	switch schoof.Strategy(*strategy) {
	case schoof.StrategyNaive, schoof.StrategyReduced:
	default:
		log.Fatalf("unknown strategy %q", *strategy)
	}

	if *listen != "" {
		runServer(*listen, *datadir, *timeout, schoof.Strategy(*strategy))
		return
	}
	if err := runBatch(*input, *output, *timeout, schoof.Strategy(*strategy)); err != nil {
		log.Fatal(err)
	}
}

func runBatch(input, output string, timeout time.Duration, strategy schoof.Strategy) error {
	in := os.Stdin
	if input != "" && input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}
	var out io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	failed := 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			log.Warnw("skipping malformed line", "line", line)
			failed++
			continue
		}
		p, okP := math.ParseBig256(fields[0])
		a, okA := math.ParseBig256(fields[1])
		b, okB := math.ParseBig256(fields[2])
		if !okP || !okA || !okB {
			log.Warnw("skipping unparsable numbers", "line", line)
			failed++
			continue
		}

		ctx := context.Background()
		cancel := context.CancelFunc(func() {})
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, timeout)
		}
		start := time.Now()
		n, err := schoof.CountPoints(ctx, p, a, b, strategy)
		cancel()
		if err != nil {
			log.Warnw("count failed", "p", p.String(), "a", a.String(),
				"b", b.String(), "error", err.Error())
			failed++
			continue
		}
		log.Debugw("curve counted", "p", p.String(), "took", time.Since(start).String())
		if _, err := fmt.Fprintf(out, "%s %s %s %s\n", p, a, b, n); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d curve(s) failed", failed)
	}
	return nil
}

func runServer(listen, datadir string, timeout time.Duration, strategy schoof.Strategy) {
	host, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		log.Fatalf("invalid listen address %q: %v", listen, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("invalid listen port %q: %v", portStr, err)
	}
	if datadir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("cannot resolve home directory: %v", err)
		}
		datadir = filepath.Join(home, ".schoof")
	}
	database, err := metadb.New(db.TypePebble, datadir)
	if err != nil {
		log.Fatalf("cannot open database: %v", err)
	}
	stg := storage.New(database)
	defer stg.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := service.NewCountWorker(stg, time.Second, timeout, strategy)
	if err := worker.Start(ctx); err != nil {
		log.Fatalf("cannot start count worker: %v", err)
	}
	defer worker.Stop()

	if _, err := api.New(&api.APIConfig{Host: host, Port: port, Storage: stg}); err != nil {
		log.Fatalf("cannot start API: %v", err)
	}

	log.Infow("schoof service running", "listen", listen, "datadir", datadir,
		"strategy", string(strategy))
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
}