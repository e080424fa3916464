package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/vocdoni/arbo/memdb"
	"github.com/vocdoni/schoof/curve"
	"github.com/vocdoni/schoof/log"
	"github.com/vocdoni/schoof/schoof"
	"github.com/vocdoni/schoof/storage"
	"github.com/vocdoni/schoof/types"
)

// CountWorker is a background service that pulls pending curves from the
// storage queue, counts their points and stores the results.
type CountWorker struct {
	storage      *storage.Storage
	interval     time.Duration
	curveTimeout time.Duration
	strategy     schoof.Strategy
	mu           sync.Mutex
	cancel       context.CancelFunc
}

// NewCountWorker creates a new CountWorker. If stg is nil it uses a memory
// storage. interval is how often the queue is polled when empty,
// curveTimeout bounds the wall-clock time spent on a single curve (zero
// means unbounded) and strategy is used for requests that do not name one.
func NewCountWorker(stg *storage.Storage, interval, curveTimeout time.Duration, strategy schoof.Strategy) *CountWorker {
	if stg == nil {
		stg = storage.New(memdb.New())
	}
	if strategy == "" {
		strategy = schoof.StrategyNaive
	}
	return &CountWorker{
		storage:      stg,
		interval:     interval,
		curveTimeout: curveTimeout,
		strategy:     strategy,
	}
}

// Storage returns the storage the worker operates on, so callers sharing it
// (the API shell) can enqueue curves and read results.
func (w *CountWorker) Storage() *storage.Storage { return w.storage }

// Start begins consuming the queue. It returns an error if the service is
// already running.
func (w *CountWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return fmt.Errorf("service already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	go w.consumeQueue(ctx)
	return nil
}

// Stop halts the worker. A curve being counted is abandoned mid-flight; its
// reservation expires and another run picks it up again.
func (w *CountWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *CountWorker) consumeQueue(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		req, key, err := w.storage.NextCurve()
		if err != nil {
			if !errors.Is(err, storage.ErrNoMoreElements) {
				log.Warnw("failed to pull next curve", "error", err.Error())
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.interval):
			}
			continue
		}
		w.countCurve(ctx, req, key)
	}
}

func (w *CountWorker) countCurve(ctx context.Context, req *types.CurveRequest, key []byte) {
	start := time.Now()
	cctx := ctx
	if w.curveTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, w.curveTimeout)
		defer cancel()
	}

	strategy := schoof.Strategy(req.Strategy)
	if strategy == "" {
		strategy = w.strategy
	}
	log.Infow("counting curve", "p", req.P.String(), "a", req.A.String(),
		"b", req.B.String(), "strategy", string(strategy))

	crv, err := curve.New(req.P.MathBigInt(), req.A.MathBigInt(), req.B.MathBigInt())
	if err != nil {
		w.failCurve(req, key, err)
		return
	}
	var residues []types.TraceCongruence
	order, err := schoof.Count(cctx, crv, schoof.Options{
		Strategy: strategy,
		OnResidue: func(r schoof.TraceResidue) {
			log.Debugw("trace residue", "p", req.P.String(),
				"l", r.L.String(), "t", r.T.String())
			residues = append(residues, types.TraceCongruence{
				L: (*types.BigInt)(new(big.Int).Set(r.L)),
				T: (*types.BigInt)(new(big.Int).Set(r.T)),
			})
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			// Service stopping: leave the reservation to expire.
			return
		}
		w.failCurve(req, key, err)
		return
	}

	trace := new(big.Int).Add(req.P.MathBigInt(), big.NewInt(1))
	trace.Sub(trace, order)
	res := &types.CountResult{
		Request:     *req,
		Order:       (*types.BigInt)(order),
		Trace:       (*types.BigInt)(trace),
		Duration:    time.Since(start),
		CompletedAt: time.Now(),
		Residues:    residues,
	}
	if err := w.storage.MarkCurveDone(key, res); err != nil {
		log.Warnw("failed to store count result", "p", req.P.String(), "error", err.Error())
		return
	}
	log.Infow("curve counted", "p", req.P.String(), "order", order.String(),
		"trace", trace.String(), "took", time.Since(start).String())
}

func (w *CountWorker) failCurve(req *types.CurveRequest, key []byte, cause error) {
	log.Warnw("curve count failed", "p", req.P.String(), "error", cause.Error())
	if err := w.storage.MarkCurveFailed(key, cause); err != nil {
		log.Warnw("failed to record count failure", "p", req.P.String(), "error", err.Error())
	}
}