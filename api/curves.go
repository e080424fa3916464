package api

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/schoof/curve"
	"github.com/vocdoni/schoof/schoof"
	"github.com/vocdoni/schoof/storage"
	"github.com/vocdoni/schoof/types"
	"github.com/vocdoni/schoof/util"
)

// CurveAccepted is the response to an asynchronous curve submission.
type CurveAccepted struct {
	CurveID types.HexBytes `json:"curveId"`
}

// newCurve submits a curve for counting.
// POST /curves        enqueues and returns the curve id
// POST /curves?wait=1 counts synchronously and returns the result
func (a *API) newCurve(w http.ResponseWriter, r *http.Request) {
	req := &types.CurveRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.P == nil || req.A == nil || req.B == nil {
		ErrInvalidCurve.With("p, a and b are required").Write(w)
		return
	}
	switch schoof.Strategy(req.Strategy) {
	case "", schoof.StrategyNaive, schoof.StrategyReduced:
	default:
		ErrInvalidStrategy.Withf("%q", req.Strategy).Write(w)
		return
	}
	// Reject malformed curves up front, wait or not.
	crv, err := curve.New(req.P.MathBigInt(), req.A.MathBigInt(), req.B.MathBigInt())
	if err != nil {
		ErrInvalidCurve.WithErr(err).Write(w)
		return
	}

	if wait := r.URL.Query().Get(WaitQueryParam); wait == "" || wait == "false" || wait == "0" {
		if err := a.storage.PushCurve(req); err != nil {
			ErrGenericInternalServerError.WithErr(err).Write(w)
			return
		}
		httpWriteJSON(w, CurveAccepted{CurveID: storage.CurveKey(req)})
		return
	}

	// Synchronous count, bounded by the request context (and the router's
	// timeout middleware).
	start := time.Now()
	var residues []types.TraceCongruence
	order, err := schoof.Count(r.Context(), crv, schoof.Options{
		Strategy: schoof.Strategy(req.Strategy),
		OnResidue: func(tr schoof.TraceResidue) {
			residues = append(residues, types.TraceCongruence{
				L: (*types.BigInt)(new(big.Int).Set(tr.L)),
				T: (*types.BigInt)(new(big.Int).Set(tr.T)),
			})
		},
	})
	if err != nil {
		if errors.Is(err, r.Context().Err()) {
			ErrCountInterrupted.WithErr(err).Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
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
	if _, err := a.storage.SetResult(res); err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, res)
}

// curveResult returns the stored result of a counted curve.
// GET /curves/{curveId}
func (a *API) curveResult(w http.ResponseWriter, r *http.Request) {
	var key types.HexBytes
	if err := key.FromString(util.TrimHex(chi.URLParam(r, CurveURLParam))); err != nil {
		ErrMalformedCurveID.WithErr(err).Write(w)
		return
	}
	res, err := a.storage.Result(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			if a.storage.IsPending(key) {
				ErrResultNotReady.Write(w)
				return
			}
			ErrCurveNotFound.Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, res)
}