package storage

import (
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/schoof/types"
	"go.vocdoni.io/dvote/db/metadb"
)

func newRequest(t *testing.T, p, a, b string) *types.CurveRequest {
	var bp, ba, bb types.BigInt
	_, err := bp.SetString(p)
	qt.Assert(t, err, qt.IsNil)
	_, err = ba.SetString(a)
	qt.Assert(t, err, qt.IsNil)
	_, err = bb.SetString(b)
	qt.Assert(t, err, qt.IsNil)
	return &types.CurveRequest{P: &bp, A: &ba, B: &bb}
}

func TestCurveQueue(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	req := newRequest(t, "23", "4", "2")
	c.Assert(stg.PushCurve(req), qt.IsNil)
	c.Assert(stg.PendingCurves(), qt.Equals, 1)

	// Pushing the same curve again does not duplicate it.
	c.Assert(stg.PushCurve(req), qt.IsNil)
	c.Assert(stg.PendingCurves(), qt.Equals, 1)

	got, key, err := stg.NextCurve()
	c.Assert(err, qt.IsNil)
	c.Assert(got.P.Equal(req.P), qt.IsTrue)
	c.Assert(key, qt.DeepEquals, CurveKey(req))

	// The curve is reserved now: a second worker sees an empty queue.
	_, _, err = stg.NextCurve()
	c.Assert(err, qt.ErrorIs, ErrNoMoreElements)

	// Completing removes it and stores the result.
	var order, trace types.BigInt
	_, err = order.SetString("21")
	c.Assert(err, qt.IsNil)
	_, err = trace.SetString("3")
	c.Assert(err, qt.IsNil)
	res := &types.CountResult{
		Request:     *req,
		Order:       &order,
		Trace:       &trace,
		Duration:    50 * time.Millisecond,
		CompletedAt: time.Now(),
	}
	c.Assert(stg.MarkCurveDone(key, res), qt.IsNil)
	c.Assert(stg.PendingCurves(), qt.Equals, 0)

	stored, err := stg.Result(key)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.Order.Equal(&order), qt.IsTrue)
	c.Assert(stored.Trace.Equal(&trace), qt.IsTrue)
	c.Assert(stored.Error, qt.Equals, "")
}

func TestCurveQueueFailure(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	req := newRequest(t, "23", "-3", "2") // singular: counting it fails
	c.Assert(stg.PushCurve(req), qt.IsNil)

	_, key, err := stg.NextCurve()
	c.Assert(err, qt.IsNil)
	c.Assert(stg.MarkCurveFailed(key, errors.New("singular curve")), qt.IsNil)
	c.Assert(stg.PendingCurves(), qt.Equals, 0)

	res, err := stg.Result(key)
	c.Assert(err, qt.IsNil)
	c.Assert(res.Error, qt.Equals, "singular curve")
	c.Assert(res.Order, qt.IsNil)
	c.Assert(res.Request.P.Equal(req.P), qt.IsTrue)
}

func TestResultNotFound(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))
	_, err := stg.Result([]byte("missing-key"))
	c.Assert(err, qt.ErrorIs, ErrNotFound)
}

func TestQueueOrderIndependence(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	reqs := []*types.CurveRequest{
		newRequest(t, "23", "4", "2"),
		newRequest(t, "31", "2", "7"),
		newRequest(t, "47", "11", "19"),
	}
	for _, r := range reqs {
		c.Assert(stg.PushCurve(r), qt.IsNil)
	}
	seen := map[string]bool{}
	for range reqs {
		got, key, err := stg.NextCurve()
		c.Assert(err, qt.IsNil)
		seen[got.P.String()] = true
		c.Assert(stg.MarkCurveDone(key, &types.CountResult{Request: *got}), qt.IsNil)
	}
	c.Assert(seen, qt.HasLen, 3)
	_, _, err := stg.NextCurve()
	c.Assert(err, qt.ErrorIs, ErrNoMoreElements)
}