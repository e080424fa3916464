package client

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/schoof/api"
	"github.com/vocdoni/schoof/schoof"
	"github.com/vocdoni/schoof/service"
	"github.com/vocdoni/schoof/storage"
	"github.com/vocdoni/schoof/types"
	"github.com/vocdoni/schoof/util"
	"go.vocdoni.io/dvote/db/metadb"
)

// setupAPI starts a full stack (storage, count worker, HTTP API) on a random
// port and returns a connected client.
func setupAPI(t *testing.T) *HTTPclient {
	c := qt.New(t)
	// metadb.NewTest owns the database close.
	stg := storage.New(metadb.NewTest(t))

	worker := service.NewCountWorker(stg, 50*time.Millisecond, time.Minute, schoof.StrategyReduced)
	c.Assert(worker.Start(context.Background()), qt.IsNil)
	t.Cleanup(worker.Stop)

	port := util.RandomInt(40000, 60000)
	_, err := api.New(&api.APIConfig{Host: "127.0.0.1", Port: port, Storage: stg})
	c.Assert(err, qt.IsNil)
	// Wait for the HTTP server to start
	time.Sleep(500 * time.Millisecond)

	cli, err := New(fmt.Sprintf("http://127.0.0.1:%d", port))
	c.Assert(err, qt.IsNil)
	return cli
}

func curveRequest(p, a, b int64) *types.CurveRequest {
	return &types.CurveRequest{
		P: (*types.BigInt)(big.NewInt(p)),
		A: (*types.BigInt)(big.NewInt(a)),
		B: (*types.BigInt)(big.NewInt(b)),
	}
}

func TestClientSynchronousCount(t *testing.T) {
	c := qt.New(t)
	cli := setupAPI(t)

	res, err := cli.CountCurve(curveRequest(23, 4, 2))
	c.Assert(err, qt.IsNil)
	c.Assert(res.Order.String(), qt.Equals, "21")
	c.Assert(res.Trace.String(), qt.Equals, "3")
}

func TestClientAsynchronousCount(t *testing.T) {
	c := qt.New(t)
	cli := setupAPI(t)

	curveID, err := cli.EnqueueCurve(curveRequest(5, 1, 1))
	c.Assert(err, qt.IsNil)
	c.Assert(len(curveID) > 0, qt.IsTrue)

	// The background worker picks the curve up within its poll interval.
	deadline := time.Now().Add(10 * time.Second)
	for {
		res, err := cli.CurveResult(curveID)
		if err == nil {
			c.Assert(res.Order.String(), qt.Equals, "9")
			c.Assert(res.Trace.String(), qt.Equals, "-3")
			return
		}
		apiErr, ok := err.(api.Error)
		c.Assert(ok, qt.IsTrue, qt.Commentf("unexpected error: %v", err))
		c.Assert(apiErr.Code, qt.Equals, api.ErrResultNotReady.Code)
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for result")
		}
		time.Sleep(50 * time.Millisecond)
	}
}