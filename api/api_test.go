package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/schoof/storage"
	"github.com/vocdoni/schoof/types"
	"go.vocdoni.io/dvote/db/metadb"
)

func testAPI(t *testing.T) (*API, *httptest.Server) {
	a := &API{storage: storage.New(metadb.NewTest(t))}
	a.initRouter()
	srv := httptest.NewServer(a.Router())
	t.Cleanup(srv.Close)
	return a, srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	data, err := json.Marshal(body)
	qt.Assert(t, err, qt.IsNil)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	qt.Assert(t, err, qt.IsNil)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestPing(t *testing.T) {
	c := qt.New(t)
	_, srv := testAPI(t)
	resp, err := http.Get(srv.URL + PingEndpoint)
	c.Assert(err, qt.IsNil)
	defer func() { _ = resp.Body.Close() }()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
}

func TestSynchronousCount(t *testing.T) {
	c := qt.New(t)
	_, srv := testAPI(t)

	resp := postJSON(t, srv.URL+CurvesEndpoint+"?wait=true", map[string]string{
		"p": "23", "a": "4", "b": "2",
	})
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)

	var res types.CountResult
	c.Assert(json.NewDecoder(resp.Body).Decode(&res), qt.IsNil)
	c.Assert(res.Order.String(), qt.Equals, "21")
	c.Assert(res.Trace.String(), qt.Equals, "3")
	c.Assert(res.Duration > 0, qt.IsTrue)
}

func TestAsynchronousCount(t *testing.T) {
	c := qt.New(t)
	a, srv := testAPI(t)

	resp := postJSON(t, srv.URL+CurvesEndpoint, map[string]string{
		"p": "5", "a": "1", "b": "1", "strategy": "reduced",
	})
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	var accepted CurveAccepted
	c.Assert(json.NewDecoder(resp.Body).Decode(&accepted), qt.IsNil)
	c.Assert(accepted.CurveID, qt.Not(qt.HasLen), 0)

	// The result is not ready until a worker processes the queue.
	url := fmt.Sprintf("%s%s/%s", srv.URL, CurvesEndpoint, accepted.CurveID)
	notReady, err := http.Get(url)
	c.Assert(err, qt.IsNil)
	defer func() { _ = notReady.Body.Close() }()
	c.Assert(notReady.StatusCode, qt.Equals, http.StatusNotFound)

	// Stand in for the worker: pull the curve and store its result.
	req, key, err := a.storage.NextCurve()
	c.Assert(err, qt.IsNil)
	var order types.BigInt
	_, err = order.SetString("9")
	c.Assert(err, qt.IsNil)
	c.Assert(a.storage.MarkCurveDone(key, &types.CountResult{
		Request:     *req,
		Order:       &order,
		CompletedAt: time.Now(),
	}), qt.IsNil)

	ready, err := http.Get(url)
	c.Assert(err, qt.IsNil)
	defer func() { _ = ready.Body.Close() }()
	c.Assert(ready.StatusCode, qt.Equals, http.StatusOK)
	var res types.CountResult
	c.Assert(json.NewDecoder(ready.Body).Decode(&res), qt.IsNil)
	c.Assert(res.Order.String(), qt.Equals, "9")
}

func TestBadRequests(t *testing.T) {
	c := qt.New(t)
	_, srv := testAPI(t)

	// Malformed body.
	resp, err := http.Post(srv.URL+CurvesEndpoint, "application/json", bytes.NewReader([]byte("{")))
	c.Assert(err, qt.IsNil)
	defer func() { _ = resp.Body.Close() }()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)

	// Missing parameters.
	resp = postJSON(t, srv.URL+CurvesEndpoint, map[string]string{"p": "23"})
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)

	// Singular curve.
	resp = postJSON(t, srv.URL+CurvesEndpoint, map[string]string{
		"p": "23", "a": "-3", "b": "2",
	})
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)

	// Unknown strategy.
	resp = postJSON(t, srv.URL+CurvesEndpoint, map[string]string{
		"p": "23", "a": "4", "b": "2", "strategy": "bogus",
	})
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)

	// Malformed curve id.
	resp, err = http.Get(srv.URL + CurvesEndpoint + "/zzz")
	c.Assert(err, qt.IsNil)
	defer func() { _ = resp.Body.Close() }()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)

	// Unknown curve id.
	resp, err = http.Get(srv.URL + CurvesEndpoint + "/deadbeef")
	c.Assert(err, qt.IsNil)
	defer func() { _ = resp.Body.Close() }()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusNotFound)
}