package types

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"
)

func TestBigIntHexInput(t *testing.T) {
	c := qt.New(t)
	var i BigInt
	c.Assert(json.Unmarshal([]byte(`"0xff"`), &i), qt.IsNil)
	c.Assert(i.String(), qt.Equals, "255")

	c.Assert(json.Unmarshal([]byte(`"-42"`), &i), qt.IsNil)
	c.Assert(i.String(), qt.Equals, "-42")

	c.Assert(json.Unmarshal([]byte(`"zz"`), &i), qt.IsNotNil)
}

func TestHexBytesRoundTrip(t *testing.T) {
	c := qt.New(t)
	b := HexBytes{0xde, 0xad, 0xbe, 0xef}
	data, err := json.Marshal(b)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, `"0xdeadbeef"`)

	var back HexBytes
	c.Assert(json.Unmarshal(data, &back), qt.IsNil)
	c.Assert(back, qt.DeepEquals, b)

	// The 0x prefix is optional on input.
	c.Assert(back.FromString("deadbeef"), qt.IsNil)
	c.Assert(back, qt.DeepEquals, b)
}

func TestCountResultRoundTrip(t *testing.T) {
	c := qt.New(t)
	var p, a, b, order BigInt
	_, err := p.SetString("23")
	c.Assert(err, qt.IsNil)
	_, err = a.SetString("4")
	c.Assert(err, qt.IsNil)
	_, err = b.SetString("2")
	c.Assert(err, qt.IsNil)
	_, err = order.SetString("21")
	c.Assert(err, qt.IsNil)

	res := CountResult{
		Request: CurveRequest{P: &p, A: &a, B: &b, Strategy: "reduced"},
		Order:   &order,
	}
	data, err := cbor.Marshal(res)
	c.Assert(err, qt.IsNil)
	var back CountResult
	c.Assert(cbor.Unmarshal(data, &back), qt.IsNil)
	c.Assert(back.Order.Equal(res.Order), qt.IsTrue)
	c.Assert(back.Request.P.Equal(res.Request.P), qt.IsTrue)
	c.Assert(back.Request.Strategy, qt.Equals, "reduced")
}