package types

import (
	"encoding/json"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"
)

func TestWordFromBig(t *testing.T) {
	c := qt.New(t)

	w, err := WordFromBig(big.NewInt(0x010001))
	c.Assert(err, qt.IsNil)
	c.Assert(w[WordSize-3:], qt.DeepEquals, []byte{0x01, 0x00, 0x01})
	c.Assert(w[:WordSize-3], qt.DeepEquals, make([]byte, WordSize-3))
	c.Assert(w.Big().Int64(), qt.Equals, int64(0x010001))

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	_, err = WordFromBig(max)
	c.Assert(err, qt.IsNil)

	_, err = WordFromBig(new(big.Int).Lsh(big.NewInt(1), 256))
	c.Assert(err, qt.ErrorIs, ErrWordOverflow)

	_, err = WordFromBig(big.NewInt(-1))
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestPack(t *testing.T) {
	c := qt.New(t)

	c.Assert(Pack(nil, WordSize), qt.HasLen, WordSize)
	c.Assert(Pack([]byte{1, 0, 1}, WordSize), qt.HasLen, WordSize)
	c.Assert(Pack(make([]byte, WordSize), WordSize), qt.HasLen, WordSize)
	c.Assert(Pack(make([]byte, WordSize+1), WordSize), qt.HasLen, 2*WordSize)
	c.Assert(Pack(make([]byte, 256), WordSize), qt.HasLen, 256)

	packed := Pack([]byte{0xaa, 0xbb}, 4)
	c.Assert(packed, qt.DeepEquals, []byte{0, 0, 0xaa, 0xbb})

	v, _ := new(big.Int).SetString("cc20bbe7f3af9c71b5d3bc23203bdb074e849639c74cfd69770153b820d360f82b", 16)
	c.Assert(PackBig(v), qt.HasLen, 2*WordSize)
	c.Assert(new(big.Int).SetBytes(PackBig(v)).Cmp(v), qt.Equals, 0)
}

func TestWordMarshalJSON(t *testing.T) {
	c := qt.New(t)
	w, err := WordFromBytes([]byte("Donald Duck"))
	c.Assert(err, qt.IsNil)

	data, err := json.Marshal(map[string]Word{"w": w})
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, `{"w":"`+w.String()+`"}`)

	var unmarshaled map[string]Word
	c.Assert(json.Unmarshal(data, &unmarshaled), qt.IsNil)
	c.Assert(unmarshaled["w"], qt.Equals, w)

	// short values are left padded
	var short Word
	c.Assert(short.UnmarshalText([]byte("0x010001")), qt.IsNil)
	c.Assert(short.Big().Int64(), qt.Equals, int64(65537))

	var long Word
	c.Assert(long.UnmarshalText([]byte(HexBytes(make([]byte, 33)).String())), qt.ErrorIs, ErrWordOverflow)
}

func TestSubmissionMarshalCBOR(t *testing.T) {
	c := qt.New(t)
	sub, err := NewSubmission(big.NewInt(1234567890), big.NewInt(42), big.NewInt(987654321))
	c.Assert(err, qt.IsNil)
	c.Assert(sub.BlindSignature, qt.HasLen, WordSize)
	c.Assert(sub.InvMask, qt.HasLen, WordSize)

	data, err := cbor.Marshal(sub)
	c.Assert(err, qt.IsNil)
	var unmarshaled Submission
	c.Assert(cbor.Unmarshal(data, &unmarshaled), qt.IsNil)
	c.Assert(&unmarshaled, qt.DeepEquals, sub)

	msg := sub.SignatureMessage(7)
	c.Assert(msg, qt.HasLen, 8+3*WordSize)
	c.Assert(sub.SignatureMessage(8), qt.Not(qt.DeepEquals), msg)
}

func TestHexBytesUnmarshal(t *testing.T) {
	c := qt.New(t)
	var b HexBytes
	c.Assert(json.Unmarshal([]byte(`"0x10001"`), &b), qt.IsNil)
	c.Assert([]byte(b), qt.DeepEquals, []byte{0x01, 0x00, 0x01})
	c.Assert(json.Unmarshal([]byte(`"abcd"`), &b), qt.IsNil)
	c.Assert(b.String(), qt.Equals, "0xabcd")
	c.Assert(json.Unmarshal([]byte(`"0xzz"`), &b), qt.Not(qt.IsNil))
}
