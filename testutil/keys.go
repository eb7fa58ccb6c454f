// Package testutil provides fixed keys and helpers shared by tests and the
// end-to-end tool. Never use these keys for a real election.
package testutil

import (
	"bytes"
	"io"
	"math/big"

	"github.com/vocdoni/blindvote/crypto/blindrsa"
)

const (
	// AuthorityModulusHex is the 2048-bit modulus of the reference deployment.
	AuthorityModulusHex = "cc20bbe7f3af9c71b5d3bc23203bdb074e849639c74cfd69770153b820d360f8" +
		"2b1577f44a8450118e8d26b552b0c885bf15a15a8f08f6a5cef4eb03fa8acd5c" +
		"ef9e0d2c9ed00f9c9a3278e0f5bddfa0660f7f98e3c35188a22e74feb8af3f64" +
		"9cb4a50e0c4e5cf507582c02c2dee49d289519375f7e2b98c2f3237efbf5c7d6" +
		"873dd07994416bc310d77aaa036c4932b98355996a0d53f07a84dd1a28e979a3" +
		"137fd471741447890917b932f744e140a5530c1e74ff0f653cc98868915616d4" +
		"c12d86ebf59ee77519dd47291512c6ca1bd1b647f6ade2c6b026704bebfa6919" +
		"2bb62806fa7fa4462ef62e39d58dd8aa0122da84644a283c62df748f7b9ffc37"
	// AuthorityPrivateExponentHex is the private exponent matching
	// AuthorityModulusHex and PublicExponentHex.
	AuthorityPrivateExponentHex = "618b64efe729ac8b4415ddca354d95118d4a5b9559b167497e2662b0d2f2dfdc" +
		"478e5747a4524d06cec591d1452618749d47035788918277e2897442eef76442" +
		"7c78dd17ccfe64ef735a1a1c7a22155a8b5aeda10c7a1a1cbe4f8ff5e7204b9d" +
		"532b19d2b83bbc3d1518e3d31ff72e6d11670a69451740531c19df04fff747da" +
		"582a49a410558fe5cf9b55bc6c1c900c89d816745918b78e9da9d4962629e916" +
		"af957f78028a423558828b67afd57c2be42ac67426091ed98c00257640475a2f" +
		"3b12db0216fd5ba34012d489f931bc8c88224acf29712d274cd510d202eac6bd" +
		"0ccb78880e8cbe02c10bb4d468b01513ef14dc4744ba50cdb375b8e8a6ae7949"
	// PublicExponentHex is 65537.
	PublicExponentHex = "010001"

	// SmallFactorPHex and SmallFactorQHex are the known prime factors of the
	// 656-bit SmallModulusHex. P is exactly 256 bits long, so it can be drawn
	// as a mask.
	SmallFactorPHex = "8f1973df0f870e6a26cfb3f3a8dba797dc7d4bc2c5bd42feb6fbb997aaa581bb"
	SmallFactorQHex = "fade3e07ba52f07f2062604b1e62525cb37df1811df0eaa33fae4bcaee033640" +
		"cecf5dfaa9ea1663e15d58fac9bfff5017cd"
	SmallModulusHex = "8c3b15e6cc8266d4673a782833663e108d5a3821142f3c1a42a7de07bfeec0c3" +
		"b38d73a9d0b5d22775362ca404558cc35539ff68e0fc8ec0a735d52a41f335bc" +
		"b15f02daa71c3f35083d74960c3f54a0afbf"
	SmallPrivateExponentHex = "f6a4e08616ce8544070cb5552a927a376d6771b1e769425d2dea9e80784fdc85" +
		"4b860adf670b246688f768443404f52deee9736f8b9ceda643b78628f7f69751" +
		"3111004816586ea607f9e29c773fd6d4749"
)

// DuckElection is the election used across tests and the end-to-end tool.
var (
	DuckElectionName = "Who is the greatest Duck?"
	DuckCandidates   = []string{"Donald Duck", "Scrooge McDuck", "Daffy Duck", "Psyduck"}
)

// AuthorityKey returns the 2048-bit reference authority key.
func AuthorityKey() *blindrsa.PrivateKey {
	return mustKey(AuthorityModulusHex, PublicExponentHex, AuthorityPrivateExponentHex)
}

// SmallKey returns a 656-bit key whose factors are known, used to exercise
// non-invertible masks.
func SmallKey() *blindrsa.PrivateKey {
	return mustKey(SmallModulusHex, PublicExponentHex, SmallPrivateExponentHex)
}

// SmallFactorP returns the 256-bit prime factor of the SmallKey modulus.
func SmallFactorP() *big.Int {
	p, ok := new(big.Int).SetString(SmallFactorPHex, 16)
	if !ok {
		panic("invalid factor")
	}
	return p
}

func mustKey(n, e, d string) *blindrsa.PrivateKey {
	key, err := blindrsa.PrivateKeyFromHex(n, e, d)
	if err != nil {
		panic(err)
	}
	return key
}

// RepeatReader returns a reader that yields the given chunks in order and then
// repeats the last one forever. It is used to inject deterministic masks.
func RepeatReader(chunks ...[]byte) io.Reader {
	return &repeatReader{chunks: chunks}
}

type repeatReader struct {
	chunks [][]byte
	buf    bytes.Buffer
}

func (r *repeatReader) Read(p []byte) (int, error) {
	for r.buf.Len() < len(p) {
		chunk := r.chunks[0]
		if len(r.chunks) > 1 {
			r.chunks = r.chunks[1:]
		}
		r.buf.Write(chunk)
	}
	return r.buf.Read(p)
}
