package types

import (
	"fmt"
	"math/big"
)

// WordSize is the width in bytes of every fixed-width field exchanged between
// voters, the authority and the ledger.
const WordSize = 32

// ErrWordOverflow is returned when a value does not fit in a single Word.
var ErrWordOverflow = fmt.Errorf("value does not fit in %d bytes", WordSize)

// Word is a fixed 32-byte big-endian value. Shorter values are left padded
// with zeros, longer ones are rejected (never truncated).
type Word [WordSize]byte

// WordFromBytes left pads b to WordSize bytes.
func WordFromBytes(b []byte) (Word, error) {
	var w Word
	if len(b) > WordSize {
		return w, fmt.Errorf("%w: got %d bytes", ErrWordOverflow, len(b))
	}
	copy(w[WordSize-len(b):], b)
	return w, nil
}

// WordFromBig returns the 32-byte big-endian representation of a non-negative
// integer.
func WordFromBig(v *big.Int) (Word, error) {
	if v == nil || v.Sign() < 0 {
		return Word{}, fmt.Errorf("invalid word value %v", v)
	}
	return WordFromBytes(v.Bytes())
}

// Big returns the word interpreted as an unsigned big-endian integer.
func (w Word) Big() *big.Int {
	return new(big.Int).SetBytes(w[:])
}

// IsZero reports whether every byte of the word is zero.
func (w Word) IsZero() bool {
	return w == Word{}
}

// String returns the 0x prefixed hexadecimal representation of the word.
func (w Word) String() string {
	return HexBytes(w[:]).String()
}

// MarshalText implements encoding.TextMarshaler.
func (w Word) MarshalText() ([]byte, error) {
	return HexBytes(w[:]).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler. Values shorter than
// WordSize are left padded.
func (w *Word) UnmarshalText(data []byte) error {
	b, err := HexStringToHexBytes(string(data))
	if err != nil {
		return err
	}
	word, err := WordFromBytes(b)
	if err != nil {
		return err
	}
	*w = word
	return nil
}

// Pack left pads b with zeros up to the smallest multiple of n bytes that holds
// it. Empty input is packed into a single zero word.
func Pack(b []byte, n int) []byte {
	words := (len(b) + n - 1) / n
	if words == 0 {
		words = 1
	}
	out := make([]byte, words*n)
	copy(out[len(out)-len(b):], b)
	return out
}

// PackBig packs the big-endian representation of v into the smallest multiple
// of WordSize bytes.
func PackBig(v *big.Int) HexBytes {
	return Pack(v.Bytes(), WordSize)
}
