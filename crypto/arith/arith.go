// Package arith contains the exact modular arithmetic the blind signature
// protocol relies on. Every function allocates its result and never mutates
// its arguments, so values can be shared between goroutines.
package arith

import (
	"errors"
	"math/big"
)

var (
	// ErrNotInvertible is returned by ModInverse when gcd(value, modulus) != 1.
	ErrNotInvertible = errors.New("value is not invertible modulo the modulus")
	// ErrInvalidModulus is returned when the modulus is nil or smaller than 2.
	ErrInvalidModulus = errors.New("invalid modulus")

	one = big.NewInt(1)
)

// Mul returns a*b.
func Mul(a, b *big.Int) *big.Int {
	return new(big.Int).Mul(a, b)
}

// Mod returns the Euclidean remainder a mod m, always in [0, m).
func Mod(a, m *big.Int) *big.Int {
	return new(big.Int).Mod(a, m)
}

// MulMod returns (a*b) mod m.
func MulMod(a, b, m *big.Int) *big.Int {
	return Mod(Mul(a, b), m)
}

// ModPow returns base^exp mod m. The exponent must be non-negative and the
// modulus positive.
func ModPow(base, exp, m *big.Int) *big.Int {
	return new(big.Int).Exp(base, exp, m)
}

// ModInverse returns the multiplicative inverse of v modulo m. It returns
// ErrNotInvertible if v and m share a non trivial factor (including v = 0).
func ModInverse(v, m *big.Int) (*big.Int, error) {
	if m == nil || m.Cmp(one) <= 0 {
		return nil, ErrInvalidModulus
	}
	inv := new(big.Int).ModInverse(Mod(v, m), m)
	if inv == nil {
		return nil, ErrNotInvertible
	}
	return inv, nil
}
