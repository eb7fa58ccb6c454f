package blindrsa

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/blindvote/types"
)

// MinModulusBits is the smallest accepted modulus size. The commitment is a
// 512-bit integer and must always be strictly smaller than N.
const MinModulusBits = 2*types.WordSize*8 + 1

// PublicKey is the election public key: modulus N and public exponent E.
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// PrivateKey holds the authority secret exponent D next to its public key.
// D must satisfy E*D = 1 mod lambda(N).
type PrivateKey struct {
	PublicKey
	D *big.Int
}

// NewPublicKey builds a public key from big-endian modulus and exponent bytes
// and validates it.
func NewPublicKey(modulus, exponent []byte) (*PublicKey, error) {
	pk := &PublicKey{
		N: new(big.Int).SetBytes(modulus),
		E: new(big.Int).SetBytes(exponent),
	}
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	return pk, nil
}

// PublicKeyFromHex builds a public key from hexadecimal modulus and exponent.
func PublicKeyFromHex(modulus, exponent string) (*PublicKey, error) {
	n, err := types.HexStringToHexBytes(modulus)
	if err != nil {
		return nil, fmt.Errorf("%w: modulus: %w", ErrInvalidKey, err)
	}
	e, err := types.HexStringToHexBytes(exponent)
	if err != nil {
		return nil, fmt.Errorf("%w: exponent: %w", ErrInvalidKey, err)
	}
	return NewPublicKey(n, e)
}

// PrivateKeyFromHex builds a private key from hexadecimal modulus, public
// exponent and private exponent.
func PrivateKeyFromHex(modulus, exponent, private string) (*PrivateKey, error) {
	pk, err := PublicKeyFromHex(modulus, exponent)
	if err != nil {
		return nil, err
	}
	d, err := types.HexStringToHexBytes(private)
	if err != nil {
		return nil, fmt.Errorf("%w: private exponent: %w", ErrInvalidKey, err)
	}
	sk := &PrivateKey{PublicKey: *pk, D: new(big.Int).SetBytes(d)}
	if err := sk.Validate(); err != nil {
		return nil, err
	}
	return sk, nil
}

// Validate checks the modulus is large enough to hold a commitment and the
// exponent is an odd number greater than one.
func (pk *PublicKey) Validate() error {
	if pk == nil || pk.N == nil || pk.E == nil {
		return fmt.Errorf("%w: missing modulus or exponent", ErrInvalidKey)
	}
	if pk.N.BitLen() < MinModulusBits {
		return fmt.Errorf("%w: modulus has %d bits, need at least %d", ErrInvalidKey, pk.N.BitLen(), MinModulusBits)
	}
	if pk.E.Cmp(big.NewInt(1)) <= 0 || pk.E.Bit(0) == 0 || pk.E.Cmp(pk.N) >= 0 {
		return fmt.Errorf("%w: bad public exponent %s", ErrInvalidKey, pk.E)
	}
	return nil
}

// Validate checks the public part and that the private exponent is in range.
func (sk *PrivateKey) Validate() error {
	if sk == nil {
		return fmt.Errorf("%w: nil private key", ErrInvalidKey)
	}
	if err := sk.PublicKey.Validate(); err != nil {
		return err
	}
	if sk.D == nil || sk.D.Sign() <= 0 || sk.D.Cmp(sk.N) >= 0 {
		return fmt.Errorf("%w: private exponent out of range", ErrInvalidKey)
	}
	return nil
}

// Public returns a copy of the public part of the key.
func (sk *PrivateKey) Public() *PublicKey {
	return &PublicKey{N: new(big.Int).Set(sk.N), E: new(big.Int).Set(sk.E)}
}

// Bytes returns the modulus and exponent packed to a multiple of WordSize.
func (pk *PublicKey) Bytes() (modulus, exponent types.HexBytes) {
	return types.PackBig(pk.N), types.PackBig(pk.E)
}

// Equal reports whether both keys have the same modulus and exponent.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && pk.N.Cmp(other.N) == 0 && pk.E.Cmp(other.E) == 0
}
