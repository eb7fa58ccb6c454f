package blindrsa

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/blindvote/crypto/arith"
)

// BlindedBallot is everything the authority is given to sign. It carries no
// vote, mask or hash, only the blinded commitment.
type BlindedBallot struct {
	Value *big.Int
}

// Sign returns blinded^D mod N. The authority never learns the commitment: the
// mask^E factor cancels out once the voter multiplies the result by the mask
// inverse, leaving commitment^D mod N.
func Sign(key *PrivateKey, blinded *BlindedBallot) (*big.Int, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if blinded == nil || blinded.Value == nil || blinded.Value.Sign() <= 0 || blinded.Value.Cmp(key.N) >= 0 {
		return nil, fmt.Errorf("%w: must be in [1, N)", ErrBlindedOutOfRange)
	}
	return arith.ModPow(blinded.Value, key.D, key.N), nil
}
