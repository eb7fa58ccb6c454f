package blindrsa

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/blindvote/crypto/arith"
	"github.com/vocdoni/blindvote/types"
)

// Recovered is the plaintext vote recovered from a valid submission.
type Recovered struct {
	Vote       string
	PaddedVote types.Word
	Hash       types.Word
}

// Verify unblinds the blind signature with the inverse mask, recovers the
// commitment with the public exponent and checks that its hash half matches
// keccak256(vote || mask).
//
// The hash is checked over the low 64 bytes of the recovered value before its
// width, so a wrong inverse mask (which yields an unrelated full-width value)
// is reported as ErrHashMismatch. ErrInvalidRecovery is only returned when the
// hash matches but the value overflows 64 bytes.
func Verify(pub *PublicKey, blindSignature *big.Int, mask types.Word, invMask *big.Int) (*Recovered, error) {
	if err := pub.Validate(); err != nil {
		return nil, err
	}
	if blindSignature == nil || invMask == nil {
		return nil, fmt.Errorf("%w: missing signature or inverse mask", ErrInvalidRecovery)
	}
	unblinded := arith.MulMod(blindSignature, invMask, pub.N)
	recovered := arith.ModPow(unblinded, pub.E, pub.N)

	raw := recovered.Bytes()
	var commitment [CommitmentSize]byte
	if len(raw) > CommitmentSize {
		copy(commitment[:], raw[len(raw)-CommitmentSize:])
	} else {
		copy(commitment[CommitmentSize-len(raw):], raw)
	}
	var padded, hash types.Word
	copy(padded[:], commitment[:VoteSize])
	copy(hash[:], commitment[VoteSize:])

	if Hash(padded, mask) != hash {
		return nil, ErrHashMismatch
	}
	if len(raw) > CommitmentSize {
		return nil, fmt.Errorf("%w: recovered %d bytes", ErrInvalidRecovery, len(raw))
	}
	return &Recovered{
		Vote:       UnpadVote(padded),
		PaddedVote: padded,
		Hash:       hash,
	}, nil
}

// VerifySubmission runs Verify over the wire form of a submission.
func VerifySubmission(pub *PublicKey, sub *types.Submission) (*Recovered, error) {
	if sub == nil || len(sub.BlindSignature) == 0 || len(sub.InvMask) == 0 {
		return nil, fmt.Errorf("%w: empty submission", ErrInvalidRecovery)
	}
	return Verify(pub,
		new(big.Int).SetBytes(sub.BlindSignature),
		sub.Mask,
		new(big.Int).SetBytes(sub.InvMask),
	)
}
