// Package blindrsa implements the RSA blind signature ballot protocol: voters
// commit to a padded vote and its hash, blind the commitment with a random
// mask, get it signed by the election authority and hand the blind signature
// together with the mask to the ledger, which recovers and checks the vote.
package blindrsa

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/vocdoni/blindvote/crypto/arith"
	"github.com/vocdoni/blindvote/types"
)

const (
	// VoteSize is the size of a padded vote.
	VoteSize = types.WordSize
	// MaskSize is the size of the random blinding mask.
	MaskSize = types.WordSize
	// CommitmentSize is the size of paddedVote || hash.
	CommitmentSize = VoteSize + types.WordSize

	// maxMaskAttempts bounds mask resampling when the sampled mask shares a
	// factor with the modulus.
	maxMaskAttempts = 8
)

// Ballot is the voter side state of a vote. Everything but the blinded value
// stays with the voter until submission.
type Ballot struct {
	Vote       string
	PaddedVote types.Word
	Mask       *big.Int
	InvMask    *big.Int
	Hash       types.Word
	Commitment *big.Int
	// BlindedValue is Commitment * Mask^E mod N, the only value the authority
	// receives.
	BlindedValue *big.Int
}

// PadVote encodes vote as UTF-8 and left pads it with zeros to VoteSize bytes.
func PadVote(vote string) (types.Word, error) {
	w, err := types.WordFromBytes([]byte(vote))
	if err != nil {
		return types.Word{}, fmt.Errorf("%w: %q is %d bytes", ErrEncodingTooLong, vote, len(vote))
	}
	return w, nil
}

// UnpadVote strips the leading zero bytes of a padded vote.
func UnpadVote(padded types.Word) string {
	i := 0
	for i < len(padded) && padded[i] == 0 {
		i++
	}
	return string(padded[i:])
}

// Commitment returns the 512-bit integer paddedVote || hash.
func Commitment(paddedVote, hash types.Word) *big.Int {
	buf := make([]byte, 0, CommitmentSize)
	buf = append(buf, paddedVote[:]...)
	buf = append(buf, hash[:]...)
	return new(big.Int).SetBytes(buf)
}

// GenerateBallot builds and blinds a ballot for vote under the election public
// key. Randomness is read from rnd, or crypto/rand when rnd is nil. The vote is
// not checked against any candidate list, so arbitrary messages can be crafted.
func GenerateBallot(vote string, pub *PublicKey, rnd io.Reader) (*Ballot, error) {
	if err := pub.Validate(); err != nil {
		return nil, err
	}
	if rnd == nil {
		rnd = rand.Reader
	}
	padded, err := PadVote(vote)
	if err != nil {
		return nil, err
	}
	mask, maskWord, invMask, err := sampleMask(pub.N, rnd)
	if err != nil {
		return nil, err
	}
	hash := Hash(padded, maskWord)
	commitment := arith.Mod(Commitment(padded, hash), pub.N)
	blinded := arith.MulMod(commitment, arith.ModPow(mask, pub.E, pub.N), pub.N)
	return &Ballot{
		Vote:         vote,
		PaddedVote:   padded,
		Mask:         mask,
		InvMask:      invMask,
		Hash:         hash,
		Commitment:   commitment,
		BlindedValue: blinded,
	}, nil
}

// GenerateRandomBallot picks one of the candidates uniformly at random and
// generates a ballot for it.
func GenerateRandomBallot(candidates []string, pub *PublicKey, rnd io.Reader) (*Ballot, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if rnd == nil {
		rnd = rand.Reader
	}
	i, err := rand.Int(rnd, big.NewInt(int64(len(candidates))))
	if err != nil {
		return nil, fmt.Errorf("could not pick a candidate: %w", err)
	}
	return GenerateBallot(candidates[i.Int64()], pub, rnd)
}

// sampleMask reads MaskSize random bytes until they form an integer invertible
// modulo n.
func sampleMask(n *big.Int, rnd io.Reader) (*big.Int, types.Word, *big.Int, error) {
	var maskWord types.Word
	for attempt := 0; attempt < maxMaskAttempts; attempt++ {
		if _, err := io.ReadFull(rnd, maskWord[:]); err != nil {
			return nil, types.Word{}, nil, fmt.Errorf("could not read mask: %w", err)
		}
		mask := maskWord.Big()
		invMask, err := arith.ModInverse(mask, n)
		if err != nil {
			continue
		}
		return mask, maskWord, invMask, nil
	}
	return nil, types.Word{}, nil, fmt.Errorf("%w after %d attempts", ErrMaskNotInvertible, maxMaskAttempts)
}

// Blinded returns the value to be sent to the authority for signing.
func (b *Ballot) Blinded() *BlindedBallot {
	return &BlindedBallot{Value: new(big.Int).Set(b.BlindedValue)}
}

// Submission builds the record sent to the ledger from the blind signature
// returned by the authority.
func (b *Ballot) Submission(blindSignature *big.Int) (*types.Submission, error) {
	return types.NewSubmission(blindSignature, b.Mask, b.InvMask)
}
