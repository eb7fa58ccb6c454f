package blindrsa

import "errors"

var (
	// ErrEncodingTooLong is returned when a vote does not fit in VoteSize bytes.
	ErrEncodingTooLong = errors.New("encoded vote exceeds 32 bytes")
	// ErrMaskNotInvertible is returned when no invertible mask could be sampled
	// within the retry budget.
	ErrMaskNotInvertible = errors.New("mask is not invertible modulo N")
	// ErrInvalidRecovery is returned when the recovered commitment does not fit
	// in the 64 bytes of a padded vote followed by its hash.
	ErrInvalidRecovery = errors.New("recovered value is not a valid commitment")
	// ErrHashMismatch is returned when the recovered hash does not match the
	// hash recomputed from the recovered vote and the mask.
	ErrHashMismatch = errors.New("hash mismatch")
	// ErrInvalidKey is returned for malformed or too small RSA keys.
	ErrInvalidKey = errors.New("invalid key")
	// ErrBlindedOutOfRange is returned when a value submitted for signing is
	// not in [1, N).
	ErrBlindedOutOfRange = errors.New("blinded value out of range")
	// ErrNoCandidates is returned when a random ballot is requested over an
	// empty candidate list.
	ErrNoCandidates = errors.New("no candidates to choose from")
)
