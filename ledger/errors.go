package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrDurationOutOfRange is wrapped by both duration errors.
	ErrDurationOutOfRange = errors.New("election duration out of range")
	// ErrDurationTooShort is returned for elections shorter than one hour.
	ErrDurationTooShort = fmt.Errorf("%w: no elections shorter than 1 hour allowed", ErrDurationOutOfRange)
	// ErrDurationTooLong is returned for elections longer than four days.
	ErrDurationTooLong = fmt.Errorf("%w: no elections longer than 4 days allowed", ErrDurationOutOfRange)
	// ErrInvalidElection is returned when the election parameters are malformed.
	ErrInvalidElection = errors.New("invalid election parameters")
	// ErrElectionNotFound is returned for unknown election ids.
	ErrElectionNotFound = errors.New("election not found")
	// ErrElectionClosed is returned when a vote arrives after the election end.
	ErrElectionClosed = errors.New("election has already finished, no more votes accepted")
	// ErrElectionNotClosed is returned when the tally is requested too early.
	ErrElectionNotClosed = errors.New("election must be finished to compute tally")
	// ErrInvalidHash is returned when a submission does not verify. It wraps
	// the verification error of the blindrsa package.
	ErrInvalidHash = errors.New("invalid hash")
	// ErrInvalidSubmission is returned for submissions missing fields.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrAlreadyVoted is returned by the one vote per identity policy.
	ErrAlreadyVoted = errors.New("identity already voted in this election")
	// ErrUnknownCandidate is returned by the strict candidates policy.
	ErrUnknownCandidate = errors.New("vote is not one of the election candidates")
	// ErrWinnerNotComputed is returned when the winner was not computed yet.
	ErrWinnerNotComputed = errors.New("winner not computed")
)
