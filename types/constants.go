package types

import "time"

const (
	// DefaultPublicExponent is the conventional RSA public exponent.
	DefaultPublicExponent = 65537
	// MinElectionDuration is the shortest election the ledger accepts.
	MinElectionDuration = time.Hour
	// MaxElectionDuration is the longest election the ledger accepts.
	MaxElectionDuration = 4 * 24 * time.Hour
	// MaxCandidateSize is the maximum encoded size of a candidate name.
	MaxCandidateSize = WordSize
)
