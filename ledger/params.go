package ledger

import (
	"fmt"
	"time"

	"github.com/vocdoni/blindvote/crypto/blindrsa"
	"github.com/vocdoni/blindvote/types"
)

// ElectionParams are the parameters an election is created with.
type ElectionParams struct {
	Name string
	// PublicExponent and Modulus form the public key of the signing
	// authority, big-endian.
	PublicExponent types.HexBytes
	Modulus        types.HexBytes
	// StartTime is truncated to whole seconds. The zero value means now.
	StartTime  time.Time
	Duration   time.Duration
	Candidates []string
}

// Validate checks the election parameters. Duration is checked first and
// reported with ErrDurationTooShort or ErrDurationTooLong, any other problem
// with ErrInvalidElection.
func (p *ElectionParams) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: missing parameters", ErrInvalidElection)
	}
	if p.Duration < types.MinElectionDuration {
		return fmt.Errorf("%w (got %s)", ErrDurationTooShort, p.Duration)
	}
	if p.Duration > types.MaxElectionDuration {
		return fmt.Errorf("%w (got %s)", ErrDurationTooLong, p.Duration)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidElection)
	}
	if _, err := p.PublicKey(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidElection, err)
	}
	if len(p.Candidates) == 0 {
		return fmt.Errorf("%w: no candidates", ErrInvalidElection)
	}
	seen := make(map[string]struct{}, len(p.Candidates))
	for _, c := range p.Candidates {
		if c == "" || len(c) > types.MaxCandidateSize {
			return fmt.Errorf("%w: candidate %q must be 1 to %d bytes", ErrInvalidElection, c, types.MaxCandidateSize)
		}
		if _, ok := seen[c]; ok {
			return fmt.Errorf("%w: duplicated candidate %q", ErrInvalidElection, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

// PublicKey returns the validated authority public key.
func (p *ElectionParams) PublicKey() (*blindrsa.PublicKey, error) {
	return blindrsa.NewPublicKey(p.Modulus, p.PublicExponent)
}
