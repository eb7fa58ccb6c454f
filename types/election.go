package types

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Election holds the immutable parameters of an election as stored by the
// ledger. Modulus and PublicExponent are packed to a multiple of WordSize.
type Election struct {
	ID             uint64         `json:"id"             cbor:"0,keyasint"`
	Name           string         `json:"name"           cbor:"1,keyasint,omitempty"`
	Creator        common.Address `json:"creator"        cbor:"2,keyasint"`
	PublicExponent HexBytes       `json:"publicExponent" cbor:"3,keyasint,omitempty"`
	Modulus        HexBytes       `json:"modulus"        cbor:"4,keyasint,omitempty"`
	StartTime      time.Time      `json:"startTime"      cbor:"5,keyasint"`
	Duration       time.Duration  `json:"duration"       cbor:"6,keyasint"`
	Candidates     []string       `json:"candidates"     cbor:"7,keyasint,omitempty"`
}

// End returns the instant from which no more votes are accepted.
func (e *Election) End() time.Time {
	return e.StartTime.Add(e.Duration)
}

// Closed reports whether the election is finished at the given time.
func (e *Election) Closed(now time.Time) bool {
	return !now.Before(e.End())
}

// NameHash returns the keccak256 hash of the election name, as announced in
// the new election notification.
func (e *Election) NameHash() HexBytes {
	return ethcrypto.Keccak256([]byte(e.Name))
}

// HasCandidate reports whether name is one of the election candidates.
func (e *Election) HasCandidate(name string) bool {
	for _, c := range e.Candidates {
		if c == name {
			return true
		}
	}
	return false
}

func (e *Election) String() string {
	data, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	return string(data)
}
