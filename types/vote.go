package types

import (
	"encoding/binary"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Submission is the record a voter hands to the ledger: the unblinded-to-be
// signature together with the mask and its inverse. It carries no plaintext.
type Submission struct {
	BlindSignature HexBytes `json:"blindSignature" cbor:"0,keyasint"`
	Mask           Word     `json:"mask"           cbor:"1,keyasint"`
	InvMask        HexBytes `json:"invMask"        cbor:"2,keyasint"`
}

// NewSubmission packs the big integers of a submission into their wire form.
func NewSubmission(blindSignature, mask, invMask *big.Int) (*Submission, error) {
	m, err := WordFromBig(mask)
	if err != nil {
		return nil, err
	}
	return &Submission{
		BlindSignature: PackBig(blindSignature),
		Mask:           m,
		InvMask:        PackBig(invMask),
	}, nil
}

// SignatureMessage returns the bytes a voter signs with its identity key to
// submit this record to the given election.
func (s *Submission) SignatureMessage(electionID uint64) []byte {
	msg := binary.BigEndian.AppendUint64(nil, electionID)
	msg = append(msg, s.BlindSignature...)
	msg = append(msg, s.Mask[:]...)
	return append(msg, s.InvMask...)
}

// VoteRecord is an accepted vote as persisted by the ledger.
type VoteRecord struct {
	ElectionID uint64         `json:"electionId" cbor:"0,keyasint"`
	Index      uint64         `json:"index"      cbor:"1,keyasint"`
	Voter      common.Address `json:"voter"      cbor:"2,keyasint"`
	Hash       Word           `json:"hash"       cbor:"3,keyasint"`
	Vote       string         `json:"vote"       cbor:"4,keyasint"`
}

// Winner is the persisted outcome of a closed election. Name holds the winning
// candidate, or the draw sentinel when Draw is set.
type Winner struct {
	ElectionID uint64    `json:"electionId" cbor:"0,keyasint"`
	Name       string    `json:"name"       cbor:"1,keyasint"`
	Draw       bool      `json:"draw"       cbor:"2,keyasint"`
	Count      int       `json:"count"      cbor:"3,keyasint"`
	TotalVotes int       `json:"totalVotes" cbor:"4,keyasint"`
	ComputedAt time.Time `json:"computedAt" cbor:"5,keyasint"`
}
