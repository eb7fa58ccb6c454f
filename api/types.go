package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/blindvote/crypto/ethereum"
	"github.com/vocdoni/blindvote/ledger"
	"github.com/vocdoni/blindvote/types"
)

// CreateElectionRequest is the request to create a new election. Times are
// unix seconds; a zero StartTime means now. The creator is the address that
// signed the request.
type CreateElectionRequest struct {
	Name           string         `json:"name"`
	PublicExponent types.HexBytes `json:"publicExponent"`
	Modulus        types.HexBytes `json:"modulus"`
	StartTime      int64          `json:"startTime"`
	Duration       int64          `json:"duration"`
	Candidates     []string       `json:"candidates"`
	Signature      types.HexBytes `json:"signature,omitempty"`
}

// SignatureMessage returns the JSON encoding of the request without its
// signature, the message the creator signs.
func (r *CreateElectionRequest) SignatureMessage() ([]byte, error) {
	unsigned := *r
	unsigned.Signature = nil
	return json.Marshal(&unsigned)
}

// Sign signs the request with the creator keys.
func (r *CreateElectionRequest) Sign(keys *ethereum.SignKeys) error {
	msg, err := r.SignatureMessage()
	if err != nil {
		return err
	}
	r.Signature, err = keys.SignEthereum(msg)
	return err
}

// Creator recovers the address that signed the request.
func (r *CreateElectionRequest) Creator() (common.Address, error) {
	msg, err := r.SignatureMessage()
	if err != nil {
		return common.Address{}, err
	}
	return ethereum.AddrFromSignature(msg, r.Signature)
}

// Params converts the request to ledger election parameters. Durations out
// of the accepted range are rejected before the conversion to time.Duration,
// which would otherwise overflow.
func (r *CreateElectionRequest) Params() (*ledger.ElectionParams, error) {
	if r.Duration < int64(types.MinElectionDuration/time.Second) {
		return nil, fmt.Errorf("%w (got %ds)", ledger.ErrDurationTooShort, r.Duration)
	}
	if r.Duration > int64(types.MaxElectionDuration/time.Second) {
		return nil, fmt.Errorf("%w (got %ds)", ledger.ErrDurationTooLong, r.Duration)
	}
	p := &ledger.ElectionParams{
		Name:           r.Name,
		PublicExponent: r.PublicExponent,
		Modulus:        r.Modulus,
		Duration:       time.Duration(r.Duration) * time.Second,
		Candidates:     r.Candidates,
	}
	if r.StartTime != 0 {
		p.StartTime = time.Unix(r.StartTime, 0)
	}
	return p, nil
}

// ElectionInfo is the public view of an election. Times are unix seconds.
type ElectionInfo struct {
	ID             uint64         `json:"id"`
	Name           string         `json:"name"`
	NameHash       types.HexBytes `json:"nameHash"`
	Creator        common.Address `json:"creator"`
	PublicExponent types.HexBytes `json:"publicExponent"`
	Modulus        types.HexBytes `json:"modulus"`
	StartTime      int64          `json:"startTime"`
	Duration       int64          `json:"duration"`
	EndTime        int64          `json:"endTime"`
	Candidates     []string       `json:"candidates"`
	Closed         bool           `json:"closed"`
}

// NewElectionInfo builds the public view of e at the given time.
func NewElectionInfo(e *types.Election, now time.Time) *ElectionInfo {
	return &ElectionInfo{
		ID:             e.ID,
		Name:           e.Name,
		NameHash:       e.NameHash(),
		Creator:        e.Creator,
		PublicExponent: e.PublicExponent,
		Modulus:        e.Modulus,
		StartTime:      e.StartTime.Unix(),
		Duration:       int64(e.Duration / time.Second),
		EndTime:        e.End().Unix(),
		Candidates:     e.Candidates,
		Closed:         e.Closed(now),
	}
}

// ElectionList is the response of the election listing.
type ElectionList struct {
	Elections []*ElectionInfo `json:"elections"`
}

// VoteRequest carries a submission and the voter signature over
// Submission.SignatureMessage.
type VoteRequest struct {
	types.Submission
	Signature types.HexBytes `json:"signature"`
}

// Sign signs the submission for the given election with the voter keys.
func (v *VoteRequest) Sign(electionID uint64, keys *ethereum.SignKeys) error {
	sig, err := keys.SignEthereum(v.SignatureMessage(electionID))
	if err != nil {
		return err
	}
	v.Signature = sig
	return nil
}

// Voter recovers the address that signed the submission.
func (v *VoteRequest) Voter(electionID uint64) (common.Address, error) {
	return ethereum.AddrFromSignature(v.SignatureMessage(electionID), v.Signature)
}

// VoteList is the response of the vote listing.
type VoteList struct {
	Votes []*types.VoteRecord `json:"votes"`
}

// SignRequest asks the authority to sign a blinded ballot. When ElectionID is
// set the authority checks the election is open and uses its key.
type SignRequest struct {
	ElectionID *uint64        `json:"electionId,omitempty"`
	Blinded    types.HexBytes `json:"blinded"`
}

// SignResponse is the blind signature of a SignRequest.
type SignResponse struct {
	BlindSignature types.HexBytes `json:"blindSignature"`
}

// AuthorityInfo is the public key of the signing authority.
type AuthorityInfo struct {
	Modulus        types.HexBytes `json:"modulus"`
	PublicExponent types.HexBytes `json:"publicExponent"`
}

func (a *AuthorityInfo) String() string {
	return fmt.Sprintf("modulus=%s exponent=%s", a.Modulus, a.PublicExponent)
}
