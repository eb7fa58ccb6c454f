package client

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/vocdoni/blindvote/api"
	"github.com/vocdoni/blindvote/crypto/ethereum"
	"github.com/vocdoni/blindvote/types"
)

// ResponseError is a non 200 answer of the API.
type ResponseError struct {
	Status  int
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %d: code %d: %s", errCodeNot200, e.Status, e.Code, e.Message)
}

// Is matches an api.Error by code, so callers can use errors.Is(err,
// api.ErrElectionClosed).
func (e *ResponseError) Is(target error) bool {
	switch t := target.(type) {
	case api.Error:
		return t.Code == e.Code
	case *api.Error:
		return t.Code == e.Code
	}
	return false
}

// call performs a request and decodes the JSON answer into out, when not nil.
func (c *HTTPclient) call(method string, body, out any, urlPath ...string) error {
	data, status, err := c.Request(method, body, nil, urlPath...)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		rerr := &ResponseError{Status: status}
		if err := json.Unmarshal(data, rerr); err != nil {
			rerr.Message = string(data)
		}
		return rerr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}

func electionPath(endpoint string, id uint64) string {
	return api.EndpointWithParam(endpoint, api.ElectionURLParam, strconv.FormatUint(id, 10))
}

// CreateElection signs the request with the creator keys and creates the
// election.
func (c *HTTPclient) CreateElection(req *api.CreateElectionRequest, creator *ethereum.SignKeys) (*api.ElectionInfo, error) {
	if err := req.Sign(creator); err != nil {
		return nil, fmt.Errorf("could not sign election: %w", err)
	}
	info := &api.ElectionInfo{}
	if err := c.call(HTTPPOST, req, info, api.ElectionsEndpoint); err != nil {
		return nil, err
	}
	return info, nil
}

// Election returns the election info.
func (c *HTTPclient) Election(id uint64) (*api.ElectionInfo, error) {
	info := &api.ElectionInfo{}
	if err := c.call(HTTPGET, nil, info, electionPath(api.ElectionEndpoint, id)); err != nil {
		return nil, err
	}
	return info, nil
}

// Elections lists every election.
func (c *HTTPclient) Elections() ([]*api.ElectionInfo, error) {
	list := &api.ElectionList{}
	if err := c.call(HTTPGET, nil, list, api.ElectionsEndpoint); err != nil {
		return nil, err
	}
	return list.Elections, nil
}

// SubmitVote signs the submission with the voter keys and submits it.
func (c *HTTPclient) SubmitVote(id uint64, sub *types.Submission, voter *ethereum.SignKeys) (*types.VoteRecord, error) {
	req := &api.VoteRequest{Submission: *sub}
	if err := req.Sign(id, voter); err != nil {
		return nil, fmt.Errorf("could not sign vote: %w", err)
	}
	record := &types.VoteRecord{}
	if err := c.call(HTTPPOST, req, record, electionPath(api.ElectionVotesEndpoint, id)); err != nil {
		return nil, err
	}
	return record, nil
}

// Votes lists the accepted votes of an election.
func (c *HTTPclient) Votes(id uint64) ([]*types.VoteRecord, error) {
	list := &api.VoteList{}
	if err := c.call(HTTPGET, nil, list, electionPath(api.ElectionVotesEndpoint, id)); err != nil {
		return nil, err
	}
	return list.Votes, nil
}

// ComputeWinner asks the ledger to compute the winner of a closed election.
func (c *HTTPclient) ComputeWinner(id uint64) (*types.Winner, error) {
	w := &types.Winner{}
	if err := c.call(HTTPPOST, struct{}{}, w, electionPath(api.ElectionTallyEndpoint, id)); err != nil {
		return nil, err
	}
	return w, nil
}

// Winner returns the last computed winner.
func (c *HTTPclient) Winner(id uint64) (*types.Winner, error) {
	w := &types.Winner{}
	if err := c.call(HTTPGET, nil, w, electionPath(api.ElectionWinnerEndpoint, id)); err != nil {
		return nil, err
	}
	return w, nil
}

// Authority returns the public key of the signing authority.
func (c *HTTPclient) Authority() (*api.AuthorityInfo, error) {
	info := &api.AuthorityInfo{}
	if err := c.call(HTTPGET, nil, info, api.AuthorityEndpoint); err != nil {
		return nil, err
	}
	return info, nil
}

// SignBallot sends a blinded value to the authority and returns its blind
// signature. electionID may be nil.
func (c *HTTPclient) SignBallot(electionID *uint64, blinded *big.Int) (*big.Int, error) {
	resp := &api.SignResponse{}
	req := &api.SignRequest{ElectionID: electionID, Blinded: types.PackBig(blinded)}
	if err := c.call(HTTPPOST, req, resp, api.SignEndpoint); err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(resp.BlindSignature), nil
}
