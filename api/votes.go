package api

import (
	"encoding/json"
	"net/http"
)

// newVote submits a vote to an election
// POST /elections/{electionId}/votes
func (a *API) newVote(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	req := &VoteRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	voter, err := req.Voter(id)
	if err != nil {
		ErrInvalidSignature.Withf("could not extract address from signature: %v", err).Write(w)
		return
	}
	record, err := a.ledger.SubmitVote(id, voter, &req.Submission)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	httpWriteJSON(w, record)
}

// votes lists the accepted votes of an election
// GET /elections/{electionId}/votes
func (a *API) votes(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	votes, err := a.ledger.Votes(id)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	httpWriteJSON(w, &VoteList{Votes: votes})
}
