package api

import (
	"encoding/json"
	"net/http"

	"go.vocdoni.io/dvote/log"
)

// newElection creates a new election
// POST /elections
func (a *API) newElection(w http.ResponseWriter, r *http.Request) {
	req := &CreateElectionRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	// Extract the creator address from the signature
	creator, err := req.Creator()
	if err != nil {
		ErrInvalidSignature.Withf("could not extract address from signature: %v", err).Write(w)
		return
	}
	params, err := req.Params()
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	e, err := a.ledger.CreateElection(creator, params)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	log.Debugw("election created through the API", "id", e.ID, "creator", creator.Hex())
	httpWriteJSON(w, NewElectionInfo(e, a.ledger.Now()))
}

// elections lists every election
// GET /elections
func (a *API) elections(w http.ResponseWriter, r *http.Request) {
	all, err := a.ledger.Elections()
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	now := a.ledger.Now()
	list := &ElectionList{Elections: make([]*ElectionInfo, 0, len(all))}
	for _, e := range all {
		list.Elections = append(list.Elections, NewElectionInfo(e, now))
	}
	httpWriteJSON(w, list)
}

// election returns the election info
// GET /elections/{electionId}
func (a *API) election(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	e, err := a.ledger.Election(id)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	httpWriteJSON(w, NewElectionInfo(e, a.ledger.Now()))
}

// computeWinner computes the winner of a closed election
// POST /elections/{electionId}/tally
func (a *API) computeWinner(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	winner, err := a.ledger.ComputeWinner(id)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	httpWriteJSON(w, winner)
}

// winner returns the last computed winner
// GET /elections/{electionId}/winner
func (a *API) winner(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	winner, err := a.ledger.Winner(id)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	httpWriteJSON(w, winner)
}
