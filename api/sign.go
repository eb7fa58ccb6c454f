package api

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/vocdoni/blindvote/crypto/blindrsa"
	"github.com/vocdoni/blindvote/types"
	"go.vocdoni.io/dvote/log"
)

// authorityInfo returns the authority public key
// GET /authority
func (a *API) authorityInfo(w http.ResponseWriter, r *http.Request) {
	if a.authority == nil {
		ErrAuthorityUnavailable.Write(w)
		return
	}
	n, e := a.authority.Public().Bytes()
	httpWriteJSON(w, &AuthorityInfo{Modulus: n, PublicExponent: e})
}

// sign blind signs a ballot with the authority key. The authority only sees
// the blinded value.
// POST /sign
func (a *API) sign(w http.ResponseWriter, r *http.Request) {
	if a.authority == nil {
		ErrAuthorityUnavailable.Write(w)
		return
	}
	req := &SignRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.ElectionID != nil {
		id := *req.ElectionID
		closed, err := a.ledger.Closed(id)
		if err != nil {
			ledgerError(err).Write(w)
			return
		}
		if closed {
			ErrElectionClosed.Write(w)
			return
		}
		pub, err := a.ledger.PublicKey(id)
		if err != nil || !pub.Equal(a.authority.Public()) {
			ErrAuthorityKeyMismatch.Withf("election %d", id).Write(w)
			return
		}
	}
	sig, err := blindrsa.Sign(a.authority, &blindrsa.BlindedBallot{Value: new(big.Int).SetBytes(req.Blinded)})
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	log.Debugw("blinded ballot signed", "bytes", len(req.Blinded))
	httpWriteJSON(w, &SignResponse{BlindSignature: types.PackBig(sig)})
}
