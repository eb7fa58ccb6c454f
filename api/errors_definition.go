//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400 or 404 (or even 204), whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX
// If you notice there's a gap (say, error code 4010, 4011 and 4013 exist, 4012 is missing) DON'T fill in the gap,
// that code was used in the past for some error (not anymore) and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
var (
	ErrResourceNotFound           = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody              = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrInvalidSignature           = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid signature")}
	ErrMalformedElectionID        = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed election ID")}
	ErrElectionNotFound           = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("election not found")}
	ErrInvalidElectionParams      = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid election parameters")}
	ErrElectionDurationOutOfRange = Error{Code: 40009, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("election duration out of range")}
	ErrElectionClosed             = Error{Code: 40010, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("election has already finished, no more votes accepted")}
	ErrElectionNotClosed          = Error{Code: 40011, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("election must be finished to compute tally")}
	ErrInvalidHash                = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid hash")}
	ErrAlreadyVoted               = Error{Code: 40013, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("already voted")}
	ErrUnknownCandidate           = Error{Code: 40014, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("unknown candidate")}
	ErrWinnerNotComputed          = Error{Code: 40015, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("winner not computed")}
	ErrBlindedOutOfRange          = Error{Code: 40016, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("blinded value out of range")}
	ErrMalformedSubmission        = Error{Code: 40017, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed submission")}
	ErrAuthorityKeyMismatch       = Error{Code: 40018, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("election is not signed by this authority")}
	ErrInvalidRecovery            = Error{Code: 40019, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("recovered value is not a commitment")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrAuthorityUnavailable       = Error{Code: 50003, HTTPstatus: http.StatusServiceUnavailable, Err: fmt.Errorf("this node does not hold an authority key")}
)
