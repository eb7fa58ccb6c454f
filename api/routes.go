package api

import "strings"

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// ElectionsEndpoint is the endpoint for creating and listing elections
	ElectionsEndpoint = "/elections"
	// ElectionEndpoint is the endpoint to get the election info
	ElectionURLParam = "electionId"
	ElectionEndpoint = "/elections/{" + ElectionURLParam + "}"
	// ElectionVotesEndpoint is the endpoint for submitting and listing votes
	ElectionVotesEndpoint = ElectionEndpoint + "/votes"
	// ElectionTallyEndpoint is the endpoint that triggers the winner computation
	ElectionTallyEndpoint = ElectionEndpoint + "/tally"
	// ElectionWinnerEndpoint is the endpoint to get the computed winner
	ElectionWinnerEndpoint = ElectionEndpoint + "/winner"
	// AuthorityEndpoint returns the public key of the signing authority
	AuthorityEndpoint = "/authority"
	// SignEndpoint is the endpoint where the authority blind signs ballots
	SignEndpoint = "/sign"
)

// EndpointWithParam fills the {param} placeholder of an endpoint.
func EndpointWithParam(endpoint, param, value string) string {
	return strings.ReplaceAll(endpoint, "{"+param+"}", value)
}
