// storage package persists the ledger state: elections, accepted votes, the
// voters that already took part and the computed winners. It is a prefixed
// key-value store on top of any go.vocdoni.io/dvote/db backend. The following
// prefixes are used:
//   - 'e/' for elections, keyed by their big-endian id
//   - 'v/' for votes, keyed by election id and vote index
//   - 'w/' for voters, keyed by election id and voter address
//   - 'n/' for winners, keyed by election id
//   - 'c/' for counters (next election id, number of votes per election)
package storage

import (
	"errors"
	"sync"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/log"
)

var (
	// Prefixes for the keys in the database.
	electionPrefix = []byte("e/")
	votePrefix     = []byte("v/")
	voterPrefix    = []byte("w/")
	winnerPrefix   = []byte("n/")
	counterPrefix  = []byte("c/")

	// Counter keys under counterPrefix.
	electionCounterKey = []byte("elections")
	voteCounterKey     = []byte("votes/")
)

var (
	// ErrNotFound is returned when the requested artifact is not stored.
	ErrNotFound = errors.New("not found")
	// ErrVoterExists is returned by AppendVote when the voter is already
	// registered for the election and uniqueness was requested.
	ErrVoterExists = errors.New("voter already registered")
)

// Storage wraps the database with typed accessors for the ledger artifacts.
type Storage struct {
	db db.Database
	// globalLock serializes counter read-modify-write cycles.
	globalLock sync.Mutex
}

// New creates a new Storage instance.
func New(db db.Database) *Storage {
	return &Storage{db: db}
}

// Close closes the storage.
func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		log.Warnw("failed to close storage", "error", err.Error())
	}
}
