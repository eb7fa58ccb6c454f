package storage

import (
	"fmt"
	"sort"

	"github.com/vocdoni/blindvote/types"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// NewElection assigns the next sequential id to the election and stores it.
// Ids start at zero. The assigned id is also written to e.ID.
func (s *Storage) NewElection(e *types.Election) (uint64, error) {
	if e == nil {
		return 0, fmt.Errorf("nil election")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	id, err := s.counter(electionCounterKey)
	if err != nil {
		return 0, err
	}
	e.ID = id

	wTx := s.db.WriteTx()
	defer wTx.Discard()
	if err := setArtifact(wTx, electionPrefix, uint64Key(id), e); err != nil {
		return 0, fmt.Errorf("set election: %w", err)
	}
	if err := setCounter(wTx, electionCounterKey, id+1); err != nil {
		return 0, fmt.Errorf("set election counter: %w", err)
	}
	if err := wTx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Election retrieves an election by id. It returns ErrNotFound if no
// election was created with that id.
func (s *Storage) Election(id uint64) (*types.Election, error) {
	e := &types.Election{}
	if err := s.getArtifact(electionPrefix, uint64Key(id), e); err != nil {
		return nil, err
	}
	return e, nil
}

// CountElections returns the number of elections created so far.
func (s *Storage) CountElections() (uint64, error) {
	return s.counter(electionCounterKey)
}

// Elections returns every stored election ordered by id.
func (s *Storage) Elections() ([]*types.Election, error) {
	var elections []*types.Election
	var decodeErr error
	rd := prefixeddb.NewPrefixedReader(s.db, electionPrefix)
	if err := rd.Iterate(nil, func(k, v []byte) bool {
		e := &types.Election{}
		if err := decodeArtifact(v, e); err != nil {
			decodeErr = fmt.Errorf("decode election %x: %w", k, err)
			return false
		}
		elections = append(elections, e)
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate elections: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	sort.Slice(elections, func(i, j int) bool { return elections[i].ID < elections[j].ID })
	return elections, nil
}
