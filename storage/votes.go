package storage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/blindvote/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// AppendVote stores an accepted vote at the end of the election vote list and
// assigns its index. When unique is set the voter is registered for the
// election in the same transaction and ErrVoterExists is returned if it was
// already registered.
func (s *Storage) AppendVote(v *types.VoteRecord, unique bool) (*types.VoteRecord, error) {
	if v == nil {
		return nil, fmt.Errorf("nil vote")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	electionKey := uint64Key(v.ElectionID)
	voterKey := joinKey(electionKey, v.Voter.Bytes())
	if unique {
		voted, err := s.hasVoted(voterKey)
		if err != nil {
			return nil, err
		}
		if voted {
			return nil, ErrVoterExists
		}
	}
	counterKey := joinKey(voteCounterKey, electionKey)
	index, err := s.counter(counterKey)
	if err != nil {
		return nil, err
	}

	stored := *v
	stored.Index = index

	wTx := s.db.WriteTx()
	defer wTx.Discard()
	if err := setArtifact(wTx, votePrefix, joinKey(electionKey, uint64Key(index)), &stored); err != nil {
		return nil, fmt.Errorf("set vote: %w", err)
	}
	if unique {
		if err := prefixeddb.NewPrefixedWriteTx(wTx, voterPrefix).Set(voterKey, uint64Key(index)); err != nil {
			return nil, fmt.Errorf("set voter: %w", err)
		}
	}
	if err := setCounter(wTx, counterKey, index+1); err != nil {
		return nil, fmt.Errorf("set vote counter: %w", err)
	}
	if err := wTx.Commit(); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Votes returns the votes of an election in submission order. A stored vote
// that cannot be decoded fails the whole read.
func (s *Storage) Votes(electionID uint64) ([]*types.VoteRecord, error) {
	var votes []*types.VoteRecord
	var decodeErr error
	rd := prefixeddb.NewPrefixedReader(s.db, votePrefix)
	if err := rd.Iterate(uint64Key(electionID), func(k, v []byte) bool {
		vr := &types.VoteRecord{}
		if err := decodeArtifact(v, vr); err != nil {
			decodeErr = fmt.Errorf("decode vote %x of election %d: %w", k, electionID, err)
			return false
		}
		votes = append(votes, vr)
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate votes: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].Index < votes[j].Index })
	return votes, nil
}

// CountVotes returns the number of votes accepted for an election.
func (s *Storage) CountVotes(electionID uint64) (uint64, error) {
	return s.counter(joinKey(voteCounterKey, uint64Key(electionID)))
}

// HasVoted reports whether the voter was registered for the election by a
// unique AppendVote.
func (s *Storage) HasVoted(electionID uint64, voter common.Address) (bool, error) {
	return s.hasVoted(joinKey(uint64Key(electionID), voter.Bytes()))
}

func (s *Storage) hasVoted(voterKey []byte) (bool, error) {
	if _, err := prefixeddb.NewPrefixedReader(s.db, voterPrefix).Get(voterKey); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get voter: %w", err)
	}
	return true, nil
}
