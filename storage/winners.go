package storage

import (
	"fmt"

	"github.com/vocdoni/blindvote/types"
)

// SetWinner stores the outcome of an election, replacing any previous one.
func (s *Storage) SetWinner(w *types.Winner) error {
	if w == nil {
		return fmt.Errorf("nil winner")
	}
	wTx := s.db.WriteTx()
	defer wTx.Discard()
	if err := setArtifact(wTx, winnerPrefix, uint64Key(w.ElectionID), w); err != nil {
		return fmt.Errorf("set winner: %w", err)
	}
	return wTx.Commit()
}

// Winner returns the stored outcome of an election, or ErrNotFound if it was
// not computed yet.
func (s *Storage) Winner(electionID uint64) (*types.Winner, error) {
	w := &types.Winner{}
	if err := s.getArtifact(winnerPrefix, uint64Key(electionID), w); err != nil {
		return nil, err
	}
	return w, nil
}
