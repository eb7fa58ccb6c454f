// Package ledger is the append-only store the voting protocol runs against. It
// creates elections, accepts blind-signed submissions while an election is
// open, recovering and checking the plaintext vote, and computes the winner
// once the election is closed. Every state change is announced to
// subscribers.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/blindvote/crypto/blindrsa"
	"github.com/vocdoni/blindvote/storage"
	"github.com/vocdoni/blindvote/tally"
	"github.com/vocdoni/blindvote/types"
	"go.vocdoni.io/dvote/log"
)

// Options tune the ledger policies. The zero value accepts any number of
// votes per identity and records votes that are not candidates.
type Options struct {
	// OneVotePerIdentity rejects a second vote from the same submitter in the
	// same election.
	OneVotePerIdentity bool
	// StrictCandidates rejects recovered votes that are not one of the
	// election candidates.
	StrictCandidates bool
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// Ledger implements the election ledger on top of storage.
type Ledger struct {
	stg    *storage.Storage
	opts   Options
	locks  sync.Map // election id -> *sync.Mutex
	events *broker
}

// New returns a ledger backed by stg. A nil opts uses the defaults.
func New(stg *storage.Storage, opts *Options) *Ledger {
	l := &Ledger{stg: stg, events: newBroker()}
	if opts != nil {
		l.opts = *opts
	}
	if l.opts.Clock == nil {
		l.opts.Clock = time.Now
	}
	return l
}

// Now returns the ledger current time.
func (l *Ledger) Now() time.Time {
	return l.opts.Clock()
}

// Options returns the ledger policies.
func (l *Ledger) Options() Options {
	return l.opts
}

// Subscribe returns a channel receiving every event published from now on and
// a function to cancel the subscription, which closes the channel.
func (l *Ledger) Subscribe(buffer int) (<-chan *Event, func()) {
	return l.events.subscribe(buffer)
}

// lockElection takes the lock of an existing election and returns the
// election read under it. Locks are only created for stored elections.
func (l *Ledger) lockElection(id uint64) (*types.Election, func(), error) {
	if _, err := l.Election(id); err != nil {
		return nil, nil, err
	}
	v, _ := l.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	e, err := l.Election(id)
	if err != nil {
		mu.Unlock()
		return nil, nil, err
	}
	return e, mu.Unlock, nil
}

// CreateElection validates the parameters and stores a new election created
// by creator. Ids are assigned sequentially from zero.
func (l *Ledger) CreateElection(creator common.Address, p *ElectionParams) (*types.Election, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := p.StartTime
	if start.IsZero() {
		start = l.Now()
	}
	e := &types.Election{
		Name:           p.Name,
		Creator:        creator,
		PublicExponent: types.Pack(p.PublicExponent, types.WordSize),
		Modulus:        types.Pack(p.Modulus, types.WordSize),
		StartTime:      time.Unix(start.Unix(), 0),
		Duration:       p.Duration,
		Candidates:     append([]string(nil), p.Candidates...),
	}
	id, err := l.stg.NewElection(e)
	if err != nil {
		return nil, fmt.Errorf("could not store election: %w", err)
	}
	log.Infow("new election",
		"id", id,
		"name", e.Name,
		"creator", creator.Hex(),
		"start", e.StartTime.Unix(),
		"end", e.End().Unix(),
		"candidates", len(e.Candidates))
	l.events.publish(&Event{
		Type:       EventNewElection,
		ElectionID: id,
		Time:       l.Now(),
		Creator:    creator,
		NameHash:   e.NameHash(),
	})
	return e, nil
}

// Election returns an election by id.
func (l *Ledger) Election(id uint64) (*types.Election, error) {
	e, err := l.stg.Election(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrElectionNotFound, id)
		}
		return nil, err
	}
	return e, nil
}

// Elections returns every election ordered by id.
func (l *Ledger) Elections() ([]*types.Election, error) {
	return l.stg.Elections()
}

// PublicKey returns the authority public key of an election.
func (l *Ledger) PublicKey(id uint64) (*blindrsa.PublicKey, error) {
	e, err := l.Election(id)
	if err != nil {
		return nil, err
	}
	return blindrsa.NewPublicKey(e.Modulus, e.PublicExponent)
}

// Closed reports whether the election end was reached.
func (l *Ledger) Closed(id uint64) (bool, error) {
	e, err := l.Election(id)
	if err != nil {
		return false, err
	}
	return e.Closed(l.Now()), nil
}

// Votes returns the accepted votes of an election in submission order.
func (l *Ledger) Votes(id uint64) ([]*types.VoteRecord, error) {
	if _, err := l.Election(id); err != nil {
		return nil, err
	}
	return l.stg.Votes(id)
}

// SubmitVote verifies a submission against the election public key and, if
// it recovers a vote whose hash matches, appends it to the election votes.
// The submitter is the identity recovered from the request signature.
func (l *Ledger) SubmitVote(id uint64, submitter common.Address, sub *types.Submission) (*types.VoteRecord, error) {
	if sub == nil || len(sub.BlindSignature) == 0 || sub.Mask.IsZero() || len(sub.InvMask) == 0 {
		return nil, ErrInvalidSubmission
	}
	e, unlock, err := l.lockElection(id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if e.Closed(l.Now()) {
		log.Debugw("vote rejected", "electionID", id, "voter", submitter.Hex(), "reason", "closed")
		return nil, ErrElectionClosed
	}
	pub, err := blindrsa.NewPublicKey(e.Modulus, e.PublicExponent)
	if err != nil {
		return nil, fmt.Errorf("election %d has a bad public key: %w", id, err)
	}
	rec, err := blindrsa.VerifySubmission(pub, sub)
	if err != nil {
		log.Debugw("vote rejected", "electionID", id, "voter", submitter.Hex(), "error", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}
	if l.opts.StrictCandidates && !e.HasCandidate(rec.Vote) {
		log.Debugw("vote rejected", "electionID", id, "voter", submitter.Hex(), "reason", "unknown candidate")
		return nil, fmt.Errorf("%w: %q", ErrUnknownCandidate, rec.Vote)
	}
	vr, err := l.stg.AppendVote(&types.VoteRecord{
		ElectionID: id,
		Voter:      submitter,
		Hash:       rec.Hash,
		Vote:       rec.Vote,
	}, l.opts.OneVotePerIdentity)
	if err != nil {
		if errors.Is(err, storage.ErrVoterExists) {
			log.Debugw("vote rejected", "electionID", id, "voter", submitter.Hex(), "reason", "already voted")
			return nil, ErrAlreadyVoted
		}
		return nil, fmt.Errorf("could not store vote: %w", err)
	}
	log.Debugw("vote accepted", "electionID", id, "index", vr.Index, "voter", submitter.Hex(), "hash", vr.Hash.String())
	l.events.publish(&Event{
		Type:       EventNewVote,
		ElectionID: id,
		Time:       l.Now(),
		Voter:      submitter,
		Hash:       vr.Hash,
		Vote:       vr.Vote,
	})
	return vr, nil
}

// ComputeWinner resolves the winner of a closed election and stores it.
// Calling it again recomputes and stores the same outcome.
func (l *Ledger) ComputeWinner(id uint64) (*types.Winner, error) {
	e, unlock, err := l.lockElection(id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := l.Now()
	if !e.Closed(now) {
		return nil, ErrElectionNotClosed
	}
	records, err := l.stg.Votes(id)
	if err != nil {
		return nil, err
	}
	votes := make([]string, 0, len(records))
	for _, r := range records {
		votes = append(votes, r.Vote)
	}
	outcome := tally.Resolve(votes)
	w := &types.Winner{
		ElectionID: id,
		Name:       outcome.Name(),
		Draw:       outcome.Tie,
		Count:      outcome.Count,
		TotalVotes: len(votes),
		ComputedAt: time.Unix(now.Unix(), 0),
	}
	if err := l.stg.SetWinner(w); err != nil {
		return nil, fmt.Errorf("could not store winner: %w", err)
	}
	log.Infow("winner computed", "electionID", id, "winner", w.Name, "draw", w.Draw, "count", w.Count, "votes", w.TotalVotes)
	l.events.publish(&Event{
		Type:       EventWinnerComputed,
		ElectionID: id,
		Time:       now,
		Winner:     w,
	})
	return w, nil
}

// Winner returns the last computed winner of an election.
func (l *Ledger) Winner(id uint64) (*types.Winner, error) {
	if _, err := l.Election(id); err != nil {
		return nil, err
	}
	w, err := l.stg.Winner(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrWinnerNotComputed
		}
		return nil, err
	}
	return w, nil
}
