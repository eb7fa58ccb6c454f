package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo/memdb"
	"github.com/vocdoni/blindvote/crypto/blindrsa"
	"github.com/vocdoni/blindvote/storage"
	"github.com/vocdoni/blindvote/tally"
	"github.com/vocdoni/blindvote/testutil"
	"github.com/vocdoni/blindvote/types"
)

var (
	creator = common.HexToAddress("0xc4ea70c4ea70c4ea70c4ea70c4ea70c4ea70c4ea")
	alice   = common.HexToAddress("0xa11ce")
	bob     = common.HexToAddress("0xb0b")
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestLedger(t *testing.T, opts Options) (*Ledger, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	opts.Clock = clock.Now
	stg := storage.New(memdb.New())
	t.Cleanup(stg.Close)
	return New(stg, &opts), clock
}

func duckParams(d time.Duration) *ElectionParams {
	key := testutil.AuthorityKey()
	n, e := key.Public().Bytes()
	return &ElectionParams{
		Name:           testutil.DuckElectionName,
		PublicExponent: e,
		Modulus:        n,
		Duration:       d,
		Candidates:     testutil.DuckCandidates,
	}
}

// castVote blinds, signs and submits a vote from voter.
func castVote(c *qt.C, l *Ledger, id uint64, voter common.Address, vote string) (*types.VoteRecord, error) {
	key := testutil.AuthorityKey()
	ballot, err := blindrsa.GenerateBallot(vote, key.Public(), nil)
	c.Assert(err, qt.IsNil)
	sig, err := blindrsa.Sign(key, ballot.Blinded())
	c.Assert(err, qt.IsNil)
	sub, err := ballot.Submission(sig)
	c.Assert(err, qt.IsNil)
	return l.SubmitVote(id, voter, sub)
}

func TestElectionDuration(t *testing.T) {
	c := qt.New(t)
	l, _ := newTestLedger(t, Options{})

	for _, tc := range []struct {
		seconds int
		err     error
	}{
		{3599, ErrDurationTooShort},
		{3600, nil},
		{345600, nil},
		{345660, ErrDurationTooLong},
	} {
		_, err := l.CreateElection(creator, duckParams(time.Duration(tc.seconds)*time.Second))
		if tc.err == nil {
			c.Assert(err, qt.IsNil, qt.Commentf("duration %d", tc.seconds))
			continue
		}
		c.Assert(err, qt.ErrorIs, tc.err, qt.Commentf("duration %d", tc.seconds))
		c.Assert(err, qt.ErrorIs, ErrDurationOutOfRange)
	}
}

func TestElectionValidation(t *testing.T) {
	c := qt.New(t)
	l, _ := newTestLedger(t, Options{})

	for name, mutate := range map[string]func(p *ElectionParams){
		"empty name":       func(p *ElectionParams) { p.Name = "" },
		"no candidates":    func(p *ElectionParams) { p.Candidates = nil },
		"long candidate":   func(p *ElectionParams) { p.Candidates = []string{"Launchpad McQuack, the 33 byte duck"} },
		"repeated":         func(p *ElectionParams) { p.Candidates = []string{"Psyduck", "Psyduck"} },
		"small modulus":    func(p *ElectionParams) { p.Modulus = p.Modulus[:64] },
		"even exponent":    func(p *ElectionParams) { p.PublicExponent = types.HexBytes{0x02} },
		"missing exponent": func(p *ElectionParams) { p.PublicExponent = nil },
	} {
		p := duckParams(2 * time.Hour)
		mutate(p)
		_, err := l.CreateElection(creator, p)
		c.Assert(err, qt.ErrorIs, ErrInvalidElection, qt.Commentf("%s", name))
	}
	all, err := l.Elections()
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.HasLen, 0)
}

func TestCreateElection(t *testing.T) {
	c := qt.New(t)
	l, clock := newTestLedger(t, Options{})

	events, cancel := l.Subscribe(4)
	defer cancel()

	for i := 0; i < 3; i++ {
		e, err := l.CreateElection(creator, duckParams(time.Hour))
		c.Assert(err, qt.IsNil)
		c.Assert(e.ID, qt.Equals, uint64(i))
	}

	e, err := l.Election(2)
	c.Assert(err, qt.IsNil)
	c.Assert(e.Name, qt.Equals, testutil.DuckElectionName)
	c.Assert(e.Creator, qt.Equals, creator)
	c.Assert(e.StartTime.Unix(), qt.Equals, clock.Now().Unix())
	c.Assert(e.Candidates, qt.DeepEquals, testutil.DuckCandidates)

	pub, err := l.PublicKey(2)
	c.Assert(err, qt.IsNil)
	c.Assert(pub.Equal(testutil.AuthorityKey().Public()), qt.IsTrue)

	_, err = l.Election(3)
	c.Assert(err, qt.ErrorIs, ErrElectionNotFound)

	ev := <-events
	c.Assert(ev.Type, qt.Equals, EventNewElection)
	c.Assert(ev.ElectionID, qt.Equals, uint64(0))
	c.Assert(ev.Creator, qt.Equals, creator)
	c.Assert(ev.NameHash, qt.DeepEquals, e.NameHash())
	c.Assert(ev.ID.String(), qt.Not(qt.Equals), "")
}

func TestStartTimeInThePast(t *testing.T) {
	c := qt.New(t)
	l, clock := newTestLedger(t, Options{})

	// started an hour ago, closes in 90 seconds
	p := duckParams(time.Hour)
	p.StartTime = clock.Now().Add(-time.Hour + 90*time.Second)
	e, err := l.CreateElection(creator, p)
	c.Assert(err, qt.IsNil)

	closed, err := l.Closed(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(closed, qt.IsFalse)

	clock.Advance(89 * time.Second)
	closed, _ = l.Closed(e.ID)
	c.Assert(closed, qt.IsFalse)
	clock.Advance(time.Second)
	closed, _ = l.Closed(e.ID)
	c.Assert(closed, qt.IsTrue)
}

func TestSubmitVote(t *testing.T) {
	c := qt.New(t)
	l, _ := newTestLedger(t, Options{})
	e, err := l.CreateElection(creator, duckParams(time.Hour))
	c.Assert(err, qt.IsNil)

	events, cancel := l.Subscribe(0)
	defer cancel()

	vr, err := castVote(c, l, e.ID, alice, "Donald Duck")
	c.Assert(err, qt.IsNil)
	c.Assert(vr.Vote, qt.Equals, "Donald Duck")
	c.Assert(vr.Index, qt.Equals, uint64(0))
	c.Assert(vr.Voter, qt.Equals, alice)

	ev := <-events
	c.Assert(ev.Type, qt.Equals, EventNewVote)
	c.Assert(ev.Voter, qt.Equals, alice)
	c.Assert(ev.Hash, qt.Equals, vr.Hash)
	c.Assert(ev.Vote, qt.Equals, "Donald Duck")

	// crafted messages are recorded by default
	vr, err = castVote(c, l, e.ID, alice, "I vote for Kodos")
	c.Assert(err, qt.IsNil)
	c.Assert(vr.Index, qt.Equals, uint64(1))

	votes, err := l.Votes(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(votes, qt.HasLen, 2)

	_, err = castVote(c, l, 42, alice, "Donald Duck")
	c.Assert(err, qt.ErrorIs, ErrElectionNotFound)
	_, err = l.SubmitVote(e.ID, alice, &types.Submission{})
	c.Assert(err, qt.ErrorIs, ErrInvalidSubmission)

	// a zero mask is never invertible, so it cannot come from a ballot
	_, err = l.SubmitVote(e.ID, alice, &types.Submission{
		BlindSignature: types.HexBytes{0x01},
		InvMask:        types.HexBytes{0x01},
	})
	c.Assert(err, qt.ErrorIs, ErrInvalidSubmission)
}

func TestSubmitInvalidHash(t *testing.T) {
	c := qt.New(t)
	l, _ := newTestLedger(t, Options{})
	e, err := l.CreateElection(creator, duckParams(time.Hour))
	c.Assert(err, qt.IsNil)

	key := testutil.AuthorityKey()
	ballot, err := blindrsa.GenerateBallot("Daffy Duck", key.Public(), nil)
	c.Assert(err, qt.IsNil)
	sig, err := blindrsa.Sign(key, ballot.Blinded())
	c.Assert(err, qt.IsNil)
	// the mask sent in place of its inverse
	sub, err := types.NewSubmission(sig, ballot.Mask, ballot.Mask)
	c.Assert(err, qt.IsNil)

	_, err = l.SubmitVote(e.ID, bob, sub)
	c.Assert(err, qt.ErrorIs, ErrInvalidHash)
	c.Assert(err, qt.ErrorIs, blindrsa.ErrHashMismatch)

	votes, err := l.Votes(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(votes, qt.HasLen, 0)
}

func TestVoteAfterClose(t *testing.T) {
	c := qt.New(t)
	l, clock := newTestLedger(t, Options{})
	e, err := l.CreateElection(creator, duckParams(time.Hour))
	c.Assert(err, qt.IsNil)

	clock.Advance(time.Hour)
	_, err = castVote(c, l, e.ID, alice, "Psyduck")
	c.Assert(err, qt.ErrorIs, ErrElectionClosed)
}

func TestComputeWinner(t *testing.T) {
	c := qt.New(t)
	l, clock := newTestLedger(t, Options{})
	e, err := l.CreateElection(creator, duckParams(time.Hour))
	c.Assert(err, qt.IsNil)

	for _, v := range []string{"Donald Duck", "Scrooge McDuck", "Donald Duck"} {
		_, err := castVote(c, l, e.ID, alice, v)
		c.Assert(err, qt.IsNil)
	}

	_, err = l.ComputeWinner(e.ID)
	c.Assert(err, qt.ErrorIs, ErrElectionNotClosed)
	_, err = l.Winner(e.ID)
	c.Assert(err, qt.ErrorIs, ErrWinnerNotComputed)

	events, cancel := l.Subscribe(1)
	defer cancel()

	clock.Advance(2 * time.Hour)
	w, err := l.ComputeWinner(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(w.Name, qt.Equals, "Donald Duck")
	c.Assert(w.Draw, qt.IsFalse)
	c.Assert(w.Count, qt.Equals, 2)
	c.Assert(w.TotalVotes, qt.Equals, 3)

	ev := <-events
	c.Assert(ev.Type, qt.Equals, EventWinnerComputed)
	c.Assert(ev.Winner.Name, qt.Equals, "Donald Duck")

	again, err := l.ComputeWinner(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(again.Name, qt.Equals, w.Name)

	stored, err := l.Winner(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.Name, qt.Equals, "Donald Duck")
}

func TestComputeWinnerDraw(t *testing.T) {
	c := qt.New(t)
	l, clock := newTestLedger(t, Options{})
	e, err := l.CreateElection(creator, duckParams(time.Hour))
	c.Assert(err, qt.IsNil)

	for _, v := range []string{"Psyduck", "Daffy Duck"} {
		_, err := castVote(c, l, e.ID, bob, v)
		c.Assert(err, qt.IsNil)
	}
	clock.Advance(time.Hour)
	w, err := l.ComputeWinner(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(w.Name, qt.Equals, tally.Draw)
	c.Assert(w.Draw, qt.IsTrue)

	// an election without votes is a draw too
	e, err = l.CreateElection(creator, duckParams(time.Hour))
	c.Assert(err, qt.IsNil)
	clock.Advance(time.Hour)
	w, err = l.ComputeWinner(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(w.Name, qt.Equals, tally.Draw)
	c.Assert(w.TotalVotes, qt.Equals, 0)
}

func TestPolicies(t *testing.T) {
	c := qt.New(t)
	l, _ := newTestLedger(t, Options{OneVotePerIdentity: true, StrictCandidates: true})
	e, err := l.CreateElection(creator, duckParams(time.Hour))
	c.Assert(err, qt.IsNil)

	_, err = castVote(c, l, e.ID, alice, "I vote for Kodos")
	c.Assert(err, qt.ErrorIs, ErrUnknownCandidate)

	_, err = castVote(c, l, e.ID, alice, "Psyduck")
	c.Assert(err, qt.IsNil)
	_, err = castVote(c, l, e.ID, alice, "Psyduck")
	c.Assert(err, qt.ErrorIs, ErrAlreadyVoted)
	_, err = castVote(c, l, e.ID, bob, "Psyduck")
	c.Assert(err, qt.IsNil)

	votes, err := l.Votes(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(votes, qt.HasLen, 2)
}

func TestConcurrentVotes(t *testing.T) {
	c := qt.New(t)
	l, _ := newTestLedger(t, Options{})
	e, err := l.CreateElection(creator, duckParams(time.Hour))
	c.Assert(err, qt.IsNil)

	key := testutil.AuthorityKey()
	subs := make([]*types.Submission, 10)
	for i := range subs {
		ballot, err := blindrsa.GenerateRandomBallot(testutil.DuckCandidates, key.Public(), nil)
		c.Assert(err, qt.IsNil)
		sig, err := blindrsa.Sign(key, ballot.Blinded())
		c.Assert(err, qt.IsNil)
		subs[i], err = ballot.Submission(sig)
		c.Assert(err, qt.IsNil)
	}

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub *types.Submission) {
			defer wg.Done()
			if _, err := l.SubmitVote(e.ID, alice, sub); err != nil {
				t.Error(err)
			}
		}(sub)
	}
	wg.Wait()

	votes, err := l.Votes(e.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(votes, qt.HasLen, 10)
	for i, v := range votes {
		c.Assert(v.Index, qt.Equals, uint64(i))
	}
}

func TestUnsubscribe(t *testing.T) {
	c := qt.New(t)
	l, _ := newTestLedger(t, Options{})

	events, cancel := l.Subscribe(1)
	cancel()
	cancel()
	_, ok := <-events
	c.Assert(ok, qt.IsFalse)

	// publishing without subscribers or with a full one never blocks
	full, cancelFull := l.Subscribe(1)
	defer cancelFull()
	for i := 0; i < 3; i++ {
		_, err := l.CreateElection(creator, duckParams(time.Hour))
		c.Assert(err, qt.IsNil)
	}
	c.Assert(len(full), qt.Equals, 1)
}

func TestUnknownElectionLeavesNoLock(t *testing.T) {
	c := qt.New(t)
	l, _ := newTestLedger(t, Options{})

	key := testutil.AuthorityKey()
	ballot, err := blindrsa.GenerateBallot("Donald Duck", key.Public(), nil)
	c.Assert(err, qt.IsNil)
	sig, err := blindrsa.Sign(key, ballot.Blinded())
	c.Assert(err, qt.IsNil)
	sub, err := ballot.Submission(sig)
	c.Assert(err, qt.IsNil)

	for id := uint64(0); id < 1000; id++ {
		_, err := l.SubmitVote(id, alice, sub)
		c.Assert(err, qt.ErrorIs, ErrElectionNotFound)
		_, err = l.ComputeWinner(id)
		c.Assert(err, qt.ErrorIs, ErrElectionNotFound)
	}
	c.Assert(countLocks(l), qt.Equals, 0)

	e, err := l.CreateElection(creator, duckParams(time.Hour))
	c.Assert(err, qt.IsNil)
	_, err = l.SubmitVote(e.ID, alice, sub)
	c.Assert(err, qt.IsNil)
	c.Assert(countLocks(l), qt.Equals, 1)
}

func countLocks(l *Ledger) int {
	n := 0
	l.locks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
