package storage

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo/memdb"
	"github.com/vocdoni/blindvote/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

func testElection(name string) *types.Election {
	return &types.Election{
		Name:           name,
		Creator:        common.HexToAddress("0x01"),
		PublicExponent: types.HexBytes{0x01, 0x00, 0x01},
		Modulus:        types.HexBytes{0xc0, 0xff, 0xee},
		StartTime:      time.Unix(1700000000, 0),
		Duration:       2 * time.Hour,
		Candidates:     []string{"Donald Duck", "Psyduck"},
	}
}

func TestElections(t *testing.T) {
	c := qt.New(t)
	st := New(metadb.NewTest(t))

	_, err := st.Election(0)
	c.Assert(err, qt.ErrorIs, ErrNotFound)

	for i := 0; i < 3; i++ {
		id, err := st.NewElection(testElection(fmt.Sprintf("election %d", i)))
		c.Assert(err, qt.IsNil)
		c.Assert(id, qt.Equals, uint64(i))
	}

	e, err := st.Election(1)
	c.Assert(err, qt.IsNil)
	c.Assert(e.ID, qt.Equals, uint64(1))
	c.Assert(e.Name, qt.Equals, "election 1")
	c.Assert(e.StartTime.Equal(time.Unix(1700000000, 0)), qt.IsTrue)
	c.Assert(e.Duration, qt.Equals, 2*time.Hour)
	c.Assert(e.Modulus, qt.DeepEquals, types.HexBytes{0xc0, 0xff, 0xee})
	c.Assert(e.Candidates, qt.DeepEquals, []string{"Donald Duck", "Psyduck"})

	all, err := st.Elections()
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.HasLen, 3)
	for i, e := range all {
		c.Assert(e.ID, qt.Equals, uint64(i))
	}
	count, err := st.CountElections()
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, uint64(3))
}

func TestConcurrentElectionIDs(t *testing.T) {
	c := qt.New(t)
	st := New(memdb.New())

	var wg sync.WaitGroup
	ids := make(chan uint64, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := st.NewElection(testElection("concurrent"))
			if err != nil {
				t.Error(err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uint64]bool{}
	for id := range ids {
		c.Assert(seen[id], qt.IsFalse)
		seen[id] = true
	}
	c.Assert(seen, qt.HasLen, 20)
	for i := uint64(0); i < 20; i++ {
		c.Assert(seen[i], qt.IsTrue)
	}
}

func TestVotes(t *testing.T) {
	c := qt.New(t)
	st := New(metadb.NewTest(t))

	alice := common.HexToAddress("0xa11ce")
	bob := common.HexToAddress("0xb0b")

	for i, voter := range []common.Address{alice, bob, alice} {
		v, err := st.AppendVote(&types.VoteRecord{
			ElectionID: 7,
			Voter:      voter,
			Hash:       types.Word{31: byte(i)},
			Vote:       "Psyduck",
		}, false)
		c.Assert(err, qt.IsNil)
		c.Assert(v.Index, qt.Equals, uint64(i))
	}
	// votes of another election are kept apart
	_, err := st.AppendVote(&types.VoteRecord{ElectionID: 8, Voter: bob, Vote: "Donald Duck"}, false)
	c.Assert(err, qt.IsNil)

	votes, err := st.Votes(7)
	c.Assert(err, qt.IsNil)
	c.Assert(votes, qt.HasLen, 3)
	for i, v := range votes {
		c.Assert(v.Index, qt.Equals, uint64(i))
		c.Assert(v.ElectionID, qt.Equals, uint64(7))
		c.Assert(v.Hash, qt.Equals, types.Word{31: byte(i)})
	}
	c.Assert(votes[1].Voter, qt.Equals, bob)

	n, err := st.CountVotes(7)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, uint64(3))
	n, err = st.CountVotes(9)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, uint64(0))

	votes, err = st.Votes(9)
	c.Assert(err, qt.IsNil)
	c.Assert(votes, qt.HasLen, 0)

	// non unique votes do not register the voter
	voted, err := st.HasVoted(7, alice)
	c.Assert(err, qt.IsNil)
	c.Assert(voted, qt.IsFalse)
}

func TestUniqueVoter(t *testing.T) {
	c := qt.New(t)
	st := New(memdb.New())
	carol := common.HexToAddress("0xca401")

	_, err := st.AppendVote(&types.VoteRecord{ElectionID: 1, Voter: carol, Vote: "Daffy Duck"}, true)
	c.Assert(err, qt.IsNil)
	voted, err := st.HasVoted(1, carol)
	c.Assert(err, qt.IsNil)
	c.Assert(voted, qt.IsTrue)

	_, err = st.AppendVote(&types.VoteRecord{ElectionID: 1, Voter: carol, Vote: "Psyduck"}, true)
	c.Assert(err, qt.ErrorIs, ErrVoterExists)

	// the same voter can take part in another election
	_, err = st.AppendVote(&types.VoteRecord{ElectionID: 2, Voter: carol, Vote: "Psyduck"}, true)
	c.Assert(err, qt.IsNil)

	n, err := st.CountVotes(1)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, uint64(1))
}

func TestWinner(t *testing.T) {
	c := qt.New(t)
	st := New(metadb.NewTest(t))

	_, err := st.Winner(3)
	c.Assert(err, qt.ErrorIs, ErrNotFound)

	w := &types.Winner{ElectionID: 3, Name: "Draw", Draw: true, Count: 2, TotalVotes: 4, ComputedAt: time.Unix(1700003600, 0)}
	c.Assert(st.SetWinner(w), qt.IsNil)

	got, err := st.Winner(3)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Name, qt.Equals, "Draw")
	c.Assert(got.Draw, qt.IsTrue)
	c.Assert(got.Count, qt.Equals, 2)
	c.Assert(got.TotalVotes, qt.Equals, 4)
	c.Assert(got.ComputedAt.Equal(w.ComputedAt), qt.IsTrue)
}

func TestCorruptedRecords(t *testing.T) {
	c := qt.New(t)
	st := New(memdb.New())

	for i := 0; i < 2; i++ {
		_, err := st.AppendVote(&types.VoteRecord{ElectionID: 3, Voter: common.HexToAddress("0xb0b"), Vote: "Psyduck"}, false)
		c.Assert(err, qt.IsNil)
	}
	_, err := st.NewElection(testElection("ok"))
	c.Assert(err, qt.IsNil)

	wTx := st.db.WriteTx()
	c.Assert(setRaw(wTx, votePrefix, joinKey(uint64Key(3), uint64Key(1)), []byte{0xff}), qt.IsNil)
	c.Assert(setRaw(wTx, electionPrefix, uint64Key(0), []byte{0xff}), qt.IsNil)
	c.Assert(wTx.Commit(), qt.IsNil)

	// a record that cannot be decoded is an error, never a shorter list
	_, err = st.Votes(3)
	c.Assert(err, qt.ErrorMatches, "decode vote .*")
	_, err = st.Elections()
	c.Assert(err, qt.ErrorMatches, "decode election .*")
}

func setRaw(wTx db.WriteTx, prefix, key, value []byte) error {
	return prefixeddb.NewPrefixedWriteTx(wTx, prefix).Set(key, value)
}
