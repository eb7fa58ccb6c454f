package main

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/vocdoni/arbo/memdb"
	"github.com/vocdoni/blindvote/api"
	"github.com/vocdoni/blindvote/api/client"
	"github.com/vocdoni/blindvote/config"
	"github.com/vocdoni/blindvote/crypto/blindrsa"
	"github.com/vocdoni/blindvote/crypto/ethereum"
	"github.com/vocdoni/blindvote/ledger"
	"github.com/vocdoni/blindvote/service"
	"github.com/vocdoni/blindvote/storage"
	"github.com/vocdoni/blindvote/tally"
	"github.com/vocdoni/blindvote/testutil"
	"github.com/vocdoni/blindvote/util"
	"go.vocdoni.io/dvote/log"
)

func main() {
	host := flag.String("host", "", "API of a running node with an authority key, an in-process node is started if empty")
	authorityKey := flag.String("authorityKey", "", "authority key file for the in-process node, a fixed test key if empty")
	voters := flag.Int("voters", 10, "number of voters")
	closeIn := flag.Duration("closeIn", 10*time.Second, "time until the election closes")
	logLevel := flag.String("logLevel", "debug", "log level")
	flag.Parse()
	log.Init(*logLevel, "stdout", nil)

	if *closeIn <= 0 || *closeIn > time.Hour {
		log.Fatalf("closeIn must be in (0, 1h], got %s", *closeIn)
	}

	url := *host
	if url == "" {
		authority := testutil.AuthorityKey()
		if *authorityKey != "" {
			var err error
			if authority, err = config.LoadAuthorityKey(*authorityKey); err != nil {
				log.Fatal(err)
			}
		}
		stg := storage.New(memdb.New())
		defer stg.Close()
		srv := service.NewAPI(ledger.New(stg, nil), authority, "127.0.0.1", 0)
		if err := srv.Start(context.Background()); err != nil {
			log.Fatal(err)
		}
		defer srv.Stop()
		url = srv.URL()
	}

	cli, err := client.New(url)
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cli, *voters, *closeIn); err != nil {
		log.Errorw(err, "e2e test failed")
		os.Exit(1)
	}
	log.Infow("e2e test passed")
}

func run(cli *client.HTTPclient, voters int, closeIn time.Duration) error {
	auth, err := cli.Authority()
	if err != nil {
		return fmt.Errorf("authority: %w", err)
	}
	pub, err := blindrsa.NewPublicKey(auth.Modulus, auth.PublicExponent)
	if err != nil {
		return err
	}
	log.Infow("authority public key", "modulusBits", pub.N.BitLen(), "key", util.ShortHex(auth.Modulus.String(), 8))

	creator := ethereum.NewSignKeys()
	if err := creator.Generate(); err != nil {
		return err
	}
	// started an hour ago minus closeIn, so it closes after closeIn
	start := time.Now().Add(-time.Hour + closeIn)
	election, err := cli.CreateElection(&api.CreateElectionRequest{
		Name:           testutil.DuckElectionName,
		PublicExponent: auth.PublicExponent,
		Modulus:        auth.Modulus,
		StartTime:      start.Unix(),
		Duration:       int64(time.Hour / time.Second),
		Candidates:     testutil.DuckCandidates,
	}, creator)
	if err != nil {
		return fmt.Errorf("create election: %w", err)
	}
	log.Infow("election created", "id", election.ID, "name", election.Name, "end", time.Unix(election.EndTime, 0))

	var chosen []string
	for i := 0; i < voters; i++ {
		voter := ethereum.NewSignKeys()
		if err := voter.Generate(); err != nil {
			return err
		}
		ballot, err := blindrsa.GenerateRandomBallot(election.Candidates, pub, nil)
		if err != nil {
			return err
		}
		sig, err := cli.SignBallot(&election.ID, ballot.BlindedValue)
		if err != nil {
			return fmt.Errorf("sign ballot %d: %w", i, err)
		}
		sub, err := ballot.Submission(sig)
		if err != nil {
			return err
		}
		record, err := cli.SubmitVote(election.ID, sub, voter)
		if err != nil {
			return fmt.Errorf("submit vote %d: %w", i, err)
		}
		if record.Vote != ballot.Vote || record.Hash != ballot.Hash {
			return fmt.Errorf("vote %d recorded as %q, want %q", i, record.Vote, ballot.Vote)
		}
		log.Infow("vote accepted", "index", record.Index, "voter", voter.AddressString(), "vote", record.Vote)
		chosen = append(chosen, ballot.Vote)
	}

	// wait for the election to close
	time.Sleep(time.Until(time.Unix(election.EndTime, 0)))
	for {
		info, err := cli.Election(election.ID)
		if err != nil {
			return err
		}
		if info.Closed {
			break
		}
		time.Sleep(time.Second)
	}

	winner, err := cli.ComputeWinner(election.ID)
	if err != nil {
		return fmt.Errorf("compute winner: %w", err)
	}
	want := tally.Resolve(chosen)
	log.Infow("winner computed", "winner", winner.Name, "count", winner.Count, "votes", winner.TotalVotes, "counts", tally.Counts(chosen))
	if winner.Name != want.Name() || winner.TotalVotes != len(chosen) {
		return fmt.Errorf("winner %q with %d votes, want %q with %d", winner.Name, winner.TotalVotes, want.Name(), len(chosen))
	}
	fmt.Printf("The greatest duck is: %s\n", winner.Name)
	return nil
}
