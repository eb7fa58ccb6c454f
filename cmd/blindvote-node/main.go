package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/vocdoni/arbo/memdb"
	"github.com/vocdoni/blindvote/config"
	"github.com/vocdoni/blindvote/crypto/blindrsa"
	"github.com/vocdoni/blindvote/ledger"
	"github.com/vocdoni/blindvote/service"
	"github.com/vocdoni/blindvote/storage"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
	"go.vocdoni.io/dvote/log"
)

func main() {
	cfg := config.Default()
	flag.StringVar(&cfg.Host, "host", cfg.Host, "API host to listen on")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "API port to listen on")
	flag.StringVar(&cfg.Datadir, "datadir", cfg.Datadir, "data directory for the pebble database")
	flag.StringVar(&cfg.DBType, "dbType", cfg.DBType, fmt.Sprintf("database type (%s or %s)", db.TypePebble, config.DBTypeMemory))
	flag.StringVar(&cfg.LogLevel, "logLevel", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogOutput, "logOutput", cfg.LogOutput, "log output (stdout, stderr or a file path)")
	flag.StringVar(&cfg.AuthorityKeyFile, "authorityKey", cfg.AuthorityKeyFile, "authority RSA key file, enables ballot signing")
	flag.DurationVar(&cfg.TallyInterval, "tallyInterval", cfg.TallyInterval, "interval to tally closed elections, 0 disables it")
	flag.BoolVar(&cfg.OneVotePerIdentity, "oneVotePerIdentity", cfg.OneVotePerIdentity, "reject a second vote from the same identity")
	flag.BoolVar(&cfg.StrictCandidates, "strictCandidates", cfg.StrictCandidates, "reject votes that are not one of the candidates")
	flag.Parse()
	if err := loadEnv(flag.CommandLine); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel, cfg.LogOutput, nil)

	// load the authority key, if any
	var authority *blindrsa.PrivateKey
	if cfg.AuthorityKeyFile != "" {
		var err error
		authority, err = config.LoadAuthorityKey(cfg.AuthorityKeyFile)
		if err != nil {
			log.Fatal(err)
		}
		log.Infow("authority key loaded", "bits", authority.N.BitLen())
	}

	// open the storage
	var database db.Database
	switch cfg.DBType {
	case config.DBTypeMemory:
		database = memdb.New()
	default:
		var err error
		database, err = metadb.New(cfg.DBType, filepath.Join(cfg.Datadir, "db"))
		if err != nil {
			log.Fatal(err)
		}
	}
	stg := storage.New(database)
	defer stg.Close()

	l := ledger.New(stg, &ledger.Options{
		OneVotePerIdentity: cfg.OneVotePerIdentity,
		StrictCandidates:   cfg.StrictCandidates,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// start API service
	api := service.NewAPI(l, authority, cfg.Host, cfg.Port)
	if err := api.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer api.Stop()

	// tally closed elections
	if cfg.TallyInterval > 0 {
		tm := service.NewTallyMonitor(l, cfg.TallyInterval)
		if err := tm.Start(ctx); err != nil {
			log.Fatal(err)
		}
		defer tm.Stop()
	}

	// log ledger notifications
	events, unsubscribe := l.Subscribe(ledger.DefaultEventBuffer)
	defer unsubscribe()
	go func() {
		for ev := range events {
			log.Infow("ledger event", "type", string(ev.Type), "id", ev.ID.String(), "electionID", ev.ElectionID)
		}
	}()

	host, port := api.HostPort()
	opts := l.Options()
	log.Infow("blindvote node running",
		"host", host,
		"port", port,
		"dbType", cfg.DBType,
		"authority", authority != nil,
		"oneVotePerIdentity", opts.OneVotePerIdentity,
		"strictCandidates", opts.StrictCandidates)
	<-ctx.Done()
	log.Infow("shutting down")
}

// loadEnv sets every flag not given on the command line from its
// BLINDVOTE_<NAME> environment variable, if present.
func loadEnv(fs *flag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *flag.Flag) {
		if err != nil || f.Changed {
			return
		}
		name := config.EnvPrefix + strings.ToUpper(f.Name)
		if v, ok := os.LookupEnv(name); ok {
			if serr := fs.Set(f.Name, v); serr != nil {
				err = fmt.Errorf("invalid %s: %w", name, serr)
			}
		}
	})
	return err
}
