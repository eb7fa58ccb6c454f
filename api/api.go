package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vocdoni/blindvote/crypto/blindrsa"
	"github.com/vocdoni/blindvote/ledger"
	"go.vocdoni.io/dvote/log"
)

// APIConfig type represents the configuration for the API HTTP server.
// It includes the host, port, the ledger to serve and optionally the
// authority key used to blind sign ballots.
type APIConfig struct {
	Host   string
	Port   int
	Ledger *ledger.Ledger
	// Authority enables the signing endpoints when set.
	Authority *blindrsa.PrivateKey
}

// API type represents the API HTTP server of the ledger and, optionally, of
// the signing authority.
type API struct {
	router    *chi.Mux
	ledger    *ledger.Ledger
	authority *blindrsa.PrivateKey
	server    *http.Server
	addr      net.Addr
}

// New creates a new API instance with the given configuration and starts
// serving it. Port zero picks a free port, see Addr.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Ledger == nil {
		return nil, fmt.Errorf("missing ledger instance")
	}
	if conf.Authority != nil {
		if err := conf.Authority.Validate(); err != nil {
			return nil, fmt.Errorf("invalid authority key: %w", err)
		}
	}
	a := &API{
		ledger:    conf.Ledger,
		authority: conf.Authority,
	}

	// Initialize router
	a.initRouter()

	ln, err := net.Listen("tcp", net.JoinHostPort(conf.Host, fmt.Sprint(conf.Port)))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	a.addr = ln.Addr()
	a.server = &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infow("starting API server", "addr", a.addr.String(), "authority", a.authority != nil)
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw(err, "API server stopped")
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// Addr returns the address the server listens on.
func (a *API) Addr() net.Addr {
	return a.addr
}

// URL returns the base http URL of the server.
func (a *API) URL() string {
	return "http://" + a.addr.String()
}

// Stop gracefully shuts down the server.
func (a *API) Stop(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	// elections
	log.Infow("register handler", "endpoint", ElectionsEndpoint, "method", "POST")
	a.router.Post(ElectionsEndpoint, a.newElection)
	log.Infow("register handler", "endpoint", ElectionsEndpoint, "method", "GET")
	a.router.Get(ElectionsEndpoint, a.elections)
	log.Infow("register handler", "endpoint", ElectionEndpoint, "method", "GET")
	a.router.Get(ElectionEndpoint, a.election)
	// votes
	log.Infow("register handler", "endpoint", ElectionVotesEndpoint, "method", "POST")
	a.router.Post(ElectionVotesEndpoint, a.newVote)
	log.Infow("register handler", "endpoint", ElectionVotesEndpoint, "method", "GET")
	a.router.Get(ElectionVotesEndpoint, a.votes)
	// tally
	log.Infow("register handler", "endpoint", ElectionTallyEndpoint, "method", "POST")
	a.router.Post(ElectionTallyEndpoint, a.computeWinner)
	log.Infow("register handler", "endpoint", ElectionWinnerEndpoint, "method", "GET")
	a.router.Get(ElectionWinnerEndpoint, a.winner)
	// authority
	log.Infow("register handler", "endpoint", AuthorityEndpoint, "method", "GET")
	a.router.Get(AuthorityEndpoint, a.authorityInfo)
	log.Infow("register handler", "endpoint", SignEndpoint, "method", "POST")
	a.router.Post(SignEndpoint, a.sign)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	// Register the API handlers
	a.registerHandlers()
}
