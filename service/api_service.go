package service

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/vocdoni/blindvote/api"
	"github.com/vocdoni/blindvote/crypto/blindrsa"
	"github.com/vocdoni/blindvote/ledger"
	"go.vocdoni.io/dvote/log"
)

// shutdownTimeout bounds the graceful shutdown of the API server.
const shutdownTimeout = 5 * time.Second

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	ledger    *ledger.Ledger
	authority *blindrsa.PrivateKey
	api       *api.API
	mu        sync.Mutex
	cancel    context.CancelFunc
	host      string
	port      int
}

// NewAPI creates a new APIService instance. The authority key is optional.
func NewAPI(l *ledger.Ledger, authority *blindrsa.PrivateKey, host string, port int) *APIService {
	return &APIService{
		ledger:    l,
		authority: authority,
		host:      host,
		port:      port,
	}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start. The server is stopped when ctx
// is done.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		return fmt.Errorf("service already running")
	}

	var err error
	as.api, err = api.New(&api.APIConfig{
		Host:      as.host,
		Port:      as.port,
		Ledger:    as.ledger,
		Authority: as.authority,
	})
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	as.cancel = cancel
	srv := as.api
	go func() {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		if err := srv.Stop(sctx); err != nil {
			log.Warnw("failed to stop API server", "error", err.Error())
		}
	}()
	return nil
}

// Stop halts the API server.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		as.cancel()
		as.cancel = nil
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		if err := as.api.Stop(sctx); err != nil {
			log.Warnw("failed to stop API server", "error", err.Error())
		}
	}
}

// HostPort returns the host and port of the API server. Once started, the
// port is the one actually bound.
func (as *APIService) HostPort() (string, int) {
	as.mu.Lock()
	defer as.mu.Unlock()
	if as.api != nil {
		if addr, ok := as.api.Addr().(*net.TCPAddr); ok {
			return as.host, addr.Port
		}
	}
	return as.host, as.port
}

// URL returns the base URL of the running API server, or an empty string.
func (as *APIService) URL() string {
	as.mu.Lock()
	defer as.mu.Unlock()
	if as.api == nil || as.cancel == nil {
		return ""
	}
	return as.api.URL()
}
