package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vocdoni/blindvote/ledger"
	"go.vocdoni.io/dvote/log"
)

// TallyMonitor represents a service that watches the ledger and computes the
// winner of every election that closed without one.
type TallyMonitor struct {
	ledger   *ledger.Ledger
	interval time.Duration
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewTallyMonitor creates a new TallyMonitor service polling every interval.
func NewTallyMonitor(l *ledger.Ledger, interval time.Duration) *TallyMonitor {
	return &TallyMonitor{
		ledger:   l,
		interval: interval,
	}
}

// Start begins monitoring the elections. It returns an error if the service
// is already running.
func (tm *TallyMonitor) Start(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.cancel != nil {
		return fmt.Errorf("service already running")
	}
	if tm.interval <= 0 {
		return fmt.Errorf("invalid interval %s", tm.interval)
	}

	ctx, cancel := context.WithCancel(ctx)
	tm.cancel = cancel
	tm.done = make(chan struct{})
	go tm.monitorElections(ctx, tm.done)
	return nil
}

// Stop halts the monitoring service and waits for the running pass to end.
func (tm *TallyMonitor) Stop() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.cancel != nil {
		tm.cancel()
		<-tm.done
		tm.cancel = nil
	}
}

func (tm *TallyMonitor) monitorElections(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(tm.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := tm.TallyClosed(); n > 0 {
				log.Infow("closed elections tallied", "count", n)
			}
		}
	}
}

// TallyClosed computes the winner of every closed election without one and
// returns how many were computed.
func (tm *TallyMonitor) TallyClosed() int {
	elections, err := tm.ledger.Elections()
	if err != nil {
		log.Warnw("failed to list elections", "error", err.Error())
		return 0
	}
	now := tm.ledger.Now()
	computed := 0
	for _, e := range elections {
		if !e.Closed(now) {
			continue
		}
		if _, err := tm.ledger.Winner(e.ID); err == nil {
			continue
		} else if !errors.Is(err, ledger.ErrWinnerNotComputed) {
			log.Warnw("failed to get winner", "electionID", e.ID, "error", err.Error())
			continue
		}
		w, err := tm.ledger.ComputeWinner(e.ID)
		if err != nil {
			log.Warnw("failed to compute winner", "electionID", e.ID, "error", err.Error())
			continue
		}
		log.Debugw("winner computed by monitor", "electionID", e.ID, "winner", w.Name)
		computed++
	}
	return computed
}
