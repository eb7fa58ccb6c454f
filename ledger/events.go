package ledger

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/vocdoni/blindvote/types"
	"go.vocdoni.io/dvote/log"
)

// EventType identifies the kind of notification.
type EventType string

const (
	// EventNewElection is emitted when an election is created.
	EventNewElection EventType = "newElection"
	// EventNewVote is emitted for every accepted vote.
	EventNewVote EventType = "newVote"
	// EventWinnerComputed is emitted every time a winner is computed.
	EventWinnerComputed EventType = "winnerComputed"
)

// DefaultEventBuffer is the subscription channel size used when none is given.
const DefaultEventBuffer = 64

// Event is a ledger notification. Only the fields of its type are set.
type Event struct {
	ID         uuid.UUID      `json:"id"`
	Type       EventType      `json:"type"`
	ElectionID uint64         `json:"electionId"`
	Time       time.Time      `json:"time"`
	Creator    common.Address `json:"creator,omitempty"`
	NameHash   types.HexBytes `json:"nameHash,omitempty"`
	Voter      common.Address `json:"voter,omitempty"`
	Hash       types.Word     `json:"hash,omitempty"`
	Vote       string         `json:"vote,omitempty"`
	Winner     *types.Winner  `json:"winner,omitempty"`
}

// broker fans out events to subscribers. Slow subscribers lose events
// instead of blocking the ledger.
type broker struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]chan *Event
}

func newBroker() *broker {
	return &broker{subs: make(map[uuid.UUID]chan *Event)}
}

func (b *broker) subscribe(buffer int) (<-chan *Event, func()) {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	id := uuid.New()
	ch := make(chan *Event, buffer)
	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *broker) publish(e *Event) {
	e.ID = uuid.New()
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			log.Warnw("dropping ledger event, subscriber is full",
				"subscriber", id.String(), "event", string(e.Type), "electionID", e.ElectionID)
		}
	}
}
