// Package views keeps a fixed pool of presentation slots. Slot 0 is the
// local preview; the rest are handed out to remote streams on first use.
package views

import (
	"sync"

	"github.com/dkeye/VoiceClient/internal/core"
	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/rs/zerolog/log"
)

const localIndex = 0

// Event describes a slot change.
type Event struct {
	Slot     int             `json:"slot"`
	Stream   domain.StreamID `json:"stream,omitempty"`
	Attached bool            `json:"attached"`
	Local    bool            `json:"local"`
}

type slot struct {
	pool  *Pool
	index int

	// guarded by pool.mu
	owner  domain.StreamID
	stream domain.StreamID
}

func (s *slot) Index() int { return s.index }

func (s *slot) StreamID() domain.StreamID {
	s.pool.mu.RLock()
	defer s.pool.mu.RUnlock()
	return s.stream
}

func (s *slot) Attach(id domain.StreamID) {
	s.pool.attach(s, id)
}

func (s *slot) Detach() {
	s.pool.detach(s)
}

type Pool struct {
	mu       sync.RWMutex
	slots    []*slot
	byStream map[domain.StreamID]*slot
	watchers map[int]chan Event
	nextID   int
}

var _ core.ViewBinder = (*Pool)(nil)

// NewPool creates size slots including the local one. size is at least 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		byStream: make(map[domain.StreamID]*slot),
		watchers: make(map[int]chan Event),
	}
	for i := 0; i < size; i++ {
		p.slots = append(p.slots, &slot{pool: p, index: i})
	}
	return p
}

func (p *Pool) GetLocalSlot() core.Slot {
	return p.slots[localIndex]
}

// GetRemoteSlot returns the slot owned by id, allocating a free one on first
// use. It reports false once every remote slot is taken.
func (p *Pool) GetRemoteSlot(id domain.StreamID) (core.Slot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.byStream[id]; ok {
		return s, true
	}
	for _, s := range p.slots[localIndex+1:] {
		if s.owner == "" {
			s.owner = id
			p.byStream[id] = s
			log.Info().Str("module", "views").Str("stream_id", string(id)).Int("slot", s.index).Msg("slot allocated")
			return s, true
		}
	}
	log.Warn().Str("module", "views").Str("stream_id", string(id)).Msg("no free slot")
	return nil, false
}

func (p *Pool) attach(s *slot, id domain.StreamID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.stream = id
	p.publishLocked(Event{Slot: s.index, Stream: id, Attached: true, Local: s.index == localIndex})
}

// detach clears the slot and returns a remote slot to the pool.
func (p *Pool) detach(s *slot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := s.stream
	s.stream = ""
	if s.index != localIndex && s.owner != "" {
		delete(p.byStream, s.owner)
		s.owner = ""
	}
	p.publishLocked(Event{Slot: s.index, Stream: prev, Attached: false, Local: s.index == localIndex})
}

// Snapshot returns the attached state of every slot.
func (p *Pool) Snapshot() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Event, 0, len(p.slots))
	for _, s := range p.slots {
		out = append(out, Event{Slot: s.index, Stream: s.stream, Attached: s.stream != "", Local: s.index == localIndex})
	}
	return out
}

// Watch subscribes to slot events. Slow watchers lose events rather than
// blocking the pool; cancel releases the subscription.
func (p *Pool) Watch(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.watchers[id] = ch
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.watchers, id)
			p.mu.Unlock()
			close(ch)
		})
	}
}

func (p *Pool) publishLocked(ev Event) {
	for id, ch := range p.watchers {
		select {
		case ch <- ev:
		default:
			log.Warn().Str("module", "views").Int("watcher", id).Msg("watcher slow, event dropped")
		}
	}
}
