package coretest

import (
	"sync"

	"github.com/dkeye/VoiceClient/internal/domain"
)

// Recorder collects listener callbacks as strings so tests can assert on order.
type Recorder struct {
	mu     sync.Mutex
	events []string
	notify chan struct{}
}

func NewRecorder() *Recorder {
	return &Recorder{notify: make(chan struct{}, 1)}
}

func (r *Recorder) Add(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Count returns how many recorded events equal ev.
func (r *Recorder) Count(ev string) int {
	n := 0
	for _, e := range r.Events() {
		if e == ev {
			n++
		}
	}
	return n
}

// Changed is signalled after every Add.
func (r *Recorder) Changed() <-chan struct{} { return r.notify }

// StreamEvent formats stream callbacks for a Recorder.
func StreamEvent(kind string, id domain.StreamID) string {
	return kind + ":" + string(id)
}
