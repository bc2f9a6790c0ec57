package core

import "github.com/dkeye/VoiceClient/internal/domain"

// Slot is a presentation position a stream can be attached to.
type Slot interface {
	Index() int
	StreamID() domain.StreamID
	Attach(domain.StreamID)
	Detach()
}

type ViewBinder interface {
	// GetRemoteSlot returns the same slot for repeated ids; false once the pool is exhausted.
	GetRemoteSlot(domain.StreamID) (Slot, bool)
	GetLocalSlot() Slot
}
