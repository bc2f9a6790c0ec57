package core

import (
	"context"

	"github.com/pion/rtp"
)

type RTPWriter interface {
	WriteRTP(*rtp.Packet) error
}

// Capturer feeds a local track. Device selection lives outside this module.
type Capturer interface {
	Start(ctx context.Context, sink RTPWriter) error
	Stop()
}

// AudioRouter manages speaker/earpiece routing for the lifetime of a session.
type AudioRouter interface {
	Start() error
	Stop()
}
