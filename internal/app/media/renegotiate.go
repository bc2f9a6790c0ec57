package media

import (
	"time"

	"github.com/dkeye/VoiceClient/internal/metrics"
	"github.com/rs/zerolog/log"
)

// scheduleRenegotiation arms the delayed renegotiation. While a timer is
// outstanding further triggers are coalesced into it.
func (s *Session) scheduleRenegotiation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	if s.renegTimer != nil {
		s.opts.Metrics.Renegotiation(metrics.OutcomeCoalesced)
		return
	}
	s.renegTimer = time.AfterFunc(s.opts.RenegotiationDelay, s.fireRenegotiation)
	s.opts.Metrics.Renegotiation(metrics.OutcomeScheduled)
	log.Debug().Str("module", "media").Dur("delay", s.opts.RenegotiationDelay).Msg("renegotiation scheduled")
}

func (s *Session) fireRenegotiation() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.renegTimer = nil
	pc := s.pc
	l := s.listener
	s.mu.Unlock()

	if pc == nil {
		log.Warn().Str("module", "media").Msg("renegotiation without peer connection")
		return
	}
	remote, ok := pc.RemoteDescription()
	if !ok {
		log.Warn().Str("module", "media").Msg("renegotiation without remote description")
		return
	}
	s.opts.Metrics.Renegotiation(metrics.OutcomeFired)
	l.OnRenegotiationNeeded(remote)
}

// RenegotiationPending reports whether a delayed renegotiation is armed.
func (s *Session) RenegotiationPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renegTimer != nil
}
