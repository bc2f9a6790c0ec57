package media

import (
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/dkeye/VoiceClient/internal/metrics"
	"github.com/rs/zerolog/log"
)

type NegotiationState int32

const (
	Stable NegotiationState = iota
	HaveRemoteOffer
	AnswerCreated
	AnswerApplied
)

func (n NegotiationState) String() string {
	switch n {
	case Stable:
		return "stable"
	case HaveRemoteOffer:
		return "have-remote-offer"
	case AnswerCreated:
		return "answer-created"
	case AnswerApplied:
		return "answer-applied"
	default:
		return fmt.Sprintf("NegotiationState(%d)", int32(n))
	}
}

var ErrNotOffer = errors.New("remote description is not an offer")

func (s *Session) State() NegotiationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ApplyRemoteOffer queues an offer. Rounds run one at a time in arrival order
// and each successful round ends with exactly one OnLocalDescription.
func (s *Session) ApplyRemoteOffer(offer domain.SessionDescription) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		log.Warn().Str("module", "media").Msg("offer after release dropped")
		return
	}
	s.pending = append(s.pending, offer)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Session) negotiate() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		}
		for {
			offer, ok := s.nextOffer()
			if !ok {
				break
			}
			s.runRound(offer)
		}
	}
}

func (s *Session) nextOffer() (domain.SessionDescription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released || len(s.pending) == 0 {
		return domain.SessionDescription{}, false
	}
	offer := s.pending[0]
	s.pending = s.pending[1:]
	return offer, true
}

func (s *Session) runRound(offer domain.SessionDescription) {
	answer, err := s.answer(offer)
	if err != nil {
		s.mu.Lock()
		s.state = Stable
		l := s.listener
		s.mu.Unlock()

		if errors.Is(err, domain.ErrSessionReleased) {
			log.Debug().Str("module", "media").Msg("round abandoned on release")
			return
		}
		log.Error().Err(err).Str("module", "media").Msg("negotiation round failed")
		s.opts.Metrics.NegotiationRound(metrics.OutcomeError)
		l.OnPeerConnectionError(err.Error())
		return
	}

	s.opts.Metrics.NegotiationRound(metrics.OutcomeOK)
	s.events().OnLocalDescription(answer)
}

func (s *Session) answer(offer domain.SessionDescription) (domain.SessionDescription, error) {
	var none domain.SessionDescription
	if offer.Type != domain.SDPTypeOffer {
		return none, fmt.Errorf("%w: %q", ErrNotOffer, offer.Type)
	}
	summary, err := describeSDP(offer.SDP)
	if err != nil {
		return none, err
	}
	log.Info().
		Str("module", "media").
		Int("media_sections", summary.Media).
		Strs("streams", summary.streamStrings()).
		Msg("remote offer")

	s.mu.Lock()
	pc, err := s.peerLocked()
	if err != nil {
		s.mu.Unlock()
		return none, err
	}
	if err := pc.SetRemoteDescription(offer); err != nil {
		s.mu.Unlock()
		return none, fmt.Errorf("set remote description: %w", err)
	}
	s.state = HaveRemoteOffer

	answer, err := pc.CreateAnswer()
	if err != nil {
		s.mu.Unlock()
		return none, fmt.Errorf("create answer: %w", err)
	}
	s.state = AnswerCreated

	gathered := pc.GatheringComplete()
	if err := pc.SetLocalDescription(answer); err != nil {
		s.mu.Unlock()
		return none, fmt.Errorf("set local description: %w", err)
	}
	s.state = AnswerApplied
	s.mu.Unlock()

	timeout := time.NewTimer(s.opts.GatherTimeout)
	defer timeout.Stop()
	select {
	case <-gathered:
	case <-timeout.C:
		log.Warn().Str("module", "media").Dur("timeout", s.opts.GatherTimeout).Msg("ICE gathering incomplete, sending partial answer")
	case <-s.ctx.Done():
		return none, domain.ErrSessionReleased
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return none, domain.ErrSessionReleased
	}
	if local, ok := pc.LocalDescription(); ok {
		answer = local
	}
	s.state = Stable
	return answer, nil
}
