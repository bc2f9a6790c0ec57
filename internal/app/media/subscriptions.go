package media

import (
	"slices"

	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/rs/zerolog/log"
)

// Subscribe adds id to the set of endpoints whose media is requested and
// pushes the whole set over the control channel. Subscribing a member is a
// no-op.
func (s *Session) Subscribe(id domain.EndpointID) error {
	if id == "" {
		return domain.ErrIdentityEmpty
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return domain.ErrSessionReleased
	}
	if id == s.identity {
		return domain.ErrSelfSubscription
	}
	if _, ok := s.subs[id]; ok {
		return nil
	}
	s.subs[id] = struct{}{}
	s.pushPinnedLocked()
	return nil
}

func (s *Session) Unsubscribe(id domain.EndpointID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return domain.ErrSessionReleased
	}
	if _, ok := s.subs[id]; !ok {
		return nil
	}
	delete(s.subs, id)
	s.pushPinnedLocked()
	return nil
}

// Subscriptions returns the current set, sorted.
func (s *Session) Subscriptions() []domain.EndpointID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptionsLocked()
}

func (s *Session) subscriptionsLocked() []domain.EndpointID {
	out := make([]domain.EndpointID, 0, len(s.subs))
	for id := range s.subs {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// pushPinnedLocked sends under mu so pushes leave in mutation order.
func (s *Session) pushPinnedLocked() {
	ids := s.subscriptionsLocked()
	s.opts.Metrics.SubscriptionSize(len(ids))
	if s.control == nil {
		log.Info().Str("module", "media").Int("pinned", len(ids)).Msg("control channel not open, push dropped")
		return
	}
	payload, err := EncodePinnedEndpoints(ids)
	if err != nil {
		log.Error().Err(err).Str("module", "media").Msg("encode pinned endpoints")
		return
	}
	if err := s.control.SendText(string(payload)); err != nil {
		log.Warn().Err(err).Str("module", "media").Msg("push pinned endpoints")
		return
	}
	log.Debug().Str("module", "media").Strs("pinned", endpointStrings(ids)).Msg("pinned endpoints pushed")
}

func endpointStrings(ids []domain.EndpointID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
