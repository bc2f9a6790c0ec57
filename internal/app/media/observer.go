package media

import (
	"github.com/dkeye/VoiceClient/internal/core"
	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// observer adapts transport notifications to session state and MediaEvents.
type observer struct {
	s *Session
}

var _ core.PeerObserver = (*observer)(nil)

// live returns the listener, or false once the session is released.
func (o *observer) live() (core.MediaEvents, bool) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	return o.s.listener, !o.s.released
}

func (o *observer) OnICEConnectionStateChange(state webrtc.ICEConnectionState) {
	log.Info().Str("module", "media").Str("ice_state", state.String()).Msg("ICE state")
	l, ok := o.live()
	if !ok {
		return
	}
	switch state {
	case webrtc.ICEConnectionStateConnected:
		l.OnIceConnected()
	case webrtc.ICEConnectionStateDisconnected:
		l.OnIceDisconnected()
	}
}

func (o *observer) OnConnectionStateChange(state webrtc.PeerConnectionState) {
	log.Info().Str("module", "media").Str("peer_connection_state", state.String()).Msg("Peer state")
	l, ok := o.live()
	if !ok {
		return
	}
	switch state {
	case webrtc.PeerConnectionStateConnected:
		l.OnConnected()
	case webrtc.PeerConnectionStateDisconnected:
		l.OnDisconnected()
	case webrtc.PeerConnectionStateFailed:
		l.OnPeerConnectionError("peer connection failed")
	case webrtc.PeerConnectionStateClosed:
		l.OnPeerConnectionClosed()
	}
}

// OnDataChannelOpen adopts the control channel. Pushes dropped before it
// opened are not replayed.
func (o *observer) OnDataChannelOpen(dc core.DataChannel) {
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released || dc.Label() != s.opts.DataChannelLabel {
		return
	}
	s.control = dc
	log.Info().Str("module", "media").Str("label", dc.Label()).Msg("control channel open")
}

func (o *observer) OnDataChannelMessage(dc core.DataChannel, data []byte) {
	if dc.Label() != o.s.opts.DataChannelLabel {
		return
	}
	if _, ok := o.live(); !ok {
		return
	}
	o.s.handleControl(data)
}

func (o *observer) OnDataChannelClose(dc core.DataChannel) {
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.control != nil && s.control.Label() == dc.Label() {
		s.control = nil
		log.Info().Str("module", "media").Str("label", dc.Label()).Msg("control channel closed")
	}
}

func (o *observer) OnStreamAdded(id domain.StreamID) {
	s := o.s
	s.mu.Lock()
	_, known := s.streams[id]
	_, gone := s.retired[id]
	if s.released || known || gone {
		s.mu.Unlock()
		if gone {
			log.Debug().Str("module", "media").Str("stream_id", string(id)).Msg("retired stream ignored")
		}
		return
	}
	s.streams[id] = struct{}{}
	n := len(s.streams)
	l := s.listener
	s.mu.Unlock()

	s.opts.Metrics.RemoteStreams(n)
	log.Info().Str("module", "media").Str("stream_id", string(id)).Msg("stream added")
	l.OnStreamAdded(id)
}

func (o *observer) OnStreamRemoved(id domain.StreamID) {
	o.s.removeStream(id)
}

// removeStream retires id for the rest of the session and notifies the
// listener if the stream was live.
func (s *Session) removeStream(id domain.StreamID) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.retired[id] = struct{}{}
	if _, ok := s.streams[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.streams, id)
	n := len(s.streams)
	l := s.listener
	s.mu.Unlock()

	s.opts.Metrics.RemoteStreams(n)
	log.Info().Str("module", "media").Str("stream_id", string(id)).Msg("stream removed")
	l.OnStreamRemoved(id)
}
