// Package media owns the single peer connection of a conference session:
// offer/answer rounds, the control data channel, subscriptions and the
// remote stream set.
package media

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/VoiceClient/internal/core"
	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/dkeye/VoiceClient/internal/metrics"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

const (
	DefaultRenegotiationDelay = 10 * time.Second
	DefaultGatherTimeout      = 5 * time.Second
	DefaultDataChannelLabel   = "ARDAMSd0"
)

type Options struct {
	RenegotiationDelay time.Duration
	GatherTimeout      time.Duration
	DataChannelLabel   string

	// AudioCapturer and VideoCapturer are optional. Without a working video
	// capturer the session is audio-only.
	AudioCapturer core.Capturer
	VideoCapturer core.Capturer
	AudioRouter   core.AudioRouter

	Metrics metrics.Collector
}

func (o Options) withDefaults() Options {
	if o.RenegotiationDelay <= 0 {
		o.RenegotiationDelay = DefaultRenegotiationDelay
	}
	if o.GatherTimeout <= 0 {
		o.GatherTimeout = DefaultGatherTimeout
	}
	if o.DataChannelLabel == "" {
		o.DataChannelLabel = DefaultDataChannelLabel
	}
	if o.Metrics == nil {
		o.Metrics = metrics.Nop{}
	}
	return o
}

// Session implements core.MediaSession. All mutable state is guarded by mu;
// listener callbacks are always invoked with mu released.
type Session struct {
	factory core.PeerConnectionFactory
	opts    Options

	mu         sync.Mutex
	listener   core.MediaEvents
	identity   domain.EndpointID
	iceServers []domain.ICEServer
	pc         core.PeerConnection
	control    core.DataChannel
	subs       map[domain.EndpointID]struct{}
	streams    map[domain.StreamID]struct{}
	retired    map[domain.StreamID]struct{}
	state      NegotiationState
	pending    []domain.SessionDescription
	renegTimer *time.Timer
	released   bool

	audio *LocalTrack
	video *LocalTrack

	audioStarted  bool
	videoStarted  bool
	routerStarted bool

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

var _ core.MediaSession = (*Session)(nil)

func NewSession(factory core.PeerConnectionFactory, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	audio, err := NewAudioTrack()
	if err != nil {
		return nil, err
	}
	var video *LocalTrack
	if opts.VideoCapturer != nil {
		if video, err = NewVideoTrack(); err != nil {
			return nil, err
		}
	} else {
		log.Info().Str("module", "media").Msg("no camera capturer, audio-only")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		factory:  factory,
		opts:     opts,
		listener: core.NopMediaEvents{},
		subs:     make(map[domain.EndpointID]struct{}),
		streams:  make(map[domain.StreamID]struct{}),
		retired:  make(map[domain.StreamID]struct{}),
		audio:    audio,
		video:    video,
		wake:     make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.wg.Go(s.negotiate)
	return s, nil
}

func (s *Session) SetListener(l core.MediaEvents) {
	if l == nil {
		l = core.NopMediaEvents{}
	}
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

func (s *Session) events() core.MediaEvents {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener
}

// Prepare records the ICE servers and the local identity for the upcoming
// peer connection. The local identity is dropped from the subscription set.
func (s *Session) Prepare(params domain.SignalingParameters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = params.ClientID
	s.iceServers = append([]domain.ICEServer(nil), params.ICEServers...)
	delete(s.subs, s.identity)
	log.Info().
		Str("module", "media").
		Str("endpoint", string(s.identity)).
		Int("ice_servers", len(s.iceServers)).
		Msg("session prepared")
}

// GetOrCreatePeerConnection returns the session's only peer connection,
// creating it on first use.
func (s *Session) GetOrCreatePeerConnection() (core.PeerConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peerLocked()
}

func (s *Session) peerLocked() (core.PeerConnection, error) {
	if s.released {
		return nil, domain.ErrSessionReleased
	}
	if s.pc != nil {
		return s.pc, nil
	}

	s.startDevicesLocked()

	tracks := []webrtc.TrackLocal{s.audio.TrackLocalStaticRTP}
	if s.video != nil {
		tracks = append(tracks, s.video.TrackLocalStaticRTP)
	}
	pc, err := s.factory.NewPeerConnection(core.PeerConfig{
		ICEServers:       s.iceServers,
		Tracks:           tracks,
		DataChannelLabel: s.opts.DataChannelLabel,
	}, &observer{s: s})
	if err != nil {
		return nil, err
	}
	s.pc = pc
	log.Info().
		Str("module", "media").
		Str("endpoint", string(s.identity)).
		Int("tracks", len(tracks)).
		Msg("peer connection created")
	return pc, nil
}

func (s *Session) startDevicesLocked() {
	if r := s.opts.AudioRouter; r != nil && !s.routerStarted {
		if err := r.Start(); err != nil {
			log.Warn().Err(err).Str("module", "media").Msg("audio router start")
		} else {
			s.routerStarted = true
		}
	}
	if c := s.opts.AudioCapturer; c != nil && !s.audioStarted {
		if err := c.Start(s.ctx, s.audio); err != nil {
			log.Warn().Err(err).Str("module", "media").Msg("audio capturer start")
		} else {
			s.audioStarted = true
		}
	}
	if c := s.opts.VideoCapturer; c != nil && s.video != nil && !s.videoStarted {
		if err := c.Start(s.ctx, s.video); err != nil {
			log.Warn().Err(err).Str("module", "media").Msg("camera unavailable, audio-only")
			s.video = nil
		} else {
			s.videoStarted = true
		}
	}
}

func (s *Session) SetAudioEnabled(enabled bool) {
	s.audio.SetEnabled(enabled)
}

func (s *Session) IsAudioEnabled() bool {
	return s.audio.Enabled()
}

func (s *Session) SetVideoEnabled(enabled bool) {
	s.mu.Lock()
	video := s.video
	s.mu.Unlock()
	if video == nil {
		log.Debug().Str("module", "media").Msg("no video track")
		return
	}
	video.SetEnabled(enabled)
}

func (s *Session) IsVideoEnabled() bool {
	s.mu.Lock()
	video := s.video
	s.mu.Unlock()
	return video != nil && video.Enabled()
}

// RemoteStreams returns the live remote stream ids.
func (s *Session) RemoteStreams() []domain.StreamID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.StreamID, 0, len(s.streams))
	for id := range s.streams {
		out = append(out, id)
	}
	return out
}

// Release tears the session down. It is safe to call more than once.
func (s *Session) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	id := s.identity
	if s.renegTimer != nil {
		s.renegTimer.Stop()
		s.renegTimer = nil
	}
	pc := s.pc
	s.pc = nil
	s.control = nil
	s.pending = nil
	s.listener = core.NopMediaEvents{}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	if pc != nil {
		if err := pc.Close(); err != nil {
			log.Error().Err(err).Str("module", "media").Msg("close error")
		}
	}
	s.stopDevices()
	log.Info().Str("module", "media").Str("endpoint", string(id)).Msg("session released")
}

func (s *Session) stopDevices() {
	if s.videoStarted {
		s.opts.VideoCapturer.Stop()
	}
	if s.audioStarted {
		s.opts.AudioCapturer.Stop()
	}
	if s.routerStarted {
		s.opts.AudioRouter.Stop()
	}
}
