package rtc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dkeye/VoiceClient/internal/core"
	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const eventBuffer = 64

// WebRTCConnection implements core.PeerConnection on top of pion. Pion
// callbacks are queued and delivered to the observer from one goroutine, in
// order, never from inside a PeerConnection method.
type WebRTCConnection struct {
	pc     *webrtc.PeerConnection
	obs    core.PeerObserver
	label  string
	ctx    context.Context
	cancel context.CancelFunc

	events chan func()
	done   chan struct{}

	mu      sync.Mutex
	streams map[domain.StreamID]int
	closed  bool
}

var _ core.PeerConnection = (*WebRTCConnection)(nil)

func NewWebRTCConnection(api *webrtc.API, conf webrtc.Configuration, cfg core.PeerConfig, obs core.PeerObserver) (*WebRTCConnection, error) {
	pc, err := api.NewPeerConnection(conf)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &WebRTCConnection{
		pc:      pc,
		obs:     obs,
		label:   cfg.DataChannelLabel,
		ctx:     ctx,
		cancel:  cancel,
		events:  make(chan func(), eventBuffer),
		done:    make(chan struct{}),
		streams: make(map[domain.StreamID]int),
	}
	go c.dispatch()
	c.bind()

	for _, t := range cfg.Tracks {
		if err := c.addLocalTrack(t); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("add track %s: %w", t.ID(), err)
		}
	}
	if cfg.DataChannelLabel != "" {
		dc, err := pc.CreateDataChannel(cfg.DataChannelLabel, nil)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("create data channel: %w", err)
		}
		c.bindDataChannel(dc)
	}
	return c, nil
}

func (c *WebRTCConnection) bind() {
	c.pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		c.post(func() { c.obs.OnICEConnectionStateChange(s) })
	})
	c.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		c.post(func() { c.obs.OnConnectionStateChange(s) })
	})
	c.pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		log.Info().Str("module", "webrtc").Str("label", dc.Label()).Msg("remote data channel")
		c.bindDataChannel(dc)
	})
	c.pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		log.Info().
			Str("module", "webrtc").
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Msg("OnTrack received")
		go c.readTrack(track)
	})
}

func (c *WebRTCConnection) bindDataChannel(dc *webrtc.DataChannel) {
	ch := dataChannel{dc: dc}
	dc.OnOpen(func() {
		c.post(func() { c.obs.OnDataChannelOpen(ch) })
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		data := append([]byte(nil), msg.Data...)
		c.post(func() { c.obs.OnDataChannelMessage(ch, data) })
	})
	dc.OnClose(func() {
		c.post(func() { c.obs.OnDataChannelClose(ch) })
	})
}

// readTrack keeps the remote track drained. A stream lives while at least
// one of its tracks does.
func (c *WebRTCConnection) readTrack(track *webrtc.TrackRemote) {
	id := domain.StreamID(track.StreamID())
	c.mu.Lock()
	c.streams[id]++
	first := c.streams[id] == 1
	c.mu.Unlock()
	if first {
		c.post(func() { c.obs.OnStreamAdded(id) })
	}

	for {
		if _, _, err := track.ReadRTP(); err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug().Err(err).Str("module", "webrtc").Str("stream_id", string(id)).Msg("track read ended")
			}
			break
		}
	}

	c.mu.Lock()
	c.streams[id]--
	last := c.streams[id] == 0
	if last {
		delete(c.streams, id)
	}
	c.mu.Unlock()
	if last {
		c.post(func() { c.obs.OnStreamRemoved(id) })
	}
}

// addLocalTrack attaches a local track and drains its RTCP.
func (c *WebRTCConnection) addLocalTrack(track webrtc.TrackLocal) error {
	sender, err := c.pc.AddTrack(track)
	if err != nil {
		return err
	}
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := sender.Read(buf); err != nil {
				return
			}
		}
	}()
	return nil
}

func (c *WebRTCConnection) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.ctx.Done():
	}
}

func (c *WebRTCConnection) dispatch() {
	defer close(c.done)
	for {
		select {
		case fn := <-c.events:
			fn()
		case <-c.ctx.Done():
			// deliver what was queued before close
			for {
				select {
				case fn := <-c.events:
					fn()
				default:
					return
				}
			}
		}
	}
}

func (c *WebRTCConnection) SetRemoteDescription(d domain.SessionDescription) error {
	desc, err := toPion(d)
	if err != nil {
		return err
	}
	return c.pc.SetRemoteDescription(desc)
}

func (c *WebRTCConnection) CreateAnswer() (domain.SessionDescription, error) {
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return domain.SessionDescription{}, err
	}
	return fromPion(answer), nil
}

func (c *WebRTCConnection) SetLocalDescription(d domain.SessionDescription) error {
	desc, err := toPion(d)
	if err != nil {
		return err
	}
	return c.pc.SetLocalDescription(desc)
}

func (c *WebRTCConnection) GatheringComplete() <-chan struct{} {
	return webrtc.GatheringCompletePromise(c.pc)
}

func (c *WebRTCConnection) LocalDescription() (domain.SessionDescription, bool) {
	d := c.pc.LocalDescription()
	if d == nil {
		return domain.SessionDescription{}, false
	}
	return fromPion(*d), true
}

func (c *WebRTCConnection) RemoteDescription() (domain.SessionDescription, bool) {
	d := c.pc.RemoteDescription()
	if d == nil {
		return domain.SessionDescription{}, false
	}
	return fromPion(*d), true
}

// Close closes the peer connection and flushes pending observer events.
func (c *WebRTCConnection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.pc.Close()
	if err != nil {
		log.Error().Err(err).Str("module", "webrtc").Msg("close error")
	} else {
		log.Info().Str("module", "webrtc").Msg("closed")
	}
	c.cancel()
	<-c.done
	return err
}

func toPion(d domain.SessionDescription) (webrtc.SessionDescription, error) {
	switch d.Type {
	case domain.SDPTypeOffer:
		return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: d.SDP}, nil
	case domain.SDPTypeAnswer:
		return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: d.SDP}, nil
	default:
		return webrtc.SessionDescription{}, fmt.Errorf("unsupported description type %q", d.Type)
	}
}

func fromPion(d webrtc.SessionDescription) domain.SessionDescription {
	if d.Type == webrtc.SDPTypeOffer {
		return domain.NewOffer(d.SDP)
	}
	return domain.NewAnswer(d.SDP)
}
