package rtc

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/VoiceClient/internal/core"
	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

const controlLabel = "ARDAMSd0"

type observer struct {
	mu       sync.Mutex
	opened   []string
	messages chan string
	added    chan domain.StreamID
	states   []webrtc.PeerConnectionState
}

func newObserver() *observer {
	return &observer{messages: make(chan string, 8), added: make(chan domain.StreamID, 8)}
}

func (o *observer) OnICEConnectionStateChange(webrtc.ICEConnectionState) {}
func (o *observer) OnConnectionStateChange(s webrtc.PeerConnectionState) {
	o.mu.Lock()
	o.states = append(o.states, s)
	o.mu.Unlock()
}
func (o *observer) OnDataChannelOpen(dc core.DataChannel) {
	o.mu.Lock()
	o.opened = append(o.opened, dc.Label())
	o.mu.Unlock()
}
func (o *observer) OnDataChannelMessage(dc core.DataChannel, data []byte) {
	o.messages <- dc.Label() + ":" + string(data)
}
func (o *observer) OnDataChannelClose(core.DataChannel) {}
func (o *observer) OnStreamAdded(id domain.StreamID)    { o.added <- id }
func (o *observer) OnStreamRemoved(domain.StreamID)     {}

func loopbackAPI(t *testing.T) *webrtc.API {
	t.Helper()
	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		t.Fatal(err)
	}
	s := webrtc.SettingEngine{}
	s.SetIncludeLoopbackCandidate(true)
	s.SetNetworkTypes([]webrtc.NetworkType{webrtc.NetworkTypeUDP4})
	return webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithSettingEngine(s))
}

func opusTrack(t *testing.T, id, stream string) *webrtc.TrackLocalStaticRTP {
	t.Helper()
	tr, err := webrtc.NewTrackLocalStaticRTP(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2}, id, stream)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

// bridgeOffer plays the bridge side: it offers one audio track and the
// control channel and returns its gathered offer.
func bridgeOffer(t *testing.T, api *webrtc.API) (*webrtc.PeerConnection, *webrtc.TrackLocalStaticRTP, *webrtc.DataChannel, domain.SessionDescription) {
	t.Helper()
	pc, err := api.NewPeerConnection(Configuration(nil))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = pc.Close() })

	track := opusTrack(t, "audio", "endpoint-1")
	if _, err := pc.AddTrack(track); err != nil {
		t.Fatal(err)
	}
	dc, err := pc.CreateDataChannel(controlLabel, nil)
	if err != nil {
		t.Fatal(err)
	}
	offer, err := pc.CreateOffer(nil)
	if err != nil {
		t.Fatal(err)
	}
	gathered := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		t.Fatal(err)
	}
	<-gathered
	return pc, track, dc, domain.NewOffer(pc.LocalDescription().SDP)
}

func answerOffer(t *testing.T, c *WebRTCConnection, offer domain.SessionDescription) domain.SessionDescription {
	t.Helper()
	if err := c.SetRemoteDescription(offer); err != nil {
		t.Fatalf("SetRemoteDescription: %v", err)
	}
	answer, err := c.CreateAnswer()
	if err != nil {
		t.Fatalf("CreateAnswer: %v", err)
	}
	gathered := c.GatheringComplete()
	if err := c.SetLocalDescription(answer); err != nil {
		t.Fatalf("SetLocalDescription: %v", err)
	}
	select {
	case <-gathered:
	case <-time.After(5 * time.Second):
		t.Fatal("gathering did not complete")
	}
	local, ok := c.LocalDescription()
	if !ok {
		t.Fatal("no local description")
	}
	return local
}

func TestAnswerCoversOfferedSections(t *testing.T) {
	api := loopbackAPI(t)
	_, _, _, offer := bridgeOffer(t, api)

	c, err := NewWebRTCConnection(api, Configuration(nil), core.PeerConfig{
		Tracks:           []webrtc.TrackLocal{opusTrack(t, "ARDAMSa0", "ARDAMS")},
		DataChannelLabel: controlLabel,
	}, newObserver())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	local := answerOffer(t, c, offer)
	if local.Type != domain.SDPTypeAnswer {
		t.Fatalf("type = %s", local.Type)
	}
	for _, want := range []string{"m=audio", "m=application", "a=msid:ARDAMS ARDAMSa0", "a=candidate"} {
		if !strings.Contains(local.SDP, want) {
			t.Errorf("answer lacks %q", want)
		}
	}
	remote, ok := c.RemoteDescription()
	if !ok || remote.SDP != offer.SDP {
		t.Fatal("remote description not retained")
	}
}

func TestRejectsUnknownDescriptionType(t *testing.T) {
	c, err := NewWebRTCConnection(loopbackAPI(t), Configuration(nil), core.PeerConfig{}, newObserver())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if err := c.SetRemoteDescription(domain.SessionDescription{Type: "pranswer", SDP: "v=0"}); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := c.LocalDescription(); ok {
		t.Fatal("unexpected local description")
	}
}

func TestConnectedControlChannelAndStreams(t *testing.T) {
	api := loopbackAPI(t)
	bridge, track, dc, offer := bridgeOffer(t, api)
	dc.OnOpen(func() { _ = dc.SendText(`{"colibriClass":"PinnedEndpointsChangedEvent"}`) })

	obs := newObserver()
	c, err := NewWebRTCConnection(api, Configuration(nil), core.PeerConfig{
		Tracks:           []webrtc.TrackLocal{opusTrack(t, "ARDAMSa0", "ARDAMS")},
		DataChannelLabel: controlLabel,
	}, obs)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	answer := answerOffer(t, c, offer)
	if err := bridge.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: answer.SDP}); err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		var seq uint16
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				seq++
				_ = track.WriteRTP(&rtp.Packet{
					Header:  rtp.Header{Version: 2, SequenceNumber: seq, Timestamp: uint32(seq) * 960},
					Payload: []byte{0xf8, 0xff, 0xfe},
				})
			}
		}
	}()

	timeout := time.After(15 * time.Second)
	select {
	case msg := <-obs.messages:
		if msg != controlLabel+`:{"colibriClass":"PinnedEndpointsChangedEvent"}` {
			t.Fatalf("message = %q", msg)
		}
	case <-timeout:
		t.Fatal("no control message")
	}
	select {
	case id := <-obs.added:
		if id != "endpoint-1" {
			t.Fatalf("stream = %q", id)
		}
	case <-timeout:
		t.Fatal("no remote stream")
	}

	obs.mu.Lock()
	opened := append([]string(nil), obs.opened...)
	obs.mu.Unlock()
	if len(opened) == 0 {
		t.Fatal("no data channel reported open")
	}
	for _, l := range opened {
		if l != controlLabel {
			t.Fatalf("unexpected channel %q", l)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c, err := NewWebRTCConnection(loopbackAPI(t), Configuration(nil), core.PeerConfig{DataChannelLabel: controlLabel}, newObserver())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestConfigurationMapsCredentials(t *testing.T) {
	conf := Configuration([]domain.ICEServer{
		{URLs: []string{"stun:stun.example.org:3478"}},
		{URLs: []string{"turn:turn.example.org"}, Username: "u", Credential: "p"},
	})
	if len(conf.ICEServers) != 2 {
		t.Fatalf("servers = %d", len(conf.ICEServers))
	}
	if conf.ICEServers[0].Username != "" {
		t.Fatal("stun server got credentials")
	}
	turn := conf.ICEServers[1]
	if turn.Username != "u" || turn.Credential != "p" || turn.CredentialType != webrtc.ICECredentialTypePassword {
		t.Fatalf("turn = %+v", turn)
	}
}
