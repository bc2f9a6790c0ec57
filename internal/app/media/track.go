package media

import (
	"sync/atomic"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

const (
	LocalStreamID = "ARDAMS"
	AudioTrackID  = "ARDAMSa0"
	VideoTrackID  = "ARDAMSv0"
)

type TrackState int32

const (
	TrackStateOk TrackState = iota
	TrackStateMuted
)

// LocalTrack is an outgoing track that can be muted without renegotiation.
// Muted tracks silently drop what capturers write.
type LocalTrack struct {
	*webrtc.TrackLocalStaticRTP
	state atomic.Int32 // Zero by default (TrackStateOk)
}

func NewLocalTrack(codec webrtc.RTPCodecCapability, id string) (*LocalTrack, error) {
	t, err := webrtc.NewTrackLocalStaticRTP(codec, id, LocalStreamID)
	if err != nil {
		return nil, err
	}
	return &LocalTrack{TrackLocalStaticRTP: t}, nil
}

func NewAudioTrack() (*LocalTrack, error) {
	return NewLocalTrack(webrtc.RTPCodecCapability{
		MimeType:  webrtc.MimeTypeOpus,
		ClockRate: 48000,
		Channels:  2,
	}, AudioTrackID)
}

func NewVideoTrack() (*LocalTrack, error) {
	return NewLocalTrack(webrtc.RTPCodecCapability{
		MimeType:  webrtc.MimeTypeVP8,
		ClockRate: 90000,
	}, VideoTrackID)
}

func (t *LocalTrack) GetState() TrackState {
	return TrackState(t.state.Load())
}

func (t *LocalTrack) MarkOk() {
	t.state.Store(int32(TrackStateOk))
}

func (t *LocalTrack) MarkMuted() {
	t.state.Store(int32(TrackStateMuted))
}

func (t *LocalTrack) SetEnabled(enabled bool) {
	if enabled {
		t.MarkOk()
	} else {
		t.MarkMuted()
	}
}

func (t *LocalTrack) Enabled() bool {
	return t.GetState() == TrackStateOk
}

func (t *LocalTrack) WriteRTP(p *rtp.Packet) error {
	if t.GetState() != TrackStateOk {
		return nil
	}
	return t.TrackLocalStaticRTP.WriteRTP(p)
}

func (t *LocalTrack) Write(b []byte) (int, error) {
	if t.GetState() != TrackStateOk {
		return len(b), nil
	}
	return t.TrackLocalStaticRTP.Write(b)
}
