package core

import (
	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/pion/webrtc/v4"
)

// PeerConfig is everything a PeerConnectionFactory needs to build the
// session's single connection.
type PeerConfig struct {
	ICEServers []domain.ICEServer
	// Tracks are attached before the first description is applied.
	Tracks []webrtc.TrackLocal
	// DataChannelLabel names the locally created control channel.
	DataChannelLabel string
}

type PeerConnectionFactory interface {
	NewPeerConnection(cfg PeerConfig, obs PeerObserver) (PeerConnection, error)
}

// PeerConnection is the media transport the session drives. Implementations
// must not invoke the observer synchronously from inside these methods.
type PeerConnection interface {
	SetRemoteDescription(domain.SessionDescription) error
	CreateAnswer() (domain.SessionDescription, error)
	SetLocalDescription(domain.SessionDescription) error
	// GatheringComplete is closed once local candidates are in the local description.
	GatheringComplete() <-chan struct{}
	LocalDescription() (domain.SessionDescription, bool)
	RemoteDescription() (domain.SessionDescription, bool)
	Close() error
}

type DataChannel interface {
	Label() string
	SendText(string) error
}

// PeerObserver receives transport notifications. Stream notifications are
// derived from remote track lifetimes grouped by stream id.
type PeerObserver interface {
	OnICEConnectionStateChange(webrtc.ICEConnectionState)
	OnConnectionStateChange(webrtc.PeerConnectionState)
	OnDataChannelOpen(DataChannel)
	OnDataChannelMessage(DataChannel, []byte)
	OnDataChannelClose(DataChannel)
	OnStreamAdded(domain.StreamID)
	OnStreamRemoved(domain.StreamID)
}

// MediaSession owns the peer connection and its negotiation rounds.
type MediaSession interface {
	SetListener(MediaEvents)
	// Prepare records ICE servers and the local identity before the first offer.
	Prepare(domain.SignalingParameters)
	ApplyRemoteOffer(domain.SessionDescription)
	Subscribe(domain.EndpointID) error
	Unsubscribe(domain.EndpointID) error
	Subscriptions() []domain.EndpointID
	SetAudioEnabled(bool)
	SetVideoEnabled(bool)
	IsAudioEnabled() bool
	IsVideoEnabled() bool
	Release()
}

type MediaEvents interface {
	// OnLocalDescription fires once per completed negotiation round.
	OnLocalDescription(domain.SessionDescription)
	// OnRenegotiationNeeded carries the current remote description.
	OnRenegotiationNeeded(domain.SessionDescription)
	OnIceConnected()
	OnIceDisconnected()
	OnConnected()
	OnDisconnected()
	OnPeerConnectionClosed()
	OnPeerConnectionError(description string)
	OnStreamAdded(domain.StreamID)
	OnStreamRemoved(domain.StreamID)
}

// NopMediaEvents can be embedded to override only the callbacks of interest.
type NopMediaEvents struct{}

func (NopMediaEvents) OnLocalDescription(domain.SessionDescription)    {}
func (NopMediaEvents) OnRenegotiationNeeded(domain.SessionDescription) {}
func (NopMediaEvents) OnIceConnected()                                 {}
func (NopMediaEvents) OnIceDisconnected()                              {}
func (NopMediaEvents) OnConnected()                                    {}
func (NopMediaEvents) OnDisconnected()                                 {}
func (NopMediaEvents) OnPeerConnectionClosed()                         {}
func (NopMediaEvents) OnPeerConnectionError(string)                    {}
func (NopMediaEvents) OnStreamAdded(domain.StreamID)                   {}
func (NopMediaEvents) OnStreamRemoved(domain.StreamID)                 {}
