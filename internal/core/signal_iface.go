package core

import "github.com/dkeye/VoiceClient/internal/domain"

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/dkeye/VoiceClient/internal/core SignalChannel,MediaSession

// SignalChannel performs the wire-level session lifecycle against the
// signaling server. Every call returns immediately; outcomes are delivered
// to the registered SignalingEvents.
type SignalChannel interface {
	// SetListener replaces the active listener. Only one is attached at a time.
	SetListener(SignalingEvents)
	Join(domain.ConnectionParameters)
	SendAnswer(domain.SessionDescription)
	// UpdateOffer asks the server for a fresh offer; it arrives via OnRemoteDescription.
	UpdateOffer(domain.SessionDescription)
	// Leave delivers OnChannelClose once. Nothing is delivered afterwards.
	Leave()
}

type SignalingEvents interface {
	OnConnected(domain.SignalingParameters)
	OnRemoteDescription(domain.SessionDescription)
	OnChannelClose()
	OnChannelError(description string)
}

// NopSignalingEvents can be embedded to override only the callbacks of interest.
type NopSignalingEvents struct{}

func (NopSignalingEvents) OnConnected(domain.SignalingParameters)        {}
func (NopSignalingEvents) OnRemoteDescription(domain.SessionDescription) {}
func (NopSignalingEvents) OnChannelClose()                               {}
func (NopSignalingEvents) OnChannelError(string)                         {}
