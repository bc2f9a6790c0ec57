package domain

import (
	"errors"
	"maps"
)

var (
	ErrSelfSubscription = errors.New("cannot subscribe to own endpoint")
	ErrSessionReleased  = errors.New("media session released")
	ErrInvalidState     = errors.New("invalid state")
)

type SDPType string

const (
	SDPTypeOffer  SDPType = "offer"
	SDPTypeAnswer SDPType = "answer"
)

// SessionDescription is an immutable SDP value tagged with its role.
type SessionDescription struct {
	Type SDPType `json:"type"`
	SDP  string  `json:"sdp"`
}

func NewOffer(sdp string) SessionDescription {
	return SessionDescription{Type: SDPTypeOffer, SDP: sdp}
}

func NewAnswer(sdp string) SessionDescription {
	return SessionDescription{Type: SDPTypeAnswer, SDP: sdp}
}

type ICEServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

// ConnectionParameters describe one join attempt. Treat as read-only once
// handed to a signal channel.
type ConnectionParameters struct {
	Identity EndpointID
	Secret   string
	BaseURL  string
	Room     RoomID
	// Options is forwarded to the signaling server verbatim.
	Options map[string]string
}

// Clone returns a copy that shares no mutable state with p.
func (p ConnectionParameters) Clone() ConnectionParameters {
	out := p
	out.Options = maps.Clone(p.Options)
	return out
}

// SignalingParameters are produced once per successful join.
type SignalingParameters struct {
	ICEServers   []ICEServer
	InitialOffer *SessionDescription
	ClientID     EndpointID
}
