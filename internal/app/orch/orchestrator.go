// Package orch drives one conference session: it joins through the signal
// channel, hands offers to the media session and routes answers back.
package orch

import (
	"fmt"
	"maps"
	"sync"

	"github.com/dkeye/VoiceClient/internal/app/media"
	"github.com/dkeye/VoiceClient/internal/core"
	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/rs/zerolog/log"
)

type State int

const (
	Idle State = iota
	Connecting
	Active
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Active:
		return "active"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DefaultOptions is the deployment configuration sent with every join.
func DefaultOptions() map[string]string {
	return map[string]string{
		"channelLastN":  "-1",
		"disableRtx":    "false",
		"enableLipSync": "true",
		"openSctp":      "true",
	}
}

type Config struct {
	BaseURL string
	// Options replaces DefaultOptions when non-nil.
	Options map[string]string
}

// Status is a point-in-time view of the orchestrator.
type Status struct {
	State         string              `json:"state"`
	Room          domain.RoomID       `json:"room,omitempty"`
	Identity      domain.EndpointID   `json:"identity,omitempty"`
	ClientID      domain.EndpointID   `json:"client_id,omitempty"`
	Subscriptions []domain.EndpointID `json:"subscriptions"`
	Audio         bool                `json:"audio"`
	Video         bool                `json:"video"`
}

type Orchestrator struct {
	signal core.SignalChannel
	media  core.MediaSession
	views  core.ViewBinder
	conf   Config

	mu       sync.Mutex
	state    State
	params   domain.ConnectionParameters
	clientID domain.EndpointID

	closeOnce sync.Once
}

func New(signal core.SignalChannel, session core.MediaSession, views core.ViewBinder, conf Config) *Orchestrator {
	if conf.Options == nil {
		conf.Options = DefaultOptions()
	}
	o := &Orchestrator{signal: signal, media: session, views: views, conf: conf}
	signal.SetListener(signalHandler{o})
	session.SetListener(mediaHandler{o})
	return o
}

// Connect starts joining room. An empty identity is replaced with a fresh one.
func (o *Orchestrator) Connect(room, identity, secret string) error {
	r, err := domain.ParseRoom(room)
	if err != nil {
		return err
	}
	id := domain.NewIdentity()
	if identity != "" {
		if id, err = domain.ParseIdentity(identity); err != nil {
			return err
		}
	}

	o.mu.Lock()
	if o.state != Idle {
		st := o.state
		o.mu.Unlock()
		return fmt.Errorf("connect in state %s: %w", st, domain.ErrInvalidState)
	}
	o.state = Connecting
	o.params = domain.ConnectionParameters{
		Identity: id,
		Secret:   secret,
		BaseURL:  o.conf.BaseURL,
		Room:     r,
		Options:  maps.Clone(o.conf.Options),
	}
	params := o.params.Clone()
	o.mu.Unlock()

	log.Info().Str("module", "orch").Str("room", string(r)).Str("identity", string(id)).Msg("connecting")
	o.signal.Join(params)
	return nil
}

// Disconnect releases the media session and leaves the conference. Calls
// after the first are no-ops.
func (o *Orchestrator) Disconnect() {
	o.closeOnce.Do(func() {
		o.mu.Lock()
		prev := o.state
		o.state = Closed
		o.mu.Unlock()

		log.Info().Str("module", "orch").Str("from", prev.String()).Msg("disconnecting")
		o.media.Release()
		o.signal.Leave()
	})
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	st := Status{
		State:    o.state.String(),
		Room:     o.params.Room,
		Identity: o.params.Identity,
		ClientID: o.clientID,
	}
	o.mu.Unlock()
	st.Subscriptions = o.media.Subscriptions()
	if st.Subscriptions == nil {
		st.Subscriptions = []domain.EndpointID{}
	}
	st.Audio = o.media.IsAudioEnabled()
	st.Video = o.media.IsVideoEnabled()
	return st
}

func (o *Orchestrator) Subscribe(id domain.EndpointID) error   { return o.media.Subscribe(id) }
func (o *Orchestrator) Unsubscribe(id domain.EndpointID) error { return o.media.Unsubscribe(id) }
func (o *Orchestrator) SetAudioEnabled(enabled bool)           { o.media.SetAudioEnabled(enabled) }
func (o *Orchestrator) SetVideoEnabled(enabled bool)           { o.media.SetVideoEnabled(enabled) }
func (o *Orchestrator) IsAudioEnabled() bool                   { return o.media.IsAudioEnabled() }
func (o *Orchestrator) IsVideoEnabled() bool                   { return o.media.IsVideoEnabled() }

func (o *Orchestrator) active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == Active
}

// onJoined moves Connecting to Active and reports whether it did.
func (o *Orchestrator) onJoined(clientID domain.EndpointID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Connecting {
		return false
	}
	o.state = Active
	o.clientID = clientID
	return true
}

func (o *Orchestrator) bindLocal() {
	if o.views == nil {
		return
	}
	o.views.GetLocalSlot().Attach(media.LocalStreamID)
}
