// Package coretest provides in-memory implementations of the core ports for tests.
package coretest

import (
	"errors"
	"strings"
	"sync"

	"github.com/dkeye/VoiceClient/internal/core"
	"github.com/dkeye/VoiceClient/internal/domain"
)

var ErrClosed = errors.New("coretest: peer connection closed")

// AnswerPrefix is prepended to the remote SDP to form the fake answer.
const AnswerPrefix = "answer/"

type FactoryFunc func(core.PeerConfig, core.PeerObserver) (core.PeerConnection, error)

func (f FactoryFunc) NewPeerConnection(cfg core.PeerConfig, obs core.PeerObserver) (core.PeerConnection, error) {
	return f(cfg, obs)
}

// Factory records every peer connection it creates.
type Factory struct {
	// Err, when set, is returned instead of a connection.
	Err error
	// Template configures new connections before they are returned.
	Template func(*PeerConnection)

	mu      sync.Mutex
	created []*PeerConnection
}

func (f *Factory) NewPeerConnection(cfg core.PeerConfig, obs core.PeerObserver) (core.PeerConnection, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	pc := NewPeerConnection(cfg, obs)
	if f.Template != nil {
		f.Template(pc)
	}
	f.mu.Lock()
	f.created = append(f.created, pc)
	f.mu.Unlock()
	return pc, nil
}

func (f *Factory) Created() []*PeerConnection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*PeerConnection(nil), f.created...)
}

// Last returns the most recently created connection or nil.
func (f *Factory) Last() *PeerConnection {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

// PeerConnection is a scripted core.PeerConnection. Gathering completes
// immediately unless Gather is set.
type PeerConnection struct {
	Config   core.PeerConfig
	Observer core.PeerObserver

	SetRemoteErr    error
	CreateAnswerErr error
	SetLocalErr     error
	// Gather, when non-nil, is returned from GatheringComplete.
	Gather chan struct{}

	mu      sync.Mutex
	remote  *domain.SessionDescription
	local   *domain.SessionDescription
	remotes []domain.SessionDescription
	closed  int
}

func NewPeerConnection(cfg core.PeerConfig, obs core.PeerObserver) *PeerConnection {
	return &PeerConnection{Config: cfg, Observer: obs}
}

func (p *PeerConnection) SetRemoteDescription(d domain.SessionDescription) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed > 0 {
		return ErrClosed
	}
	if p.SetRemoteErr != nil {
		return p.SetRemoteErr
	}
	p.remote = &d
	p.remotes = append(p.remotes, d)
	return nil
}

func (p *PeerConnection) CreateAnswer() (domain.SessionDescription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed > 0 {
		return domain.SessionDescription{}, ErrClosed
	}
	if p.CreateAnswerErr != nil {
		return domain.SessionDescription{}, p.CreateAnswerErr
	}
	if p.remote == nil {
		return domain.SessionDescription{}, errors.New("coretest: no remote description")
	}
	return domain.NewAnswer(AnswerPrefix + p.remote.SDP), nil
}

func (p *PeerConnection) SetLocalDescription(d domain.SessionDescription) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed > 0 {
		return ErrClosed
	}
	if p.SetLocalErr != nil {
		return p.SetLocalErr
	}
	p.local = &d
	return nil
}

func (p *PeerConnection) GatheringComplete() <-chan struct{} {
	if p.Gather != nil {
		return p.Gather
	}
	done := make(chan struct{})
	close(done)
	return done
}

func (p *PeerConnection) LocalDescription() (domain.SessionDescription, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.local == nil {
		return domain.SessionDescription{}, false
	}
	return *p.local, true
}

func (p *PeerConnection) RemoteDescription() (domain.SessionDescription, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.remote == nil {
		return domain.SessionDescription{}, false
	}
	return *p.remote, true
}

func (p *PeerConnection) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func (p *PeerConnection) CloseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Remotes returns every remote description applied so far.
func (p *PeerConnection) Remotes() []domain.SessionDescription {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.SessionDescription(nil), p.remotes...)
}

// DataChannel records text sent on it.
type DataChannel struct {
	Name string
	Err  error

	mu   sync.Mutex
	sent []string
}

func NewDataChannel(label string) *DataChannel {
	return &DataChannel{Name: label}
}

func (d *DataChannel) Label() string { return d.Name }

func (d *DataChannel) SendText(s string) error {
	if d.Err != nil {
		return d.Err
	}
	d.mu.Lock()
	d.sent = append(d.sent, s)
	d.mu.Unlock()
	return nil
}

func (d *DataChannel) Sent() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.sent...)
}

// SDP builds a minimal parseable offer with one audio section per stream id.
func SDP(session string, streams ...string) string {
	var b strings.Builder
	b.WriteString("v=0\r\n")
	b.WriteString("o=- 4611731400430051336 2 IN IP4 127.0.0.1\r\n")
	b.WriteString("s=" + session + "\r\n")
	b.WriteString("t=0 0\r\n")
	for i, id := range streams {
		b.WriteString("m=audio 9 UDP/TLS/RTP/SAVPF 111\r\n")
		b.WriteString("c=IN IP4 0.0.0.0\r\n")
		b.WriteString("a=mid:" + string(rune('0'+i)) + "\r\n")
		b.WriteString("a=msid:" + id + " " + id + "-audio\r\n")
		b.WriteString("a=rtpmap:111 opus/48000/2\r\n")
	}
	return b.String()
}
