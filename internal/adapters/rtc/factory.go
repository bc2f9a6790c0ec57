package rtc

import (
	"fmt"

	"github.com/dkeye/VoiceClient/internal/core"
	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/pion/logging"
	"github.com/pion/webrtc/v4"
)

// Factory builds pion peer connections from one shared API so codecs and
// logging are configured once.
type Factory struct {
	api *webrtc.API
}

var _ core.PeerConnectionFactory = (*Factory)(nil)

func NewFactory(loggerFactory logging.LoggerFactory) (*Factory, error) {
	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("register codecs: %w", err)
	}
	s := webrtc.SettingEngine{}
	if loggerFactory != nil {
		s.LoggerFactory = loggerFactory
	}
	return &Factory{api: webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithSettingEngine(s))}, nil
}

func (f *Factory) NewPeerConnection(cfg core.PeerConfig, obs core.PeerObserver) (core.PeerConnection, error) {
	return NewWebRTCConnection(f.api, Configuration(cfg.ICEServers), cfg, obs)
}

// Configuration converts domain ICE servers. An empty list yields a
// host-candidates-only configuration.
func Configuration(servers []domain.ICEServer) webrtc.Configuration {
	out := webrtc.Configuration{SDPSemantics: webrtc.SDPSemanticsUnifiedPlan}
	for _, s := range servers {
		ice := webrtc.ICEServer{URLs: append([]string(nil), s.URLs...)}
		if s.Username != "" {
			ice.Username = s.Username
			ice.Credential = s.Credential
			ice.CredentialType = webrtc.ICECredentialTypePassword
		}
		out.ICEServers = append(out.ICEServers, ice)
	}
	return out
}
