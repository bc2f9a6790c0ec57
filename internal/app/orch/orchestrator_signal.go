package orch

import (
	"github.com/dkeye/VoiceClient/internal/core"
	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/rs/zerolog/log"
)

type signalHandler struct {
	o *Orchestrator
}

var _ core.SignalingEvents = signalHandler{}

func (h signalHandler) OnConnected(params domain.SignalingParameters) {
	o := h.o
	if !o.onJoined(params.ClientID) {
		log.Warn().Str("module", "orch").Str("state", o.State().String()).Msg("join result ignored")
		return
	}
	log.Info().
		Str("module", "orch").
		Str("client_id", string(params.ClientID)).
		Int("ice_servers", len(params.ICEServers)).
		Msg("joined")

	o.media.Prepare(params)
	o.bindLocal()
	if params.InitialOffer == nil {
		log.Error().Str("module", "orch").Msg("connection failed: join returned no offer")
		return
	}
	o.media.ApplyRemoteOffer(*params.InitialOffer)
}

func (h signalHandler) OnRemoteDescription(desc domain.SessionDescription) {
	if !h.o.active() {
		log.Debug().Str("module", "orch").Msg("remote description outside active session dropped")
		return
	}
	h.o.media.ApplyRemoteOffer(desc)
}

func (h signalHandler) OnChannelClose() {
	log.Info().Str("module", "orch").Msg("signal channel closed")
}

func (h signalHandler) OnChannelError(description string) {
	log.Error().Str("module", "orch").Str("error", description).Msg("signal channel error")
}
