package orch

import (
	"github.com/dkeye/VoiceClient/internal/core"
	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/rs/zerolog/log"
)

type mediaHandler struct {
	o *Orchestrator
}

var _ core.MediaEvents = mediaHandler{}

func (h mediaHandler) OnLocalDescription(desc domain.SessionDescription) {
	if !h.o.active() {
		return
	}
	h.o.signal.SendAnswer(desc)
}

func (h mediaHandler) OnRenegotiationNeeded(current domain.SessionDescription) {
	if !h.o.active() {
		return
	}
	log.Info().Str("module", "orch").Msg("requesting updated offer")
	h.o.signal.UpdateOffer(current)
}

func (h mediaHandler) OnIceConnected() {
	log.Info().Str("module", "orch").Msg("ice connected")
}

func (h mediaHandler) OnIceDisconnected() {
	log.Warn().Str("module", "orch").Msg("ice disconnected")
}

func (h mediaHandler) OnConnected() {
	log.Info().Str("module", "orch").Msg("media connected")
}

func (h mediaHandler) OnDisconnected() {
	log.Warn().Str("module", "orch").Msg("media disconnected")
}

func (h mediaHandler) OnPeerConnectionClosed() {
	log.Info().Str("module", "orch").Msg("peer connection closed")
}

func (h mediaHandler) OnPeerConnectionError(description string) {
	log.Error().Str("module", "orch").Str("error", description).Msg("peer connection error")
}

func (h mediaHandler) OnStreamAdded(id domain.StreamID) {
	if !h.o.active() || h.o.views == nil {
		return
	}
	slot, ok := h.o.views.GetRemoteSlot(id)
	if !ok {
		log.Warn().Str("module", "orch").Str("stream_id", string(id)).Msg("stream not shown, no free slot")
		return
	}
	slot.Attach(id)
}

func (h mediaHandler) OnStreamRemoved(id domain.StreamID) {
	if h.o.views == nil {
		return
	}
	if slot, ok := h.o.views.GetRemoteSlot(id); ok {
		slot.Detach()
	}
}
