package rtc

import (
	"github.com/dkeye/VoiceClient/internal/core"
	"github.com/pion/webrtc/v4"
)

type dataChannel struct {
	dc *webrtc.DataChannel
}

var _ core.DataChannel = dataChannel{}

func (d dataChannel) Label() string { return d.dc.Label() }

func (d dataChannel) SendText(s string) error { return d.dc.SendText(s) }
