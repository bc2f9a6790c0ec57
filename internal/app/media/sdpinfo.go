package media

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/pion/sdp/v3"
)

var errEmptySDP = errors.New("empty session description")

type sdpSummary struct {
	Media   int
	Streams []domain.StreamID
}

func (s sdpSummary) streamStrings() []string {
	out := make([]string, len(s.Streams))
	for i, id := range s.Streams {
		out[i] = string(id)
	}
	return out
}

// describeSDP parses raw and reports its media sections and msid stream ids
// in order of first appearance.
func describeSDP(raw string) (sdpSummary, error) {
	if strings.TrimSpace(raw) == "" {
		return sdpSummary{}, errEmptySDP
	}
	var desc sdp.SessionDescription
	if err := desc.UnmarshalString(raw); err != nil {
		return sdpSummary{}, fmt.Errorf("parse offer: %w", err)
	}

	out := sdpSummary{Media: len(desc.MediaDescriptions)}
	seen := make(map[domain.StreamID]struct{})
	for _, md := range desc.MediaDescriptions {
		v, ok := md.Attribute("msid")
		if !ok {
			continue
		}
		fields := strings.Fields(v)
		if len(fields) == 0 || fields[0] == "-" {
			continue
		}
		id := domain.StreamID(fields[0])
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out.Streams = append(out.Streams, id)
	}
	return out, nil
}
