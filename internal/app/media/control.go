package media

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrMalformedControl = errors.New("malformed control message")

type controlMessage struct {
	Class           string              `json:"colibriClass"`
	Active          bool                `json:"active"`
	Endpoint        domain.EndpointID   `json:"endpoint"`
	PinnedEndpoints []domain.EndpointID `json:"pinnedEndpoints"`
}

type pinnedMessage struct {
	Class           domain.ControlKind  `json:"colibriClass"`
	PinnedEndpoints []domain.EndpointID `json:"pinnedEndpoints"`
}

// DecodeControlEvents decodes every JSON object in data, line by line. A bad
// object is skipped and reported in the returned error; a syntax error drops
// the rest of its line only. Decoding continues with the next line.
func DecodeControlEvents(data []byte) ([]domain.ControlEvent, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), len(data)+1)
	var (
		out  []domain.ControlEvent
		errs []error
	)
	for sc.Scan() {
		dec := json.NewDecoder(bytes.NewReader(sc.Bytes()))
		for {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				if !errors.Is(err, io.EOF) {
					errs = append(errs, fmt.Errorf("%w: %v", ErrMalformedControl, err))
				}
				break
			}
			ev, err := decodeControlEvent(raw)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, ev)
		}
	}
	if err := sc.Err(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrMalformedControl, err))
	}
	if len(out) == 0 && len(errs) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedControl)
	}
	return out, errors.Join(errs...)
}

func decodeControlEvent(raw json.RawMessage) (domain.ControlEvent, error) {
	var msg controlMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedControl, err)
	}
	switch domain.ControlKind(msg.Class) {
	case "":
		return nil, fmt.Errorf("%w: missing colibriClass", ErrMalformedControl)
	case domain.ControlEndpointConnectivityStatusChanged:
		if msg.Endpoint == "" {
			return nil, fmt.Errorf("%w: %s without endpoint", ErrMalformedControl, msg.Class)
		}
		return domain.EndpointConnectivityStatusChanged{Endpoint: msg.Endpoint, Active: msg.Active}, nil
	case domain.ControlEndpointExpired:
		if msg.Endpoint == "" {
			return nil, fmt.Errorf("%w: %s without endpoint", ErrMalformedControl, msg.Class)
		}
		return domain.EndpointExpired{Endpoint: msg.Endpoint}, nil
	case domain.ControlPinnedEndpointsChanged:
		return domain.PinnedEndpointsChanged{PinnedEndpoints: msg.PinnedEndpoints}, nil
	default:
		return domain.UnknownControlEvent{Class: msg.Class, Raw: slices.Clone(raw)}, nil
	}
}

// EncodePinnedEndpoints renders the subscription push. Ids are sorted and an
// empty set is encoded as an empty array.
func EncodePinnedEndpoints(ids []domain.EndpointID) ([]byte, error) {
	sorted := append(make([]domain.EndpointID, 0, len(ids)), ids...)
	slices.Sort(sorted)
	return json.Marshal(pinnedMessage{
		Class:           domain.ControlPinnedEndpointsChanged,
		PinnedEndpoints: sorted,
	})
}

func (s *Session) handleControl(data []byte) {
	events, err := DecodeControlEvents(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "media").Int("bytes", len(data)).Int("decoded", len(events)).Msg("malformed control input dropped")
	}
	for _, ev := range events {
		s.onControlEvent(ev)
	}
}

func (s *Session) onControlEvent(ev domain.ControlEvent) {
	switch ev := ev.(type) {
	case domain.EndpointConnectivityStatusChanged:
		s.opts.Metrics.ControlEvent(string(ev.Kind()))
		s.mu.Lock()
		self := ev.Endpoint == s.identity
		s.mu.Unlock()
		log.Debug().
			Str("module", "media").
			Str("endpoint", string(ev.Endpoint)).
			Bool("active", ev.Active).
			Msg("endpoint connectivity")
		if ev.Active && !self {
			s.scheduleRenegotiation()
		}
	case domain.EndpointExpired:
		s.opts.Metrics.ControlEvent(string(ev.Kind()))
		log.Info().Str("module", "media").Str("endpoint", string(ev.Endpoint)).Msg("endpoint expired")
		s.scheduleRenegotiation()
		s.removeStream(domain.StreamID(ev.Endpoint))
	case domain.PinnedEndpointsChanged:
		s.opts.Metrics.ControlEvent(string(ev.Kind()))
		log.Debug().Str("module", "media").Msg("inbound pinned endpoints ignored")
	case domain.UnknownControlEvent:
		s.opts.Metrics.ControlEvent(string(domain.ControlUnknown))
		log.Warn().Str("module", "media").Str("class", ev.Class).Msg("unknown control event")
	}
}
