// Package signal implements the conference signaling channel over HTTP.
// Every participant endpoint is one resource:
//
//	GET    {base}/conferenceGid/{room}/endpoint/{identity}  join, returns the initial offer
//	POST   ...                                               answer
//	PATCH  ...                                               current offer, returns a new offer
//	DELETE ...                                               leave
package signal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/VoiceClient/internal/core"
	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/dkeye/VoiceClient/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

var ErrBackpressure = errors.New("backpressure")

const (
	DefaultTimeout   = 10 * time.Second
	DefaultQueueSize = 32
)

type Config struct {
	ICEServers []domain.ICEServer
	Timeout    time.Duration
	QueueSize  int
	Client     *http.Client
	Metrics    metrics.Collector
}

type op int

const (
	opJoin op = iota
	opAnswer
	opUpdateOffer
	opLeave
)

func (o op) String() string {
	switch o {
	case opJoin:
		return "join"
	case opAnswer:
		return "answer"
	case opUpdateOffer:
		return "update_offer"
	case opLeave:
		return "leave"
	default:
		return "unknown"
	}
}

func (o op) method() string {
	switch o {
	case opJoin:
		return http.MethodGet
	case opAnswer:
		return http.MethodPost
	case opUpdateOffer:
		return http.MethodPatch
	default:
		return http.MethodDelete
	}
}

type request struct {
	op  op
	sdp string
}

// HTTPChannel implements core.SignalChannel. Requests run one at a time on
// a single pump goroutine, so an answer is never overtaken by a later
// update.
type HTTPChannel struct {
	conf   Config
	client *http.Client

	mu       sync.Mutex
	listener core.SignalingEvents
	params   *domain.ConnectionParameters
	leaving  bool
	closed   bool

	send   chan request
	leave  chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

var _ core.SignalChannel = (*HTTPChannel)(nil)

func NewHTTPChannel(conf Config) *HTTPChannel {
	if conf.Timeout <= 0 {
		conf.Timeout = DefaultTimeout
	}
	if conf.QueueSize <= 0 {
		conf.QueueSize = DefaultQueueSize
	}
	if conf.Metrics == nil {
		conf.Metrics = metrics.Nop{}
	}
	client := conf.Client
	if client == nil {
		client = &http.Client{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &HTTPChannel{
		conf:     conf,
		client:   client,
		listener: core.NopSignalingEvents{},
		send:     make(chan request, conf.QueueSize),
		leave:    make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	c.wg.Go(c.pump)
	return c
}

func (c *HTTPChannel) SetListener(l core.SignalingEvents) {
	if l == nil {
		l = core.NopSignalingEvents{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.listener = l
}

func (c *HTTPChannel) events() core.SignalingEvents {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listener
}

func (c *HTTPChannel) Join(params domain.ConnectionParameters) {
	c.mu.Lock()
	if c.leaving {
		c.mu.Unlock()
		log.Warn().Str("module", "signal").Msg("join after leave dropped")
		return
	}
	if c.params != nil {
		c.mu.Unlock()
		log.Warn().Str("module", "signal").Str("room", string(params.Room)).Msg("already joined, join dropped")
		return
	}
	p := params.Clone()
	c.params = &p
	c.mu.Unlock()

	log.Info().
		Str("module", "signal").
		Str("room", string(p.Room)).
		Str("endpoint", string(p.Identity)).
		Msg("join requested")
	c.enqueue(request{op: opJoin})
}

func (c *HTTPChannel) SendAnswer(sdp domain.SessionDescription) {
	c.enqueue(request{op: opAnswer, sdp: sdp.SDP})
}

func (c *HTTPChannel) UpdateOffer(sdp domain.SessionDescription) {
	c.enqueue(request{op: opUpdateOffer, sdp: sdp.SDP})
}

// Leave stops accepting requests, flushes the queue, deletes the endpoint
// and then reports OnChannelClose.
func (c *HTTPChannel) Leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.leaving {
		return
	}
	c.leaving = true
	close(c.leave)
}

// Wait blocks until the request pump has exited.
func (c *HTTPChannel) Wait() {
	c.wg.Wait()
}

// Done is closed once the channel has delivered OnChannelClose.
func (c *HTTPChannel) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *HTTPChannel) enqueue(r request) {
	c.mu.Lock()
	switch {
	case c.leaving:
		c.mu.Unlock()
		log.Warn().Str("module", "signal").Str("op", r.op.String()).Msg("request after leave dropped")
		return
	case c.params == nil:
		c.mu.Unlock()
		log.Warn().Str("module", "signal").Str("op", r.op.String()).Msg("request before join dropped")
		return
	}
	select {
	case c.send <- r:
		c.mu.Unlock()
		return
	default:
	}
	l := c.listener
	c.mu.Unlock()

	log.Error().Err(ErrBackpressure).Str("module", "signal").Str("op", r.op.String()).Msg("request queue full")
	c.conf.Metrics.SignalingRequest(r.op.String(), metrics.OutcomeDropped)
	l.OnChannelError(ErrBackpressure.Error())
}

func (c *HTTPChannel) pump() {
	for {
		select {
		case r := <-c.send:
			c.handle(r)
		case <-c.leave:
			c.drain()
			c.handle(request{op: opLeave})
			c.finishClose()
			return
		}
	}
}

func (c *HTTPChannel) drain() {
	for {
		select {
		case r := <-c.send:
			c.handle(r)
		default:
			return
		}
	}
}

func (c *HTTPChannel) handle(r request) {
	c.mu.Lock()
	params := c.params
	c.mu.Unlock()
	if params == nil {
		return
	}

	body, err := c.do(r, *params)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("op", r.op.String()).Msg("signaling request failed")
		c.conf.Metrics.SignalingRequest(r.op.String(), metrics.OutcomeError)
		c.events().OnChannelError(err.Error())
		return
	}
	c.conf.Metrics.SignalingRequest(r.op.String(), metrics.OutcomeOK)

	switch r.op {
	case opJoin:
		sp := domain.SignalingParameters{
			ICEServers: append([]domain.ICEServer(nil), c.conf.ICEServers...),
			ClientID:   params.Identity,
		}
		if strings.TrimSpace(body) != "" {
			offer := domain.NewOffer(body)
			sp.InitialOffer = &offer
		}
		log.Info().Str("module", "signal").Str("room", string(params.Room)).Bool("offer", sp.InitialOffer != nil).Msg("joined")
		c.events().OnConnected(sp)
	case opUpdateOffer:
		if strings.TrimSpace(body) == "" {
			log.Warn().Str("module", "signal").Msg("empty offer in update response")
			c.events().OnChannelError("empty offer in update response")
			return
		}
		c.events().OnRemoteDescription(domain.NewOffer(body))
	}
}

// finishClose detaches the listener before reporting so nothing follows
// OnChannelClose.
func (c *HTTPChannel) finishClose() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	l := c.listener
	c.listener = core.NopSignalingEvents{}
	c.mu.Unlock()

	log.Info().Str("module", "signal").Msg("channel closed")
	l.OnChannelClose()
	c.cancel()
	c.client.CloseIdleConnections()
}
