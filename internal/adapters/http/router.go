// Package http serves the local control API: connect and disconnect,
// subscriptions, track toggles, a websocket feed of view slot changes and
// the metrics endpoint.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dkeye/VoiceClient/internal/app/orch"
	"github.com/dkeye/VoiceClient/internal/app/views"
	"github.com/dkeye/VoiceClient/internal/config"
	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	connectLimit    = 5
	connectInterval = time.Minute
	sessionName     = "VoiceClientSessions"
	pingPeriod      = 54 * time.Second
)

// Controller is the consumer surface of the orchestrator.
type Controller interface {
	Connect(room, identity, secret string) error
	Disconnect()
	Subscribe(domain.EndpointID) error
	Unsubscribe(domain.EndpointID) error
	SetAudioEnabled(bool)
	SetVideoEnabled(bool)
	Status() orch.Status
}

// SlotSource feeds the events websocket.
type SlotSource interface {
	Snapshot() []views.Event
	Watch(buffer int) (<-chan views.Event, func())
}

type Deps struct {
	Controller Controller
	Slots      SlotSource
	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
	// ConnectLimiter defaults to 5 attempts per minute per client IP.
	ConnectLimiter *RateLimiter
}

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	secret := cfg.Secret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn().Str("module", "adapters.http").Msg("no secret configured, sessions will not survive restart")
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	limiter := deps.ConnectLimiter
	if limiter == nil {
		limiter = NewRateLimiter(connectLimit, connectInterval)
	}
	h := &handlers{ctl: deps.Controller}
	feed := &eventFeed{
		ctx:        ctx,
		src:        deps.Slots,
		pingPeriod: cfg.PingPeriod,
		readLimit:  cfg.ReadLimit,
	}
	if feed.pingPeriod <= 0 {
		feed.pingPeriod = pingPeriod
	}

	api := r.Group("/api")
	api.GET("/status", h.status)
	api.GET("/session", h.session)
	api.POST("/connect", limiter.Middleware(), h.connect)
	api.POST("/disconnect", h.disconnect)
	api.PUT("/subscriptions/:endpoint", h.subscribe)
	api.DELETE("/subscriptions/:endpoint", h.unsubscribe)
	api.PUT("/tracks/:kind", h.setTrack)
	if deps.Slots != nil {
		api.GET("/ws/events", feed.handle)
	}
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
