package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ConnectRequest struct {
	Room     string `json:"room" binding:"required,max=64"`
	Identity string `json:"identity" binding:"max=64"`
	Secret   string `json:"secret"`
}

type TrackRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SessionResponse is what the cookie session remembers about the last
// accepted connect.
type SessionResponse struct {
	Room     string `json:"room"`
	Identity string `json:"identity,omitempty"`
}

type handlers struct {
	ctl Controller
}

func (h *handlers) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctl.Status())
}

func (h *handlers) connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid room"})
		return
	}
	if err := h.ctl.Connect(req.Room, req.Identity, req.Secret); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Str("room", req.Room).Msg("connect rejected")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	s := sessions.Default(c)
	s.Set("room", req.Room)
	s.Set("identity", req.Identity)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
	}
	c.JSON(http.StatusAccepted, h.ctl.Status())
}

func (h *handlers) session(c *gin.Context) {
	s := sessions.Default(c)
	room, _ := s.Get("room").(string)
	if room == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no previous connect"})
		return
	}
	identity, _ := s.Get("identity").(string)
	c.JSON(http.StatusOK, SessionResponse{Room: room, Identity: identity})
}

func (h *handlers) disconnect(c *gin.Context) {
	h.ctl.Disconnect()
	c.JSON(http.StatusOK, h.ctl.Status())
}

func (h *handlers) subscribe(c *gin.Context) {
	h.subscription(c, h.ctl.Subscribe)
}

func (h *handlers) unsubscribe(c *gin.Context) {
	h.subscription(c, h.ctl.Unsubscribe)
}

func (h *handlers) subscription(c *gin.Context, apply func(domain.EndpointID) error) {
	id, err := domain.ParseIdentity(c.Param("endpoint"))
	if err == nil {
		err = apply(id)
	}
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": h.ctl.Status().Subscriptions})
}

func (h *handlers) setTrack(c *gin.Context) {
	var set func(bool)
	switch c.Param("kind") {
	case "audio":
		set = h.ctl.SetAudioEnabled
	case "video":
		set = h.ctl.SetVideoEnabled
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown track kind"})
		return
	}
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing enabled flag"})
		return
	}
	set(*req.Enabled)
	st := h.ctl.Status()
	c.JSON(http.StatusOK, gin.H{"audio": st.Audio, "video": st.Video})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrSessionReleased),
		errors.Is(err, domain.ErrSelfSubscription):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRoomEmpty),
		errors.Is(err, domain.ErrRoomTooLong),
		errors.Is(err, domain.ErrIdentityEmpty),
		errors.Is(err, domain.ErrIdentityTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
