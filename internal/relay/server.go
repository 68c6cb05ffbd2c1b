package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"caylak-bot/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrChannelNotFound is returned by a Forwarder when the target channel does
// not exist; the relay maps it to 404.
var ErrChannelNotFound = errors.New("channel not found")

// Forwarder delivers relayed text to a channel. The bot is the production
// implementation.
type Forwarder interface {
	Forward(channelID, content string) error
}

type Server struct {
	cfg       config.RelayConfig
	forwarder Forwarder
	logger    *zap.Logger
	engine    *gin.Engine
	srv       *http.Server
}

type relayRequest struct {
	Text      string `json:"text"`
	ChannelID string `json:"channel_id"`
}

func NewServer(cfg config.RelayConfig, forwarder Forwarder, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		cfg:       cfg,
		forwarder: forwarder,
		logger:    logger,
		engine:    engine,
	}
	engine.POST(cfg.Path, s.handleRelay)
	engine.GET("/health", s.handleHealth)
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("relay listening", zap.String("addr", s.srv.Addr), zap.String("path", s.cfg.Path))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleRelay(c *gin.Context) {
	var req relayRequest
	// A malformed body degrades to the defaults rather than failing the relay.
	_ = c.ShouldBindJSON(&req)

	text := req.Text
	if text == "" {
		text = "Mesaj yok"
	}
	channelID := req.ChannelID
	if channelID == "" {
		channelID = s.cfg.DefaultChannelID
	}
	if channelID == "" {
		s.logger.Warn("relay rejected, no channel id")
		c.String(http.StatusBadRequest, "channel_id veya CHANNEL_ID_N8N tanımlı değil")
		return
	}

	if err := s.forwarder.Forward(channelID, text); err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			s.logger.Warn("relay channel not found", zap.String("channel_id", channelID))
			c.String(http.StatusNotFound, "Channel not found")
			return
		}
		s.logger.Error("relay forward failed", zap.String("channel_id", channelID), zap.Error(err))
		c.String(http.StatusInternalServerError, "Error")
		return
	}

	c.String(http.StatusOK, "OK")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
