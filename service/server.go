package service

import (
	"context"
	_ "embed"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ibreez3/pixel-ai/chat"
)

//go:embed web/index.html
var indexHTML []byte

type SubmitReq struct {
	Text string `json:"text"`
}

type ModelReq struct {
	Model string `json:"model"`
}

type CompleteReq struct {
	Messages []chat.Turn `json:"messages" binding:"dive"`
	Model    string      `json:"model"`
}

type KeyResp struct {
	Configured bool   `json:"configured"`
	KeyPrefix  string `json:"keyPrefix,omitempty"`
	Message    string `json:"message"`
}

// Server exposes one orchestrator session and the raw gateway over HTTP.
type Server struct {
	orch    *chat.Orchestrator
	gateway chat.Gateway
	metrics *Metrics
	log     *slog.Logger
}

func NewServer(orch *chat.Orchestrator, gw chat.Gateway, metrics *Metrics, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{orch: orch, gateway: gw, metrics: metrics, log: log}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	api.GET("/state", s.getState)
	api.GET("/models", s.getModels)
	api.PUT("/model", s.putModel)
	api.PUT("/input", s.putInput)
	api.POST("/theme", s.toggleTheme)
	api.POST("/messages", s.postMessage)
	api.GET("/events", s.events)

	gw := api.Group("/gateway")
	gw.GET("/key", s.gatewayKey)
	gw.POST("/complete", s.gatewayComplete)
	return r
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.orch.Snapshot())
}

func (s *Server) getModels(c *gin.Context) {
	c.JSON(http.StatusOK, GetCatalog(s.orch.Catalog(), s.orch.Snapshot().Model))
}

func (s *Server) putModel(c *gin.Context) {
	var req ModelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.orch.SetModel(req.Model); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chat.ErrUnknownModel) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.orch.Snapshot())
}

func (s *Server) putInput(c *gin.Context) {
	var req SubmitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.orch.SetInput(req.Text)
	c.Status(http.StatusNoContent)
}

func (s *Server) toggleTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": s.orch.ToggleTheme()})
}

// postMessage blocks until the submission resolves. The request context is
// detached so a closed browser tab does not abort the completion call.
func (s *Server) postMessage(c *gin.Context) {
	var req SubmitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	accepted := s.orch.Submit(context.WithoutCancel(c.Request.Context()), req.Text)
	c.JSON(http.StatusOK, gin.H{"accepted": accepted, "state": s.orch.Snapshot()})
}

func (s *Server) events(c *gin.Context) {
	states, cancel := s.orch.Subscribe()
	defer cancel()
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case st, ok := <-states:
			if !ok {
				return false
			}
			c.SSEvent("state", st)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (s *Server) gatewayKey(c *gin.Context) {
	probe, err := s.gateway.CheckKeyStatus(c.Request.Context())
	if err != nil {
		s.log.Warn("gateway key probe failed", "error", err)
	}
	status := chat.DescribeKey(probe, err)
	c.JSON(http.StatusOK, KeyResp{Configured: status.Configured, KeyPrefix: probe.KeyPrefix, Message: status.Message})
}

func (s *Server) gatewayComplete(c *gin.Context) {
	var req CompleteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages must not be empty"})
		return
	}
	if req.Model == "" {
		req.Model = s.orch.Catalog().Balanced.ID
	}
	if _, ok := s.orch.Catalog().Lookup(req.Model); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown model: " + req.Model})
		return
	}
	c.JSON(http.StatusOK, s.gateway.Complete(c.Request.Context(), req.Messages, req.Model))
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
