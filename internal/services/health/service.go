package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/telemetry"
)

const defaultCheckTimeout = 2 * time.Second

// Pinger is satisfied by every cache backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	Cache       Pinger
	CacheName   string
	Provider    string
	Model       string
	CheckTimeout time.Duration
}

// Status is the /health payload.
type Status struct {
	OK       bool              `json:"ok"`
	Provider string            `json:"provider,omitempty"`
	Model    string            `json:"model,omitempty"`
	Checks   map[string]string `json:"checks"`
}

// NewService constructs a new health service.
func NewService(cache Pinger, cacheName, provider, model string) *Service {
	return &Service{Cache: cache, CacheName: cacheName, Provider: provider, Model: model}
}

// Status pings the result store. A failed ping marks the service unhealthy.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Provider: s.Provider, Model: s.Model, Checks: map[string]string{}}
	if s.Cache == nil {
		return st
	}
	name := s.CacheName
	if name == "" {
		name = "cache"
	}

	timeout := s.CheckTimeout
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Cache.Ping(ctx); err != nil {
		st.OK = false
		st.Checks[name] = "down"
		telemetry.Warn("health.check_failed", map[string]any{
			"check": name,
			"error": err.Error(),
		})
		return st
	}
	st.Checks[name] = "up"
	return st
}

// Handle serves the health payload, with 503 when a check fails.
func (s *Service) Handle(c *gin.Context) {
	st := s.Status(c.Request.Context())
	code := http.StatusOK
	if !st.OK {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, st)
}
