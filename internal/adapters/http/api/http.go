// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/vigil/internal/domain/model"
	"github.com/okian/vigil/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// AttentionOn returns attention events flagged exactly on date.
	AttentionOn(ctx context.Context, date time.Time) ([]model.AttentionEvent, error)

	// DispositionsCovering returns disposition intervals containing date.
	DispositionsCovering(ctx context.Context, date time.Time) ([]model.DispositionInterval, error)

	// Assess classifies one security as of ref.
	Assess(ctx context.Context, code string, ref time.Time) (model.RiskAssessment, error)

	// RiskReport returns the non-safe securities, most severe first.
	RiskReport(ctx context.Context, ref time.Time) ([]model.RiskAssessment, error)
}

// StatsProvider supplies the live numbers behind GET /stats.
type StatsProvider interface {
	GetStats(ctx context.Context) map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	attentionHandler   *AttentionHandler
	dispositionHandler *DispositionHandler
	riskHandler        *RiskHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		attentionHandler:   NewAttentionHandler(deps),
		dispositionHandler: NewDispositionHandler(deps),
		riskHandler:        NewRiskHandler(deps),
	}
}

// NewRouter builds a gin engine with all routes and middleware attached.
func (s *Server) NewRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), MetricsMiddleware())

	router.GET("/healthz", s.healthHandler.HandleHealth)
	router.GET("/stats", s.statsHandler.HandleStats)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		metrics.GetRegistry(),
		promhttp.HandlerOpts{},
	)))

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/attention", s.attentionHandler.HandleGetAttention)
		apiGroup.GET("/disposition", s.dispositionHandler.HandleGetDisposition)
		apiGroup.GET("/risk", s.riskHandler.HandleGetRiskReport)
		apiGroup.GET("/securities/:code/risk", s.riskHandler.HandleGetSecurityRisk)
	}

	return router
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, errorResponse{Code: code, Message: msg})
}

// queryDate reads the optional ?date=YYYY-MM-DD parameter, defaulting to
// today at UTC midnight.
func queryDate(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(time.DateOnly, raw)
}
