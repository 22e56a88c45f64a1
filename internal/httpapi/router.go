// Package httpapi exposes the validation pipeline over HTTP with gin.
package httpapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/entity"
)

// Validator runs one submission; core.Processor implements it.
type Validator interface {
	Validate(ctx context.Context, bt constants.BeverageType, form entity.FormData, images []entity.LabelImage) (entity.Report, error)
}

// HealthChecker reports whether the OCR engine can serve requests.
type HealthChecker interface {
	Name() string
	Available(ctx context.Context) error
}

type Options struct {
	MaxUploadBytes int64
	HealthTimeout  time.Duration
}

const headerRequestID = "X-Request-ID"

type handler struct {
	validator Validator
	health    HealthChecker
	logger    *slog.Logger
	opts      Options
}

// NewRouter builds the gin engine serving /health, /rules and /analyze.
func NewRouter(v Validator, health HealthChecker, logger *slog.Logger, opts Options) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = 5 * time.Second
	}
	h := &handler{validator: v, health: health, logger: logger, opts: opts}

	router := gin.New()
	router.MaxMultipartMemory = opts.MaxUploadBytes
	router.Use(gin.Recovery(), requestID(), accessLog(logger))

	router.GET("/health", h.getHealth)
	router.GET("/rules", h.getRules)
	router.POST("/analyze", h.postAnalyze)
	return router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"request_id", common.RequestIDFromContext(c.Request.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
