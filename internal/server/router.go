package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	"github.com/fekuna/rims-inventory-service/internal/ledger"
	ledgerDto "github.com/fekuna/rims-inventory-service/internal/ledger/dto"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/part"
	"github.com/fekuna/rims-inventory-service/internal/request"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	AllowedOrigins []string
	Requests       request.UseCase
	Ledger         ledger.UseCase
	Parts          part.UseCase
	// Ping reports storage health for /healthz. Optional.
	Ping   func(ctx context.Context) error
	Logger logger.ZapLogger
}

// NewRouter serves the read-only supply board API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(cfg.Logger))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AddAllowHeaders("Authorization", "Accept-Language", "X-User-Id")
	r.Use(cors.New(corsConfig))

	h := &boardHandler{cfg: cfg}
	r.GET("/healthz", h.health)

	api := r.Group("/api")
	api.GET("/requests/queue", h.queue)
	api.GET("/movements", h.movements)
	api.GET("/parts/search", h.searchParts)

	return r
}

type boardHandler struct {
	cfg RouterConfig
}

func (h *boardHandler) health(c *gin.Context) {
	if h.cfg.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.cfg.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *boardHandler) queue(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.cfg.Requests.ListPendingQueue(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	counts := map[string]int{request.UrgencyNew: 0, request.UrgencyWaiting: 0, request.UrgencyDelayed: 0}
	for _, it := range items {
		counts[it.Urgency]++
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "counts": counts})
}

func (h *boardHandler) movements(c *gin.Context) {
	var filters ledgerDto.MovementFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		writeError(c, apperror.InvalidInput("bad query", err))
		return
	}
	items, total, err := h.cfg.Ledger.ListMovements(c.Request.Context(), &filters)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *boardHandler) searchParts(c *gin.Context) {
	parts, err := h.cfg.Parts.SearchParts(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": parts})
}

func writeError(c *gin.Context, err error) {
	code := apperror.CodeOf(err)
	c.AbortWithStatusJSON(HTTPStatus(code), gin.H{
		"code":    code,
		"message": Message(c.GetHeader("Accept-Language"), err),
	})
}

func zapLoggerMiddleware(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
