package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Check is a named readiness probe.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Handler serves liveness and readiness endpoints.
type Handler struct {
	service string
	checks  []Check
	started time.Time
}

// NewHandler creates a Handler running the given readiness checks.
func NewHandler(service string, checks ...Check) *Handler {
	return &Handler{service: service, checks: checks, started: time.Now()}
}

// GormCheck pings a GORM-managed connection pool.
func GormCheck(db *gorm.DB) Check {
	return Check{
		Name: "postgres",
		Fn: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

// MongoCheck pings a MongoDB client.
func MongoCheck(client *mongo.Client) Check {
	return Check{
		Name: "mongo",
		Fn: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
	}
}

// RegisterRoutes registers /health and /ready.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Liveness)
	r.GET("/ready", h.Readiness)
}

// Liveness reports that the process is serving.
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.service,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// Readiness runs every check and reports 503 if any fails.
func (h *Handler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.Fn(ctx); err != nil {
			results[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[check.Name] = "ok"
	}

	c.JSON(status, gin.H{
		"service": h.service,
		"ready":   status == http.StatusOK,
		"checks":  results,
	})
}
