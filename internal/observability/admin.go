package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// StatusFunc reports process-specific state for the /status endpoint.
type StatusFunc func() any

// Admin is the read-only HTTP surface of a feed process: health, readiness,
// Prometheus metrics and a status document.
type Admin struct {
	ID      string
	Addr    string
	Started time.Time

	router *gin.Engine
	status StatusFunc
	server *http.Server
}

func NewAdmin(id, addr string, corsOrigins []string, status StatusFunc) *Admin {
	RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log.Logger))
	r.Use(RequestMetricsMiddleware(id))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	a := &Admin{
		ID:      id,
		Addr:    addr,
		Started: time.Now(),
		router:  r,
		status:  status,
	}
	a.registerRoutes()
	return a
}

func (a *Admin) Handler() http.Handler {
	return a.router
}

func (a *Admin) registerRoutes() {
	a.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(a.Started).String(),
			"service": a.ID,
		})
	})
	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	a.router.GET("/status", func(c *gin.Context) {
		var body any = gin.H{}
		if a.status != nil {
			body = a.status()
		}
		c.JSON(http.StatusOK, body)
	})
}

// Serve blocks until ctx is done or the listener fails.
func (a *Admin) Serve(ctx context.Context) error {
	a.server = &http.Server{
		Addr:              a.Addr,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.Addr).Msg("admin listening")
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
