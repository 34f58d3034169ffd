package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	authUsecase "genius-keeper-backend/internal/auth/usecase"
	notificationUsecase "genius-keeper-backend/internal/notification/usecase"
	orderUsecase "genius-keeper-backend/internal/order/usecase"
	"genius-keeper-backend/internal/supervisor"
	taskUsecase "genius-keeper-backend/internal/task/usecase"
	visitUsecase "genius-keeper-backend/internal/visit/usecase"
	"genius-keeper-backend/pkg/config"
	"genius-keeper-backend/pkg/realtime"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// SupervisorScheduler runs supervisors on demand and describes their schedules.
type SupervisorScheduler interface {
	supervisor.Runner
	Entries() []supervisor.EntryInfo
	Location() *time.Location
}

// Dependencies are the usecases the HTTP API serves. Hub and Supervisors
// may be nil, which removes their routes.
type Dependencies struct {
	Config        *config.Config
	Auth          authUsecase.AuthUsecase
	Notifications notificationUsecase.NotificationUsecase
	Visits        visitUsecase.VisitUsecase
	Orders        orderUsecase.OrderUsecase
	Tasks         taskUsecase.TaskUsecase
	Supervisors   SupervisorScheduler
	Hub           *realtime.Hub
}

type Handler struct {
	deps Dependencies
	log  *logrus.Entry
}

func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		deps: deps,
		log:  logrus.WithField("component", "api"),
	}
}

// Router builds the gin engine with every route mounted.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.deps)
	return r
}

// Start serves the API on addr until ctx is cancelled, then drains
// in-flight requests.
func (h *Handler) Start(ctx context.Context, addr string) error {
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.log.WithField("addr", addr).Info("[API] Server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	h.log.Info("[API] Shutting down")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("[API] request failed")
			return
		}
		entry.Debug("[API] request")
	}
}
