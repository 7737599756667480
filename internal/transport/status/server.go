package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/KotFed0t/portfolio_mood_light/config"
	"github.com/KotFed0t/portfolio_mood_light/internal/transport/status/middleware"
	"github.com/gin-gonic/gin"
)

type Server struct {
	srv *http.Server
}

func NewRouter(ctrl *Controller) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	r.GET("/healthz", ctrl.Healthz)
	r.GET("/snapshot", ctrl.Snapshot)
	r.GET("/mood", ctrl.Mood)

	return r
}

func NewServer(cfg *config.Config, board *Board) *Server {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Server{
		srv: &http.Server{
			Addr:              cfg.Status.Addr,
			Handler:           NewRouter(NewController(board)),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *Server) Start() {
	go func() {
		slog.Info("status server starting", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("status server failed", slog.String("err", err.Error()))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
