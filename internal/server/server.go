// Package server exposes the thin HTTP surface through which the upload
// collaborator hands statements in and dashboards read summaries out.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/royaltyflow/internal/config"
	ingestdomain "github.com/smallbiznis/royaltyflow/internal/ingest/domain"
	royaltydomain "github.com/smallbiznis/royaltyflow/internal/royalty/domain"
)

type ServerParam struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	IngestSvc  ingestdomain.Service
	RoyaltySvc royaltydomain.Service
}

type Server struct {
	cfg        config.Config
	log        *zap.Logger
	ingestSvc  ingestdomain.Service
	royaltySvc royaltydomain.Service
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		ingestSvc:  p.IngestSvc,
		royaltySvc: p.RoyaltySvc,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		v1.POST("/artists/:artist_id/royalty-imports", s.ImportRoyalties)
		v1.GET("/artists/:artist_id/royalty-summaries", s.ListRoyaltySummaries)
	}
	return r
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(runServer),
)

func runServer(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			s.log.Info("http server listening", zap.String("addr", s.cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
