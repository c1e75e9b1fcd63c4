// Package http exposes a read-only operational API over the record store:
// giveaway listings, winner lists, aggregate stats and the audit log. All
// mutation goes through the bot command surface.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SDWZORO/GiveAwayBot/internal/common/logger"
	"github.com/SDWZORO/GiveAwayBot/internal/http/middleware"
	"github.com/SDWZORO/GiveAwayBot/internal/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ServerOptions struct {
	Port   int
	Origin string
	Debug  bool
}

type Server struct {
	store *store.Store
	srv   *http.Server
	log   zerolog.Logger
}

func NewServer(st *store.Store, opts ServerOptions) *Server {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		store: st,
		log:   logger.With("http"),
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{opts.Origin}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	s.routes(router)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(router *gin.Engine) {
	router.GET("/health", s.handleHealth)
	router.GET("/live", func(c *gin.Context) { c.Status(http.StatusOK) })

	v1 := router.Group("/api/v1")
	{
		giveaways := v1.Group("/giveaways")
		{
			giveaways.GET("", s.handleListGiveaways)
			giveaways.GET("/:id", s.handleGetGiveaway)
			giveaways.GET("/:id/participants", s.handleGetParticipants)
			giveaways.GET("/:id/winners", s.handleGetWinners)
		}
		v1.GET("/users/:id", s.handleGetUser)
		v1.GET("/stats", s.handleStats)
		v1.GET("/logs", s.handleLogs)
	}
}

// Start runs the listener until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("Starting HTTP server")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.srv.Shutdown(ctx)
}
