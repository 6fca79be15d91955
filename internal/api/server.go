// Package api wires the HTTP surface: the liveness probe, the /fetch
// endpoint and the metrics scrape.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/david/offers-bff/internal/cache"
	"github.com/david/offers-bff/internal/engine"
	"github.com/david/offers-bff/internal/metrics"
	"github.com/david/offers-bff/internal/upstream"
)

type Server struct {
	Echo  *echo.Echo
	Cache *cache.Cache

	log *zap.Logger
}

func NewServer(snapshots *cache.Cache, corsOrigins []string, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s := &Server{
		Echo:  e,
		Cache: snapshots,
		log:   log,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/", s.handleHealth)
	s.Echo.POST("/fetch", s.handleFetch)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleFetch(c echo.Context) error {
	start := time.Now()
	status, err := s.fetch(c)
	metrics.FetchRequests.WithLabelValues(strconv.Itoa(status)).Inc()
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	return err
}

func (s *Server) fetch(c echo.Context) (int, error) {
	criteria, err := BindCriteria(c.Request().Body)
	if err != nil {
		return http.StatusBadRequest, c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	snapshot, err := s.Cache.Get(c.Request().Context())
	if err != nil {
		// Only a cold start can end up here; once a snapshot exists the
		// cache serves stale data through upstream failures.
		s.log.Error("no snapshot available", zap.Error(err))
		var upstreamErr *upstream.Error
		if errors.As(err, &upstreamErr) {
			return http.StatusBadGateway, c.JSON(http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		}
		return http.StatusInternalServerError, c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	response := engine.ComputeResponse(snapshot, criteria)
	return http.StatusOK, c.JSON(http.StatusOK, response)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
