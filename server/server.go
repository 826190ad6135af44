// Package server exposes the record store and similarity engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pedrohavay/recordlink/config"
	"github.com/pedrohavay/recordlink/linkage"
	"github.com/pedrohavay/recordlink/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"
)

// Options wires a Server to its collaborators.
type Options struct {
	AppName  string
	Version  string
	HTTP     config.HTTPConfig
	Match    config.MatchConfig
	Store    *linkage.Store
	Profiles linkage.Profiles
	Logger   *zap.Logger
}

type Server struct {
	echo      *echo.Echo
	http      config.HTTPConfig
	logger    *zap.Logger
	store     *linkage.Store
	engines   map[string]*linkage.Engine
	profile   string
	threshold float64
	region    string
	health    *Checker
}

type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

// New builds the echo instance and registers every route. The default
// profile must exist in opts.Profiles.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.Named("http")
	if opts.Store == nil {
		opts.Store = linkage.NewStore()
	}
	if opts.Profiles == nil {
		opts.Profiles = linkage.NewProfiles()
	}
	if _, err := opts.Profiles.Get(opts.Match.Profile); err != nil {
		return nil, fmt.Errorf("default weight profile: %w", err)
	}

	engines := make(map[string]*linkage.Engine, len(opts.Profiles))
	for name, prof := range opts.Profiles {
		engines[name] = prof.Engine()
	}

	profile := opts.Match.Profile
	if profile == "" {
		profile = linkage.DefaultProfile
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(otelecho.Middleware(opts.AppName))
	e.Use(Logger(logger))

	s := &Server{
		echo:      e,
		http:      opts.HTTP,
		logger:    logger,
		store:     opts.Store,
		engines:   engines,
		profile:   profile,
		threshold: opts.Match.Threshold,
		region:    opts.Match.DefaultPhoneRegion,
		health:    NewChecker(opts.Version),
	}
	s.routes()
	metrics.StoreRecords.Set(float64(s.store.Len()))
	return s, nil
}

func (s *Server) routes() {
	s.health.RegisterRoutes(s.echo)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api/v1/persons")
	api.GET("", s.listPersons)
	api.POST("/similarity", s.similarity)
	api.GET("/:id", s.getPerson)
	api.PUT("/:id", s.putPerson)
	api.DELETE("/:id", s.deletePerson)
	api.GET("/:id/similar", s.similar)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.http.Addr(),
		Handler:      s.echo,
		ReadTimeout:  s.http.ReadTimeout,
		WriteTimeout: s.http.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", srv.Addr))
		s.health.SetReady(true)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.health.SetReady(false)
	timeout := s.http.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down http server", zap.Duration("timeout", timeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
