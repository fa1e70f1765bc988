package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/edupode/mysterybox/internal/config"
	"github.com/edupode/mysterybox/internal/handler"
	"github.com/edupode/mysterybox/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

// Server は echo に共通のHTTPタイムアウトを付けたものです。
type Server struct {
	cfg  config.Config
	echo *echo.Echo
}

func New(cfg config.Config, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.Store.FrontendURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, handler.HeaderSessionID},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}))

	RegisterRoutes(e, cfg, h)

	return &Server{cfg: cfg, echo: e}
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// 停止までブロック。http.ErrServerClosedはエラー扱いしない
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("port", s.cfg.Port).Str("env", s.cfg.GoEnv).Msg("Starting server")
	if err := s.echo.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
