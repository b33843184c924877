package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"dexquote/internal/service"
)

// Server is the HTTP front end. It owns the echo instance and translates
// service errors to status codes; all business logic stays in the service.
type Server struct {
	echo    *echo.Echo
	service *service.Service
	logger  *zap.Logger
}

func New(svc *service.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, service: svc, logger: logger}
	e.Use(s.requestLogger)

	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/tokens", s.handleTokens)
	e.POST("/v1/balance", s.handleBalance)
	e.POST("/v1/price", s.handlePrice)
	e.POST("/v1/swap", s.handleSwap)

	return s
}

// Start blocks serving HTTP until Shutdown or a listener failure.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for in-process testing.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		s.logger.Info("http request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Duration("elapsed", time.Since(start)),
		)
		return err
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleTokens lists the symbols the service resolves without a contract
// address.
func (s *Server) handleTokens(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tokens": s.service.Registry().Supported(),
	})
}

func (s *Server) handleBalance(c echo.Context) error {
	var req service.GetBalanceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	resp, err := s.service.GetBalance(c.Request().Context(), req)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handlePrice(c echo.Context) error {
	var req service.GetTokenPriceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	resp, err := s.service.GetTokenPrice(c.Request().Context(), req)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSwap(c echo.Context) error {
	var req service.SwapTokensRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	resp, err := s.service.SwapTokens(c.Request().Context(), req)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, &service.Error{
		Kind:    service.ErrInvalidAmount,
		Message: "malformed request body: " + err.Error(),
	})
}

// serviceError writes the typed service error with its mapped status. The
// error body is the service Error itself so clients always see the same
// {"type", "message"} shape.
func (s *Server) serviceError(c echo.Context, err error) error {
	svcErr, ok := service.AsError(err)
	if !ok {
		svcErr = &service.Error{Kind: service.ErrInternal, Message: err.Error()}
	}
	return c.JSON(statusCode(svcErr.Kind), svcErr)
}

func statusCode(kind service.ErrorKind) int {
	switch kind {
	case service.ErrInvalidWalletAddress, service.ErrInvalidAmount:
		return http.StatusBadRequest
	case service.ErrTokenNotFound, service.ErrLiquidityPoolNotFound:
		return http.StatusNotFound
	case service.ErrInsufficientBalance,
		service.ErrInsufficientLiquidity,
		service.ErrPriceImpactTooHigh,
		service.ErrSlippageExceeded,
		service.ErrSwapAmountTooSmall,
		service.ErrSwapSimulationFailed:
		return http.StatusUnprocessableEntity
	case service.ErrBlockchain, service.ErrExternalAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
