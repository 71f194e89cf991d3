package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"ytmp3/internal/convert"
	"ytmp3/internal/deps"
	"ytmp3/internal/logging"
	"ytmp3/internal/services"
	"ytmp3/internal/ytdlp"
)

const (
	shutdownTimeout = 5 * time.Second
	requestBodyMax  = "64K"
)

// Service is the conversion backend the handlers call.
type Service interface {
	Info(ctx context.Context, url string) (convert.Info, error)
	Convert(ctx context.Context, url string, quality ytdlp.Quality) (convert.Result, error)
	OpenDownload(ctx context.Context, id string) (*convert.Download, error)
}

// Options configures the HTTP server.
type Options struct {
	AllowedHosts []string
	StaticDir    string
	// RateLimit is requests per second per client IP on /api routes. Zero disables it.
	RateLimit float64
	RateBurst int
	Version   string
	// Dependencies reports external binary status for /api/health.
	Dependencies func() []deps.Status
}

type (
	controller interface {
		SetRoutes(*echo.Group)
	}

	// Server is a thin wrapper around the echo router. It owns middleware,
	// the error format, and the listener lifecycle; request handling lives
	// in the controller.
	Server struct {
		opts       Options
		ec         *echo.Echo
		logger     *slog.Logger
		controller controller
	}
)

// New builds the router and registers every route.
func New(opts Options, svc Service, logger *slog.Logger) *Server {
	logger = logging.NewComponentLogger(logger, "api")

	ec := echo.New()
	ec.HideBanner = true
	ec.HidePort = true
	ec.OnAddRouteHandler = func(_ string, route echo.Route, _ echo.HandlerFunc, _ []echo.MiddlewareFunc) {
		logger.Debug("registered route", logging.String("method", route.Method), logging.String("path", route.Path))
	}

	policy := newURLPolicy(opts.AllowedHosts)
	ec.Validator = newRequestValidator(policy)

	s := &Server{
		opts:   opts,
		ec:     ec,
		logger: logger,
		controller: &apiController{
			svc:     svc,
			policy:  policy,
			logger:  logger,
			version: opts.Version,
			deps:    opts.Dependencies,
		},
	}
	ec.HTTPErrorHandler = s.handleError

	ec.Pre(middleware.RemoveTrailingSlash())
	ec.Use(middleware.Recover())
	ec.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(services.WithRequestID(req.Context(), id)))
		},
	}))
	ec.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogRemoteIP:   true,
		LogRequestID:  true,
		LogError:      true,
		HandleError:   true,
		LogValuesFunc: s.logRequest,
	}))
	ec.Use(middleware.CORS())

	group := ec.Group("/api", middleware.BodyLimit(requestBodyMax))
	if opts.RateLimit > 0 {
		group.Use(rateLimiter(opts.RateLimit, opts.RateBurst))
	}
	s.controller.SetRoutes(group)

	if dir := strings.TrimSpace(opts.StaticDir); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			ec.Static("/", dir)
		} else {
			logger.Debug("static directory not found, skipping", logging.String("dir", dir))
		}
	}

	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.ec
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests a few seconds to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.ec,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// Request contexts keep ctx's values but not its cancellation, so
		// Shutdown can let running conversions finish.
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("api server listening", logging.String("address", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api server shutdown incomplete",
			logging.Error(err),
			logging.String(logging.FieldEventType, "api_shutdown_timeout"),
			logging.String(logging.FieldErrorHint, "long conversions were still running"),
			logging.String(logging.FieldImpact, "in-flight requests were interrupted"),
		)
		_ = srv.Close()
	}
	<-errCh
	s.logger.Info("api server stopped")
	return nil
}

// handleError renders every error as {"error": ...}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := ErrorResponse{Error: http.StatusText(code)}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch msg := he.Message.(type) {
		case string:
			body.Error = msg
		case ErrorResponse:
			body = msg
		default:
			body.Error = http.StatusText(code)
		}
	} else {
		logging.ErrorWithContext(logging.WithContext(c.Request().Context(), s.logger), "unhandled handler error", "api_unhandled",
			logging.Error(err),
			logging.String("path", c.Path()),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		s.logger.Debug("failed to write error response", logging.Error(err))
	}
}

func (s *Server) logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	logger := logging.WithContext(c.Request().Context(), s.logger)
	attrs := []logging.Attr{
		logging.String("method", v.Method),
		logging.String("uri", v.URI),
		logging.Int("status", v.Status),
		logging.Duration("latency", v.Latency),
		logging.String("remote_ip", v.RemoteIP),
	}
	if v.Error != nil {
		attrs = append(attrs, logging.Error(v.Error))
	}
	switch {
	case v.Status >= http.StatusInternalServerError:
		logger.Warn("request failed", logging.Args(append(attrs,
			logging.String(logging.FieldEventType, "http_request_failed"),
			logging.String(logging.FieldErrorHint, "see preceding conversion logs"),
			logging.String(logging.FieldImpact, "client received a server error"),
		)...)...)
	case strings.HasPrefix(v.URI, "/api/"):
		logger.Info("request", logging.Args(attrs...)...)
	default:
		logger.Debug("request", logging.Args(attrs...)...)
	}
	return nil
}

func rateLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	if burst <= 0 {
		burst = 1
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: rateLimitIdentifierError,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, msgTooManyRequests)
		},
	})
}

// rateLimitIdentifierError handles a client that could not be identified for
// rate limiting. That is a server fault, not a client one.
func rateLimitIdentifierError(_ echo.Context, err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
}
