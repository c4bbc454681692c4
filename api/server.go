// Package api - HTTP API of the results reporter
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/alwitt/goutils"
	"github.com/alwitt/reporter/auth"
	"github.com/alwitt/reporter/db"
	"github.com/alwitt/reporter/store"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gommonlog "github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerParams HTTP server dependencies and options
type ServerParams struct {
	// Users user account store
	Users store.UserStore `validate:"required"`
	// Results result record store
	Results store.ResultsStore `validate:"required"`
	// Tokens bearer token service
	Tokens auth.TokenService `validate:"required"`
	// Persistence DB client, pinged by the health check
	Persistence db.Client `validate:"required"`
	// Registry metrics registry; a private one is made when nil
	Registry *prometheus.Registry
	// StaticDir web UI asset directory; asset routes are skipped when empty
	StaticDir string
	// CORSOrigins allowed CORS origins; CORS is disabled when empty
	CORSOrigins []string
}

// staticRoutes web UI asset routes and the file each serves
var staticRoutes = map[string]string{
	"/":                   "index.html",
	"/login.html":         "index.html",
	"/utils.js":           "utils.js",
	"/home.html":          "home.html",
	"/results_entry.html": "results_entry.html",
	"/reports.html":       "reports.html",
}

// handler HTTP request handlers
type handler struct {
	goutils.Component
	users       store.UserStore
	results     store.ResultsStore
	tokens      auth.TokenService
	persistence db.Client
	metrics     *metrics
	validate    *validator.Validate
}

/*
NewServer define the HTTP server

	@param params ServerParams - server dependencies and options
	@return the echo instance, with all routes installed
*/
func NewServer(params ServerParams) (*echo.Echo, error) {
	if err := validator.New().Struct(&params); err != nil {
		return nil, fmt.Errorf("server parameters are not valid [%w]", err)
	}

	registry := params.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	serverMetrics, err := newMetrics(registry)
	if err != nil {
		return nil, err
	}

	logTags := log.Fields{"module": "api", "component": "http-server"}
	h := &handler{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		users:       params.Users,
		results:     params.Results,
		tokens:      params.Tokens,
		persistence: params.Persistence,
		metrics:     serverMetrics,
		validate:    newPayloadValidator(),
	}

	srv := echo.New()
	srv.HideBanner = true
	srv.HidePort = true
	srv.Logger.SetLevel(gommonlog.OFF)
	srv.HTTPErrorHandler = h.handleError

	srv.Use(middleware.Recover(), middleware.RequestID(), h.instrument)
	if len(params.CORSOrigins) > 0 {
		srv.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: params.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{
				echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept,
			},
		}))
	}

	srv.POST("/api/login", h.login)
	srv.POST("/api/submit_results", h.submitResults, h.requireBearer)
	srv.GET("/api/results/", h.getResults)
	srv.GET("/api/results", h.getResults)
	srv.GET("/healthz", h.healthz)
	srv.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if params.StaticDir != "" {
		for route, file := range staticRoutes {
			srv.File(route, filepath.Join(params.StaticDir, file))
		}
	}

	return srv, nil
}

// instrument attach request-scoped log metadata, then log and measure each request once
func (h *handler) instrument(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		requestParams := goutils.RestRequestParam{
			ID:         c.Response().Header().Get(echo.HeaderXRequestID),
			Host:       req.Host,
			URI:        req.URL.Path,
			Method:     req.Method,
			RemoteAddr: req.RemoteAddr,
			Timestamp:  start,
		}
		ctx := context.WithValue(req.Context(), goutils.RestRequestParamKey{}, requestParams)
		c.SetRequest(req.WithContext(ctx))

		err := next(c)
		if err != nil {
			c.Error(err)
		}
		latency := time.Since(start)

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().Status
		h.metrics.observeRequest(route, req.Method, status, latency)

		entry := log.WithFields(h.GetLogTagsForContext(ctx)).
			WithField("route", route).
			WithField("status", status).
			WithField("latency", latency.String())
		switch {
		case status >= http.StatusInternalServerError:
			entry.WithError(err).Error("Request failed")
		case err != nil:
			entry.WithError(err).Info("Request rejected")
		default:
			entry.Debug("Request handled")
		}
		return nil
	}
}

// handleError render handler errors as response envelopes
func (h *handler) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var response *apiError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &response):
	case errors.As(err, &httpErr):
		response = &apiError{status: httpErr.Code, msg: http.StatusText(httpErr.Code), cause: err}
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			response.msg = msg
		}
	case errors.Is(err, db.ErrUnavailable):
		response = &apiError{
			status: http.StatusServiceUnavailable, msg: msgPersistenceDown, cause: err,
		}
	default:
		response = &apiError{
			status: http.StatusInternalServerError, msg: msgInternalServerError, cause: err,
		}
	}

	if response.challenge {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(response.status)
	} else {
		writeErr = c.JSON(response.status, response.envelope())
	}
	if writeErr != nil {
		log.WithError(writeErr).
			WithFields(h.GetLogTagsForContext(c.Request().Context())).
			Error("Failed to write error response")
	}
}
