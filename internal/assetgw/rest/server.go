/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fabric-rest/assetgw/common/fabhttp"
	"github.com/fabric-rest/assetgw/common/flogging"
	"github.com/fabric-rest/assetgw/common/metrics"
	"github.com/fabric-rest/assetgw/common/metrics/disabled"
	"github.com/fabric-rest/assetgw/core/middleware"
	"github.com/gorilla/handlers"
)

type Options struct {
	Logger        fabhttp.Logger
	ListenAddress string
	TLS           fabhttp.TLS
	// AllowedOrigin is the only origin granted cross-origin access.
	AllowedOrigin string
	// AccessLog enables a combined log format line per request.
	AccessLog bool
	// Metrics records request metrics. Nil disables them.
	Metrics metrics.Provider
}

// Server serves the asset API on its own listener.
type Server struct {
	*fabhttp.Server
	handler *HTTPHandler
}

func NewServer(o Options, service AssetService) *Server {
	handler := NewHTTPHandler(service)
	s := &Server{
		Server: fabhttp.NewServer(fabhttp.Options{
			Logger:        o.Logger,
			ListenAddress: o.ListenAddress,
			TLS:           o.TLS,
			Middleware:    Middleware(o, handler.RouteName),
		}),
		handler: handler,
	}
	s.RegisterHandler("/", handler, false)
	return s
}

// Middleware returns the request processing stages applied in front of the
// API, outermost first.
func Middleware(o Options, route middleware.RouteFunc) []middleware.Middleware {
	logger := flogging.MustGetLogger("assetgw.rest")
	provider := o.Metrics
	if provider == nil {
		provider = &disabled.Provider{}
	}

	mw := []middleware.Middleware{
		middleware.Middleware(handlers.RecoveryHandler(
			handlers.RecoveryLogger(&recoveryLogger{logger: logger}),
			handlers.PrintRecoveryStack(false),
		)),
		middleware.Middleware(handlers.CORS(
			handlers.AllowedOrigins([]string{o.AllowedOrigin}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", "X-Request-Id"}),
			handlers.ExposedHeaders([]string{"X-Request-Id"}),
		)),
	}
	if o.AccessLog {
		access := &accessLogWriter{logger: flogging.MustGetLogger("assetgw.rest.access")}
		mw = append(mw, func(next http.Handler) http.Handler {
			return handlers.CombinedLoggingHandler(access, next)
		})
	}
	return append(mw, middleware.WithMetrics(provider, route))
}

type recoveryLogger struct {
	logger *flogging.FabricLogger
}

func (r *recoveryLogger) Println(args ...interface{}) {
	r.logger.Errorf("Recovered from panic in request handler: %s", fmt.Sprint(args...))
}

type accessLogWriter struct {
	logger *flogging.FabricLogger
}

func (a *accessLogWriter) Write(p []byte) (int, error) {
	a.logger.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
