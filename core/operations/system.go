/*
Copyright IBM Corp All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operations

import (
	"github.com/fabric-rest/assetgw/common/fabhttp"
	"github.com/fabric-rest/assetgw/common/flogging"
	"github.com/fabric-rest/assetgw/common/flogging/httpadmin"
	"github.com/fabric-rest/assetgw/common/metadata"
	"github.com/fabric-rest/assetgw/common/metrics"
	"github.com/fabric-rest/assetgw/common/metrics/disabled"
	"github.com/fabric-rest/assetgw/common/metrics/prometheus"
	"github.com/fabric-rest/assetgw/core/operations/healthz"
	libhealthz "github.com/hyperledger/fabric-lib-go/healthz"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:generate counterfeiter -o fakes/logger.go -fake-name Logger . Logger

type Logger interface {
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
}

type MetricsOptions struct {
	Provider string
}

type Options struct {
	fabhttp.Options
	Metrics MetricsOptions
	Version string
}

// System is the operations endpoint of the process. It serves liveness,
// readiness, metrics, version and log level administration.
type System struct {
	*fabhttp.Server
	metrics.Provider

	logger           Logger
	healthHandler    *libhealthz.HealthHandler
	readinessHandler *healthz.ReadinessHandler
	options          Options
	versionGauge     metrics.Gauge
}

func NewSystem(o Options) *System {
	logger := o.Logger
	if logger == nil {
		logger = flogging.MustGetLogger("operations.runner")
	}

	s := fabhttp.NewServer(o.Options)

	system := &System{
		Server:  s,
		logger:  logger,
		options: o,
	}

	system.initializeHealthCheckHandler()
	system.initializeReadinessHandler()
	system.initializeLoggingHandler()
	system.initializeMetricsProvider()
	system.initializeVersionInfoHandler()

	return system
}

func (s *System) Start() error {
	s.versionGauge.With("version", s.options.Version).Set(1)

	return s.Server.Start()
}

// RegisterChecker adds a liveness checker reported by /healthz.
func (s *System) RegisterChecker(component string, checker libhealthz.HealthChecker) error {
	if err := s.healthHandler.RegisterChecker(component, checker); err != nil {
		if _, ok := err.(libhealthz.AlreadyRegisteredError); ok {
			return errors.Errorf("'%s' is already registered", component)
		}
		return err
	}
	return nil
}

// RegisterReadinessChecker adds a checker reported by /readyz.
func (s *System) RegisterReadinessChecker(component string, checker healthz.ReadinessChecker) error {
	return s.readinessHandler.RegisterChecker(component, checker)
}

func (s *System) initializeMetricsProvider() {
	m := s.options.Metrics
	providerType := m.Provider
	switch providerType {
	case "prometheus":
		s.Provider = &prometheus.Provider{}
		s.versionGauge = versionGauge(s.Provider)
		// swagger:operation GET /metrics operations metrics
		// ---
		// responses:
		//     '200':
		//        description: Ok.
		s.RegisterHandler("/metrics", promhttp.Handler(), s.options.TLS.Enabled)

	default:
		if providerType != "disabled" {
			s.logger.Warnf("Unknown provider type: %s; metrics disabled", providerType)
		}

		s.Provider = &disabled.Provider{}
		s.versionGauge = versionGauge(s.Provider)
	}
}

func (s *System) initializeLoggingHandler() {
	// swagger:operation GET /logspec operations logspecget
	// ---
	// summary: Retrieves the active logging spec.
	// responses:
	//     '200':
	//        description: Ok.

	// swagger:operation PUT /logspec operations logspecput
	// ---
	// summary: Updates the active logging spec.
	//
	// parameters:
	// - name: payload
	//   in: body
	//   type: string
	//   description: The payload must consist of a single attribute named spec.
	//   required: true
	// responses:
	//     '204':
	//        description: No content.
	//     '400':
	//        description: Bad request.
	s.RegisterHandler("/logspec", httpadmin.NewSpecHandler(), s.options.TLS.Enabled)
}

func (s *System) initializeHealthCheckHandler() {
	s.healthHandler = libhealthz.NewHealthHandler()
	// swagger:operation GET /healthz operations healthz
	// ---
	// summary: Retrieves all registered health checkers for the process.
	// responses:
	//     '200':
	//        description: Ok.
	//     '503':
	//        description: Service unavailable.
	s.RegisterHandler("/healthz", s.healthHandler, false)
}

func (s *System) initializeReadinessHandler() {
	s.readinessHandler = healthz.NewReadinessHandler()
	// swagger:operation GET /readyz operations readyz
	// ---
	// summary: Reports whether every registered component can serve requests.
	// responses:
	//     '200':
	//        description: Ok.
	//     '503':
	//        description: Service unavailable.
	s.RegisterHandler("/readyz", s.readinessHandler, false)
}

func (s *System) initializeVersionInfoHandler() {
	versionInfo := &VersionInfoHandler{
		CommitSHA: metadata.CommitSHA,
		Version:   metadata.Version,
	}
	// swagger:operation GET /version operations version
	// ---
	// summary: Returns the version and the commit SHA on which the release was created.
	// responses:
	//     '200':
	//        description: Ok.
	s.RegisterHandler("/version", versionInfo, false)
}
