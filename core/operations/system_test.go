/*
Copyright IBM Corp All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operations_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fabric-rest/assetgw/common/fabhttp"
	"github.com/fabric-rest/assetgw/core/operations"
	"github.com/fabric-rest/assetgw/core/operations/fakes"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type healthChecker struct {
	err error
}

func (h *healthChecker) HealthCheck(context.Context) error    { return h.err }
func (h *healthChecker) ReadinessCheck(context.Context) error { return h.err }

var _ = Describe("System", func() {
	var (
		fakeLogger *fakes.Logger
		options    operations.Options
		system     *operations.System
	)

	get := func(path string) (int, string) {
		resp, err := http.Get(fmt.Sprintf("http://%s%s", system.Addr(), path))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp.StatusCode, string(body)
	}

	BeforeEach(func() {
		fakeLogger = &fakes.Logger{}
		options = operations.Options{
			Options: fabhttp.Options{
				Logger:        fakeLogger,
				ListenAddress: "127.0.0.1:0",
			},
			Metrics: operations.MetricsOptions{Provider: "disabled"},
			Version: "test-version",
		}
	})

	JustBeforeEach(func() {
		system = operations.NewSystem(options)
		Expect(system.Start()).To(Succeed())
	})

	AfterEach(func() {
		system.Stop()
	})

	It("hosts an unsecured health check endpoint", func() {
		code, body := get("/healthz")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"status":"OK"`))
	})

	It("hosts a readiness endpoint", func() {
		code, body := get("/readyz")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"status":"OK"`))
	})

	It("hosts the version endpoint", func() {
		code, body := get("/version")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"Version"`))
	})

	It("hosts the logspec endpoint", func() {
		code, body := get("/logspec")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"spec"`))
	})

	It("does not host metrics when disabled", func() {
		code, _ := get("/metrics")
		Expect(code).To(Equal(http.StatusNotFound))
		Expect(fakeLogger.WarnfCallCount()).To(Equal(0))
	})

	Context("when checkers fail", func() {
		JustBeforeEach(func() {
			checker := &healthChecker{err: errors.New("connection to peer localhost:7051 is SHUTDOWN")}
			Expect(system.RegisterChecker("gateway", checker)).To(Succeed())
			Expect(system.RegisterReadinessChecker("gateway", checker)).To(Succeed())
		})

		It("reports the failure on both health endpoints", func() {
			code, body := get("/healthz")
			Expect(code).To(Equal(http.StatusServiceUnavailable))
			Expect(body).To(ContainSubstring("connection to peer localhost:7051 is SHUTDOWN"))

			code, body = get("/readyz")
			Expect(code).To(Equal(http.StatusServiceUnavailable))
			Expect(body).To(ContainSubstring(`"status":"UNAVAILABLE"`))
		})

		It("rejects duplicate registrations", func() {
			err := system.RegisterChecker("gateway", &healthChecker{})
			Expect(err).To(MatchError("'gateway' is already registered"))

			err = system.RegisterReadinessChecker("gateway", &healthChecker{})
			Expect(err).To(MatchError("'gateway' is already registered"))
		})
	})

	Context("when the metrics provider is unknown", func() {
		BeforeEach(func() {
			options.Metrics.Provider = "bogus"
		})

		It("warns and disables metrics", func() {
			Expect(fakeLogger.WarnfCallCount()).To(Equal(1))
			format, args := fakeLogger.WarnfArgsForCall(0)
			Expect(fmt.Sprintf(format, args...)).To(Equal("Unknown provider type: bogus; metrics disabled"))
			code, _ := get("/metrics")
			Expect(code).To(Equal(http.StatusNotFound))
		})
	})

	Context("when the metrics provider is prometheus", func() {
		BeforeEach(func() {
			options.Metrics.Provider = "prometheus"
		})

		It("hosts the metrics endpoint with the version gauge", func() {
			code, body := get("/metrics")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring(`assetgw_version{version="test-version"} 1`))
		})
	})
})
