/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/fabric-rest/assetgw/common/metrics/metricsfakes"
	"github.com/fabric-rest/assetgw/core/middleware"
	"github.com/fabric-rest/assetgw/core/middleware/fakes"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("WithMetrics", func() {
	var (
		fakeProvider  *metricsfakes.Provider
		fakeDuration  *metricsfakes.Histogram
		fakeCompleted *metricsfakes.Counter
		handler       *fakes.HTTPHandler
		route         middleware.RouteFunc

		req  *http.Request
		resp *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		fakeDuration = &metricsfakes.Histogram{}
		fakeDuration.WithReturns(fakeDuration)
		fakeCompleted = &metricsfakes.Counter{}
		fakeCompleted.WithReturns(fakeCompleted)

		fakeProvider = &metricsfakes.Provider{}
		fakeProvider.NewHistogramReturns(fakeDuration)
		fakeProvider.NewCounterReturns(fakeCompleted)

		handler = &fakes.HTTPHandler{}
		route = nil

		req = httptest.NewRequest("POST", "/api/assets", nil)
		resp = httptest.NewRecorder()
	})

	serve := func() {
		middleware.WithMetrics(fakeProvider, route)(handler).ServeHTTP(resp, req)
	}

	It("creates the request metrics", func() {
		serve()
		Expect(fakeProvider.NewHistogramCallCount()).To(Equal(1))
		opts := fakeProvider.NewHistogramArgsForCall(0)
		Expect(opts.Namespace).To(Equal("http"))
		Expect(opts.Name).To(Equal("request_duration"))
		Expect(opts.LabelNames).To(Equal([]string{"route", "method", "code"}))
		Expect(fakeProvider.NewCounterCallCount()).To(Equal(1))
	})

	It("records an implicit 200", func() {
		serve()
		Expect(fakeCompleted.WithArgsForCall(0)).To(Equal([]string{"route", "/api/assets", "method", "POST", "code", "200"}))
		Expect(fakeCompleted.AddArgsForCall(0)).To(Equal(1.0))
		Expect(fakeDuration.WithArgsForCall(0)).To(Equal([]string{"route", "/api/assets", "method", "POST", "code", "200"}))
		Expect(fakeDuration.ObserveCallCount()).To(Equal(1))
	})

	Context("when the handler writes a status code", func() {
		BeforeEach(func() {
			handler.ServeHTTPStub = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.WriteHeader(http.StatusOK)
			}
		})

		It("records the first status code", func() {
			serve()
			Expect(fakeCompleted.WithArgsForCall(0)).To(Equal([]string{"route", "/api/assets", "method", "POST", "code", "500"}))
		})
	})

	Context("when a route func is provided", func() {
		BeforeEach(func() {
			route = func(*http.Request) string { return "create" }
		})

		It("labels requests with the route name", func() {
			serve()
			Expect(fakeCompleted.WithArgsForCall(0)).To(Equal([]string{"route", "create", "method", "POST", "code", "200"}))
		})
	})
})
