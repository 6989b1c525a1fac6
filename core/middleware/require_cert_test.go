/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package middleware_test

import (
	"crypto/x509"
	"net/http"
	"net/http/httptest"

	"github.com/fabric-rest/assetgw/core/middleware"
	"github.com/fabric-rest/assetgw/core/middleware/fakes"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RequireCert", func() {
	var (
		requireCert middleware.Middleware
		handler     *fakes.HTTPHandler
		chain       http.Handler

		req  *http.Request
		resp *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		handler = &fakes.HTTPHandler{}
		requireCert = middleware.RequireCert()
		chain = requireCert(handler)

		req = httptest.NewRequest("GET", "https:///", nil)
		req.TLS.VerifiedChains = [][]*x509.Certificate{{
			&x509.Certificate{},
		}}
		resp = httptest.NewRecorder()
	})

	It("delegates to the next handler when the first verified chain is not empty", func() {
		chain.ServeHTTP(resp, req)
		Expect(resp.Code).To(Equal(http.StatusOK))
		Expect(handler.ServeHTTPCallCount()).To(Equal(1))
	})

	DescribeTable("rejects requests without a verified client certificate",
		func(setup func(*http.Request)) {
			setup(req)
			chain.ServeHTTP(resp, req)
			Expect(resp.Code).To(Equal(http.StatusUnauthorized))
			Expect(handler.ServeHTTPCallCount()).To(Equal(0))
		},
		Entry("nil TLS state", func(r *http.Request) { r.TLS = nil }),
		Entry("nil verified chains", func(r *http.Request) { r.TLS.VerifiedChains = nil }),
		Entry("empty verified chains", func(r *http.Request) { r.TLS.VerifiedChains = [][]*x509.Certificate{} }),
		Entry("empty first chain", func(r *http.Request) { r.TLS.VerifiedChains = [][]*x509.Certificate{{}} }),
	)
})
