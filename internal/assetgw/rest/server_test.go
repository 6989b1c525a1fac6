/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rest_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/fabric-rest/assetgw/common/metrics/metricsfakes"
	"github.com/fabric-rest/assetgw/internal/assetgw/assets"
	"github.com/fabric-rest/assetgw/internal/assetgw/rest"
	"github.com/fabric-rest/assetgw/internal/pkg/gateway"
	"github.com/fabric-rest/assetgw/internal/pkg/gateway/mocks"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server", func() {
	var (
		contract  *mocks.Contract
		histogram *metricsfakes.Histogram
		counter   *metricsfakes.Counter
		provider  *metricsfakes.Provider
		server    *rest.Server
		client    *http.Client
	)

	BeforeEach(func() {
		contract = &mocks.Contract{}
		contract.EvaluateReturns([]byte(`[{"ID":"asset1","Color":"blue","Size":5,"Owner":"Tomoko","AppraisedValue":300}]`), nil)

		histogram = &metricsfakes.Histogram{}
		histogram.WithReturns(histogram)
		counter = &metricsfakes.Counter{}
		counter.WithReturns(counter)
		provider = &metricsfakes.Provider{}
		provider.NewHistogramReturns(histogram)
		provider.NewCounterReturns(counter)

		service := assets.NewService(contract, fakeclock.NewFakeClock(time.Now()), gateway.SubmitOptions{WaitForCommit: true})
		server = rest.NewServer(rest.Options{
			ListenAddress: "127.0.0.1:0",
			AllowedOrigin: "http://localhost:5173",
			AccessLog:     true,
			Metrics:       provider,
		}, service)
		Expect(server.Start()).To(Succeed())

		client = &http.Client{Timeout: 5 * time.Second}
	})

	AfterEach(func() {
		if server != nil {
			server.Stop()
		}
	})

	url := func(path string) string {
		return fmt.Sprintf("http://%s%s", server.Addr(), path)
	}

	It("serves the asset API", func() {
		resp, err := client.Get(url("/api/data"))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("X-Request-Id")).NotTo(BeEmpty())
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(MatchJSON(`[{"assetId":"asset1","color":"blue","size":"5","owner":"Tomoko","value":"300"}]`))
	})

	It("records request metrics by route", func() {
		contract.EvaluateReturns([]byte(`{"ID":"asset1","Color":"blue","Size":5,"Owner":"Tomoko","AppraisedValue":300}`), nil)

		resp, err := client.Get(url("/api/assets/asset1"))
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		Expect(provider.NewHistogramCallCount()).To(Equal(1))
		Expect(provider.NewCounterCallCount()).To(Equal(1))
		Eventually(counter.AddCallCount).Should(Equal(1))
		Expect(counter.WithArgsForCall(0)).To(Equal([]string{"route", "read", "method", "GET", "code", "200"}))
		Expect(histogram.ObserveCallCount()).To(Equal(1))
	})

	It("labels unmatched requests", func() {
		resp, err := client.Post(url("/api/data"), "application/json", strings.NewReader("{}"))
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))

		Eventually(counter.AddCallCount).Should(Equal(1))
		Expect(counter.WithArgsForCall(0)).To(Equal([]string{"route", "method_not_allowed", "method", "POST", "code", "405"}))
	})

	It("allows cross-origin requests from the configured origin", func() {
		req, err := http.NewRequest(http.MethodGet, url("/api/data"), nil)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Origin", "http://localhost:5173")

		resp, err := client.Do(req)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:5173"))
	})

	It("answers preflight requests", func() {
		req, err := http.NewRequest(http.MethodOptions, url("/api/assets"), nil)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "content-type")

		resp, err := client.Do(req)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:5173"))
		Expect(resp.Header.Get("Access-Control-Allow-Headers")).To(Equal("Content-Type"))
		Expect(contract.SubmitCallCount()).To(Equal(0))
	})

	It("rejects preflight requests for headers outside the allow list", func() {
		req, err := http.NewRequest(http.MethodOptions, url("/api/assets"), nil)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "x-api-key")

		resp, err := client.Do(req)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		Expect(contract.SubmitCallCount()).To(Equal(0))
	})

	It("does not grant other origins", func() {
		req, err := http.NewRequest(http.MethodGet, url("/api/data"), nil)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Origin", "http://evil.example.com")

		resp, err := client.Do(req)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("recovers from a panicking handler and keeps serving", func() {
		contract.EvaluateCalls(func(context.Context, string, ...string) ([]byte, error) {
			panic("boom")
		})

		resp, err := client.Get(url("/api/assets/asset1"))
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))

		contract.EvaluateReturns([]byte(`[]`), nil)
		resp, err = client.Get(url("/api/data"))
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	It("reports a ledger failure as a server error", func() {
		contract.SubmitReturns(nil, &gateway.Error{Op: gateway.OpSubmit, Kind: gateway.KindCommit, TransactionID: "tx1", Err: fmt.Errorf("MVCC_READ_CONFLICT")})

		resp, err := client.Post(url("/api/assets/transfer"), "application/json", strings.NewReader(`{"assetId":"asset1","newOwner":"Max"}`))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(MatchJSON(`{"error":"Failed to transfer asset"}`))
	})

	It("stops serving once stopped", func() {
		addr := server.Addr()
		Expect(server.Stop()).To(Succeed())
		server = nil

		_, err := client.Get(fmt.Sprintf("http://%s/api/data", addr))
		Expect(err).To(HaveOccurred())
	})
})
