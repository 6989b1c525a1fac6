/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package grpcmetrics_test

import (
	"context"
	"net"

	"github.com/fabric-rest/assetgw/common/grpcmetrics"
	"github.com/fabric-rest/assetgw/common/metrics/metricsfakes"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

var _ = Describe("Interceptor", func() {
	var (
		fakeRequestDuration   *metricsfakes.Histogram
		fakeRequestsSent      *metricsfakes.Counter
		fakeRequestsCompleted *metricsfakes.Counter
		fakeStreamsOpened     *metricsfakes.Counter
		fakeMessagesSent      *metricsfakes.Counter
		fakeMessagesReceived  *metricsfakes.Counter

		listener   *bufconn.Listener
		server     *grpc.Server
		clientConn *grpc.ClientConn
	)

	BeforeEach(func() {
		fakeRequestDuration = &metricsfakes.Histogram{}
		fakeRequestDuration.WithReturns(fakeRequestDuration)
		fakeRequestsSent = &metricsfakes.Counter{}
		fakeRequestsSent.WithReturns(fakeRequestsSent)
		fakeRequestsCompleted = &metricsfakes.Counter{}
		fakeRequestsCompleted.WithReturns(fakeRequestsCompleted)
		fakeStreamsOpened = &metricsfakes.Counter{}
		fakeStreamsOpened.WithReturns(fakeStreamsOpened)
		fakeMessagesSent = &metricsfakes.Counter{}
		fakeMessagesSent.WithReturns(fakeMessagesSent)
		fakeMessagesReceived = &metricsfakes.Counter{}
		fakeMessagesReceived.WithReturns(fakeMessagesReceived)

		unaryMetrics := &grpcmetrics.UnaryMetrics{
			RequestDuration:   fakeRequestDuration,
			RequestsSent:      fakeRequestsSent,
			RequestsCompleted: fakeRequestsCompleted,
		}
		streamMetrics := &grpcmetrics.StreamMetrics{
			StreamsOpened:    fakeStreamsOpened,
			MessagesSent:     fakeMessagesSent,
			MessagesReceived: fakeMessagesReceived,
		}

		listener = bufconn.Listen(1024 * 1024)
		server = grpc.NewServer()
		healthpb.RegisterHealthServer(server, health.NewServer())
		go server.Serve(listener)

		var err error
		clientConn, err = grpc.Dial(
			"passthrough:///bufnet",
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return listener.DialContext(ctx)
			}),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithUnaryInterceptor(grpcmetrics.UnaryClientInterceptor(unaryMetrics)),
			grpc.WithStreamInterceptor(grpcmetrics.StreamClientInterceptor(streamMetrics)),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		clientConn.Close()
		server.Stop()
	})

	Describe("UnaryClientInterceptor", func() {
		It("records the request and its outcome", func() {
			_, err := healthpb.NewHealthClient(clientConn).Check(context.Background(), &healthpb.HealthCheckRequest{})
			Expect(err).NotTo(HaveOccurred())

			Expect(fakeRequestsSent.WithCallCount()).To(Equal(1))
			Expect(fakeRequestsSent.WithArgsForCall(0)).To(Equal([]string{"service", "grpc_health_v1_Health", "method", "Check"}))
			Expect(fakeRequestsSent.AddCallCount()).To(Equal(1))
			Expect(fakeRequestsSent.AddArgsForCall(0)).To(BeNumerically("~", 1.0))

			Expect(fakeRequestDuration.WithCallCount()).To(Equal(1))
			Expect(fakeRequestDuration.WithArgsForCall(0)).To(Equal([]string{"service", "grpc_health_v1_Health", "method", "Check", "code", "OK"}))
			Expect(fakeRequestDuration.ObserveCallCount()).To(Equal(1))
			Expect(fakeRequestDuration.ObserveArgsForCall(0)).To(BeNumerically(">", 0.0))

			Expect(fakeRequestsCompleted.WithCallCount()).To(Equal(1))
			Expect(fakeRequestsCompleted.WithArgsForCall(0)).To(Equal([]string{"service", "grpc_health_v1_Health", "method", "Check", "code", "OK"}))
			Expect(fakeRequestsCompleted.AddCallCount()).To(Equal(1))
		})

		It("labels failed requests with the status code", func() {
			_, err := healthpb.NewHealthClient(clientConn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: "missing"})
			Expect(err).To(HaveOccurred())

			Expect(fakeRequestsCompleted.WithArgsForCall(0)).To(Equal([]string{"service", "grpc_health_v1_Health", "method", "Check", "code", "NotFound"}))
		})
	})

	Describe("StreamClientInterceptor", func() {
		It("records the stream and its messages", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			stream, err := healthpb.NewHealthClient(clientConn).Watch(ctx, &healthpb.HealthCheckRequest{})
			Expect(err).NotTo(HaveOccurred())
			_, err = stream.Recv()
			Expect(err).NotTo(HaveOccurred())

			Expect(fakeStreamsOpened.WithCallCount()).To(Equal(1))
			Expect(fakeStreamsOpened.WithArgsForCall(0)).To(Equal([]string{"service", "grpc_health_v1_Health", "method", "Watch", "code", "OK"}))
			Expect(fakeMessagesSent.AddCallCount()).To(Equal(1))
			Expect(fakeMessagesReceived.AddCallCount()).To(Equal(1))
		})
	})

	Describe("NewUnaryMetrics", func() {
		It("creates the metrics from the provider", func() {
			provider := &metricsfakes.Provider{}
			provider.NewCounterReturns(fakeRequestsSent)
			provider.NewHistogramReturns(fakeRequestDuration)

			um := grpcmetrics.NewUnaryMetrics(provider)
			Expect(um.RequestsSent).To(Equal(fakeRequestsSent))
			Expect(um.RequestDuration).To(Equal(fakeRequestDuration))
			Expect(provider.NewCounterCallCount()).To(Equal(2))
			Expect(provider.NewCounterArgsForCall(0).Name).To(Equal("unary_requests_sent"))
			Expect(provider.NewHistogramArgsForCall(0).Subsystem).To(Equal("client"))

			sm := grpcmetrics.NewStreamMetrics(provider)
			Expect(sm.StreamsOpened).NotTo(BeNil())
			Expect(provider.NewCounterCallCount()).To(Equal(5))
		})
	})
})
