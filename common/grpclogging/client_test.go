/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package grpclogging_test

import (
	"context"
	"net"

	"github.com/fabric-rest/assetgw/common/grpclogging"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

var _ = Describe("Client", func() {
	var (
		listener   *bufconn.Listener
		server     *grpc.Server
		healthSvc  *health.Server
		clientConn *grpc.ClientConn
		observed   *observer.ObservedLogs
		logger     *zap.Logger
	)

	BeforeEach(func() {
		var core zapcore.Core
		core, observed = observer.New(zapcore.Level(grpclogging.DefaultPayloadLevel))
		logger = zap.New(core).Named("test-logger")

		listener = bufconn.Listen(1024 * 1024)
		server = grpc.NewServer()
		healthSvc = health.NewServer()
		healthpb.RegisterHealthServer(server, healthSvc)
		go server.Serve(listener)

		var err error
		clientConn, err = grpc.Dial(
			"passthrough:///bufnet",
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return listener.DialContext(ctx)
			}),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithUnaryInterceptor(grpclogging.UnaryClientInterceptor(logger)),
			grpc.WithStreamInterceptor(grpclogging.StreamClientInterceptor(logger)),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		clientConn.Close()
		server.Stop()
	})

	Describe("UnaryClientInterceptor", func() {
		It("logs request and response payloads and the completed call", func() {
			_, err := healthpb.NewHealthClient(clientConn).Check(context.Background(), &healthpb.HealthCheckRequest{})
			Expect(err).NotTo(HaveOccurred())

			Expect(observed.FilterMessage("sending unary request").Len()).To(Equal(1))
			Expect(observed.FilterMessage("received unary response").Len()).To(Equal(1))

			completed := observed.FilterMessage("unary call completed").All()
			Expect(completed).To(HaveLen(1))
			Expect(completed[0].Level).To(Equal(zapcore.DebugLevel))
			fields := completed[0].ContextMap()
			Expect(fields["grpc.service"]).To(Equal("grpc.health.v1.Health"))
			Expect(fields["grpc.method"]).To(Equal("Check"))
			Expect(fields["grpc.code"]).To(Equal("OK"))
			Expect(fields).To(HaveKey("grpc.call_duration"))
			Expect(fields).NotTo(HaveKey("error"))
		})

		It("logs the error code of a failed call", func() {
			_, err := healthpb.NewHealthClient(clientConn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: "missing"})
			Expect(err).To(HaveOccurred())

			completed := observed.FilterMessage("unary call completed").All()
			Expect(completed).To(HaveLen(1))
			fields := completed[0].ContextMap()
			Expect(fields["grpc.code"]).To(Equal(codes.NotFound.String()))
			Expect(fields).To(HaveKey("error"))
			Expect(observed.FilterMessage("received unary response").Len()).To(Equal(0))
		})

		It("uses the configured leveler", func() {
			conn, err := grpc.Dial(
				"passthrough:///bufnet",
				grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
					return listener.DialContext(ctx)
				}),
				grpc.WithTransportCredentials(insecure.NewCredentials()),
				grpc.WithUnaryInterceptor(grpclogging.UnaryClientInterceptor(logger,
					grpclogging.WithLeveler(grpclogging.LevelerFunc(func(context.Context, string) zapcore.Level { return zapcore.WarnLevel })),
					grpclogging.WithPayloadLeveler(grpclogging.LevelerFunc(func(context.Context, string) zapcore.Level { return zapcore.DebugLevel - 2 })),
				)),
			)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()

			_, err = healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
			Expect(err).NotTo(HaveOccurred())

			completed := observed.FilterMessage("unary call completed").All()
			Expect(completed).To(HaveLen(1))
			Expect(completed[0].Level).To(Equal(zapcore.WarnLevel))
			Expect(observed.FilterMessage("sending unary request").Len()).To(Equal(0))
		})
	})

	Describe("StreamClientInterceptor", func() {
		It("logs the stream and its messages", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			stream, err := healthpb.NewHealthClient(clientConn).Watch(ctx, &healthpb.HealthCheckRequest{})
			Expect(err).NotTo(HaveOccurred())
			resp, err := stream.Recv()
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Status).To(Equal(healthpb.HealthCheckResponse_SERVING))

			established := observed.FilterMessage("stream established").All()
			Expect(established).To(HaveLen(1))
			Expect(established[0].ContextMap()["grpc.method"]).To(Equal("Watch"))
			Expect(observed.FilterMessage("sending stream message").Len()).To(Equal(1))
			Expect(observed.FilterMessage("received stream message").Len()).To(Equal(1))
		})
	})
})
