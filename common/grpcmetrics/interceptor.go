/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package grpcmetrics

import (
	"context"
	"strings"
	"time"

	"github.com/fabric-rest/assetgw/common/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	unaryRequestDuration = metrics.HistogramOpts{
		Namespace:  "grpc",
		Subsystem:  "client",
		Name:       "unary_request_duration",
		Help:       "The time to complete a unary request to the peer.",
		LabelNames: []string{"service", "method", "code"},
	}
	unaryRequestsSent = metrics.CounterOpts{
		Namespace:  "grpc",
		Subsystem:  "client",
		Name:       "unary_requests_sent",
		Help:       "The number of unary requests sent to the peer.",
		LabelNames: []string{"service", "method"},
	}
	unaryRequestsCompleted = metrics.CounterOpts{
		Namespace:  "grpc",
		Subsystem:  "client",
		Name:       "unary_requests_completed",
		Help:       "The number of unary requests to the peer that completed.",
		LabelNames: []string{"service", "method", "code"},
	}
	streamsOpened = metrics.CounterOpts{
		Namespace:  "grpc",
		Subsystem:  "client",
		Name:       "streams_opened",
		Help:       "The number of streams opened to the peer.",
		LabelNames: []string{"service", "method", "code"},
	}
	streamMessagesSent = metrics.CounterOpts{
		Namespace:  "grpc",
		Subsystem:  "client",
		Name:       "stream_messages_sent",
		Help:       "The number of stream messages sent to the peer.",
		LabelNames: []string{"service", "method"},
	}
	streamMessagesReceived = metrics.CounterOpts{
		Namespace:  "grpc",
		Subsystem:  "client",
		Name:       "stream_messages_received",
		Help:       "The number of stream messages received from the peer.",
		LabelNames: []string{"service", "method"},
	}
)

type UnaryMetrics struct {
	RequestDuration   metrics.Histogram
	RequestsSent      metrics.Counter
	RequestsCompleted metrics.Counter
}

// NewUnaryMetrics creates the unary client metrics from p.
func NewUnaryMetrics(p metrics.Provider) *UnaryMetrics {
	return &UnaryMetrics{
		RequestDuration:   p.NewHistogram(unaryRequestDuration),
		RequestsSent:      p.NewCounter(unaryRequestsSent),
		RequestsCompleted: p.NewCounter(unaryRequestsCompleted),
	}
}

func UnaryClientInterceptor(um *UnaryMetrics) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, fullMethod string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		service, method := serviceMethod(fullMethod)
		um.RequestsSent.With("service", service, "method", method).Add(1)

		startTime := time.Now()
		err := invoker(ctx, fullMethod, req, reply, cc, opts...)
		st, _ := status.FromError(err)
		duration := time.Since(startTime)

		um.RequestDuration.With(
			"service", service, "method", method, "code", st.Code().String(),
		).Observe(duration.Seconds())
		um.RequestsCompleted.With("service", service, "method", method, "code", st.Code().String()).Add(1)

		return err
	}
}

type StreamMetrics struct {
	StreamsOpened    metrics.Counter
	MessagesSent     metrics.Counter
	MessagesReceived metrics.Counter
}

// NewStreamMetrics creates the streaming client metrics from p.
func NewStreamMetrics(p metrics.Provider) *StreamMetrics {
	return &StreamMetrics{
		StreamsOpened:    p.NewCounter(streamsOpened),
		MessagesSent:     p.NewCounter(streamMessagesSent),
		MessagesReceived: p.NewCounter(streamMessagesReceived),
	}
}

func StreamClientInterceptor(sm *StreamMetrics) grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, fullMethod string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		service, method := serviceMethod(fullMethod)

		stream, err := streamer(ctx, desc, cc, fullMethod, opts...)
		st, _ := status.FromError(err)
		sm.StreamsOpened.With("service", service, "method", method, "code", st.Code().String()).Add(1)
		if err != nil {
			return nil, err
		}

		return &clientStream{
			ClientStream:     stream,
			messagesSent:     sm.MessagesSent.With("service", service, "method", method),
			messagesReceived: sm.MessagesReceived.With("service", service, "method", method),
		}, nil
	}
}

func serviceMethod(fullMethod string) (service, method string) {
	normalizedMethod := strings.Replace(fullMethod, ".", "_", -1)
	parts := strings.SplitN(normalizedMethod, "/", -1)
	if len(parts) != 3 {
		return "unknown", "unknown"
	}
	return parts[1], parts[2]
}

type clientStream struct {
	grpc.ClientStream
	messagesSent     metrics.Counter
	messagesReceived metrics.Counter
}

func (cs *clientStream) SendMsg(msg interface{}) error {
	err := cs.ClientStream.SendMsg(msg)
	if err == nil {
		cs.messagesSent.Add(1)
	}
	return err
}

func (cs *clientStream) RecvMsg(msg interface{}) error {
	err := cs.ClientStream.RecvMsg(msg)
	if err == nil {
		cs.messagesReceived.Add(1)
	}
	return err
}
