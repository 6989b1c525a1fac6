/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package grpclogging

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Leveler returns a zap level to use when logging from a grpc interceptor.
type Leveler interface {
	Level(ctx context.Context, fullMethod string) zapcore.Level
}

// PayloadLeveler gets the level to use when logging grpc message payloads.
type PayloadLeveler interface {
	PayloadLevel(ctx context.Context, fullMethod string) zapcore.Level
}

type LevelerFunc func(ctx context.Context, fullMethod string) zapcore.Level

func (l LevelerFunc) Level(ctx context.Context, fullMethod string) zapcore.Level {
	return l(ctx, fullMethod)
}

func (l LevelerFunc) PayloadLevel(ctx context.Context, fullMethod string) zapcore.Level {
	return l(ctx, fullMethod)
}

// DefaultPayloadLevel is default level to use when logging payloads
const DefaultPayloadLevel = zapcore.Level(zapcore.DebugLevel - 1)

type options struct {
	Leveler
	PayloadLeveler
}

type Option func(o *options)

func WithLeveler(l Leveler) Option {
	return func(o *options) { o.Leveler = l }
}

func WithPayloadLeveler(l PayloadLeveler) Option {
	return func(o *options) { o.PayloadLeveler = l }
}

func applyOptions(opts ...Option) *options {
	o := &options{
		Leveler:        LevelerFunc(func(context.Context, string) zapcore.Level { return zapcore.DebugLevel }),
		PayloadLeveler: LevelerFunc(func(context.Context, string) zapcore.Level { return DefaultPayloadLevel }),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// UnaryClientInterceptor logs the outcome of every unary call made to the peer.
func UnaryClientInterceptor(logger *zap.Logger, opts ...Option) grpc.UnaryClientInterceptor {
	o := applyOptions(opts...)

	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, callOpts ...grpc.CallOption) error {
		logger := logger.With(getFields(ctx, method, cc)...)
		startTime := time.Now()

		payloadLogger := logger.Named("payload")
		payloadLevel := o.PayloadLevel(ctx, method)
		if ce := payloadLogger.Check(payloadLevel, "sending unary request"); ce != nil {
			ce.Write(ProtoMessage("message", req))
		}

		err := invoker(ctx, method, req, reply, cc, callOpts...)

		if ce := payloadLogger.Check(payloadLevel, "received unary response"); ce != nil && err == nil {
			ce.Write(ProtoMessage("message", reply))
		}

		if ce := logger.Check(o.Level(ctx, method), "unary call completed"); ce != nil {
			st, _ := status.FromError(err)
			ce.Write(
				Error(err),
				zap.Stringer("grpc.code", st.Code()),
				zap.Duration("grpc.call_duration", time.Since(startTime)),
			)
		}

		return err
	}
}

// StreamClientInterceptor logs the establishment of every stream opened to
// the peer and the payloads that flow through it.
func StreamClientInterceptor(logger *zap.Logger, opts ...Option) grpc.StreamClientInterceptor {
	o := applyOptions(opts...)

	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, callOpts ...grpc.CallOption) (grpc.ClientStream, error) {
		logger := logger.With(getFields(ctx, method, cc)...)
		startTime := time.Now()

		stream, err := streamer(ctx, desc, cc, method, callOpts...)
		if ce := logger.Check(o.Level(ctx, method), "stream established"); ce != nil {
			st, _ := status.FromError(err)
			ce.Write(
				Error(err),
				zap.Stringer("grpc.code", st.Code()),
				zap.Duration("grpc.call_duration", time.Since(startTime)),
			)
		}
		if err != nil {
			return nil, err
		}

		return &clientStream{
			ClientStream:  stream,
			payloadLogger: logger.Named("payload"),
			payloadLevel:  o.PayloadLevel(ctx, method),
		}, nil
	}
}

func getFields(ctx context.Context, method string, cc *grpc.ClientConn) []zapcore.Field {
	var fields []zap.Field
	if parts := strings.Split(method, "/"); len(parts) == 3 {
		fields = append(fields, zap.String("grpc.service", parts[1]), zap.String("grpc.method", parts[2]))
	}
	if deadline, ok := ctx.Deadline(); ok {
		fields = append(fields, zap.Time("grpc.request_deadline", deadline))
	}
	if cc != nil {
		fields = append(fields, zap.String("grpc.target", cc.Target()))
	}
	return fields
}

type clientStream struct {
	grpc.ClientStream
	payloadLogger *zap.Logger
	payloadLevel  zapcore.Level
}

func (cs *clientStream) SendMsg(msg interface{}) error {
	if ce := cs.payloadLogger.Check(cs.payloadLevel, "sending stream message"); ce != nil {
		ce.Write(ProtoMessage("message", msg))
	}
	return cs.ClientStream.SendMsg(msg)
}

func (cs *clientStream) RecvMsg(msg interface{}) error {
	err := cs.ClientStream.RecvMsg(msg)
	if ce := cs.payloadLogger.Check(cs.payloadLevel, "received stream message"); ce != nil && err == nil {
		ce.Write(ProtoMessage("message", msg))
	}
	return err
}
