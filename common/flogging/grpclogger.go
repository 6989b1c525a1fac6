/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package flogging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapgrpc"
	"google.golang.org/grpc/grpclog"
)

const GRPCModuleID = "grpc"

// NewGRPCLogger creates a grpc logger that delegates to a zap.Logger.
func NewGRPCLogger(l *zap.Logger) *zapgrpc.Logger {
	l = l.WithOptions(
		zap.AddCaller(),
		zap.AddCallerSkip(3),
	)
	return zapgrpc.NewLogger(l)
}

// InitGRPCLogger routes grpc-go's internal logging through the "grpc" logger
// of the global logging system. The package init calls it, so the level of
// grpc-go's output follows the active logging spec.
func InitGRPCLogger() {
	grpclog.SetLoggerV2(NewGRPCLogger(Global.ZapLogger(GRPCModuleID)))
}
