/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package healthcheckers

import (
	"context"
	"fmt"

	"github.com/fabric-rest/assetgw/core/operations/healthz"
	"google.golang.org/grpc/connectivity"
)

// PeerConnection is the view of a peer gateway connection needed to judge
// its health.
type PeerConnection interface {
	HealthCheck(ctx context.Context) error
	State() connectivity.State
	Endpoint() string
}

// GatewayChecker reports the state of the gRPC connection to the peer
// gateway. A connection that is still being established is degraded, not
// unavailable.
type GatewayChecker struct {
	conn PeerConnection
}

func NewGatewayChecker(conn PeerConnection) *GatewayChecker {
	return &GatewayChecker{conn: conn}
}

func (g *GatewayChecker) HealthCheck(ctx context.Context) error {
	return g.conn.HealthCheck(ctx)
}

func (g *GatewayChecker) ReadinessCheck(ctx context.Context) error {
	return g.conn.HealthCheck(ctx)
}

func (g *GatewayChecker) GetStatus() healthz.ComponentStatus {
	state := g.conn.State()
	details := map[string]interface{}{
		"endpoint": g.conn.Endpoint(),
		"state":    state.String(),
	}

	switch state {
	case connectivity.Ready:
		return healthz.ComponentStatus{
			Status:  healthz.StatusOK,
			Message: "Connected to peer gateway",
			Details: details,
		}
	case connectivity.Idle, connectivity.Connecting:
		return healthz.ComponentStatus{
			Status:  healthz.StatusDegraded,
			Message: fmt.Sprintf("Connection to peer gateway is %s", state),
			Details: details,
		}
	default:
		return healthz.ComponentStatus{
			Status:  healthz.StatusUnavailable,
			Message: fmt.Sprintf("Connection to peer gateway is %s", state),
			Details: details,
		}
	}
}
