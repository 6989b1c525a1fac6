/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/fabric-rest/assetgw/common/flogging"
	"github.com/fabric-rest/assetgw/common/grpclogging"
	"github.com/fabric-rest/assetgw/common/grpcmetrics"
	"github.com/fabric-rest/assetgw/common/metrics"
	"github.com/fabric-rest/assetgw/common/metrics/disabled"
	"github.com/fabric-rest/assetgw/internal/pkg/comm"
	"github.com/fabric-rest/assetgw/internal/pkg/identity"
	"github.com/hyperledger/fabric-gateway/pkg/client"
	"github.com/hyperledger/fabric-gateway/pkg/hash"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
)

var logger = flogging.MustGetLogger("gateway")

// Timeouts bound each phase of a ledger call.
type Timeouts struct {
	Evaluate     time.Duration
	Endorse      time.Duration
	Submit       time.Duration
	CommitStatus time.Duration
}

// Config holds everything needed to reach one contract on one channel.
type Config struct {
	// Endpoint is the peer gateway address.
	Endpoint string
	// HostOverride is the name verified against the peer TLS certificate.
	HostOverride string
	// TLSRootCerts are the PEM encoded CAs trusted to sign the peer certificate.
	TLSRootCerts [][]byte
	// ClientCert and ClientKey are the PEM encoded TLS credentials presented
	// to peers that require client authentication. Both or neither are set.
	ClientCert  []byte
	ClientKey   []byte
	Channel     string
	Chaincode   string
	DialTimeout time.Duration
	// Keepalive defaults to comm.DefaultKeepaliveOptions when unset.
	Keepalive comm.KeepaliveOptions
	Timeouts  Timeouts
	// WaitForCommit is the default commit behaviour for submitted transactions.
	WaitForCommit bool
}

// SubmitOptions control a single submitted transaction.
type SubmitOptions struct {
	// WaitForCommit makes Submit return only after the transaction is
	// committed and validated. Otherwise Submit returns once the orderer has
	// accepted the transaction.
	WaitForCommit bool
}

//go:generate counterfeiter -o mocks/contract.go --fake-name Contract . Contract

// Contract invokes transaction functions of a deployed chaincode.
type Contract interface {
	// Evaluate runs a read-only transaction function on a peer and returns
	// its result. Nothing is written to the ledger.
	Evaluate(ctx context.Context, name string, args ...string) ([]byte, error)
	// Submit endorses the transaction function, sends it for ordering and,
	// when requested, waits for it to commit. It returns the result of the
	// endorsed transaction.
	Submit(ctx context.Context, name string, opts SubmitOptions, args ...string) ([]byte, error)
}

// Connection is an authenticated connection to a peer gateway bound to a
// single contract. It is safe for concurrent use and is not modified after
// Connect returns.
type Connection struct {
	endpoint string
	conn     *grpc.ClientConn
	gateway  *client.Gateway
	contract *contract
	config   Config
}

// Connect dials the peer described by conf and binds to its contract using
// the signing identity id. A nil metrics provider disables connection metrics.
func Connect(conf Config, id *identity.SigningIdentity, provider metrics.Provider) (*Connection, error) {
	if id == nil {
		return nil, errors.New("a signing identity is required")
	}
	if provider == nil {
		provider = &disabled.Provider{}
	}

	keepalive := conf.Keepalive
	if keepalive.ClientInterval == 0 {
		keepalive = comm.DefaultKeepaliveOptions
	}

	grpcLogger := flogging.MustGetLogger("gateway.grpc").Zap()
	grpcClient, err := comm.NewGRPCClient(comm.ClientConfig{
		SecOpts: comm.SecureOptions{
			UseTLS:             true,
			ServerRootCAs:      conf.TLSRootCerts,
			ServerNameOverride: conf.HostOverride,
			CipherSuites:       comm.DefaultTLSCipherSuites,
			RequireClientCert:  len(conf.ClientCert) > 0 || len(conf.ClientKey) > 0,
			Certificate:        conf.ClientCert,
			Key:                conf.ClientKey,
		},
		KaOpts:      keepalive,
		DialTimeout: conf.DialTimeout,
		UnaryInterceptors: []grpc.UnaryClientInterceptor{
			grpclogging.UnaryClientInterceptor(grpcLogger),
			grpcmetrics.UnaryClientInterceptor(grpcmetrics.NewUnaryMetrics(provider)),
		},
		StreamInterceptors: []grpc.StreamClientInterceptor{
			grpclogging.StreamClientInterceptor(grpcLogger),
			grpcmetrics.StreamClientInterceptor(grpcmetrics.NewStreamMetrics(provider)),
		},
	})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create gRPC client")
	}

	conn, err := grpcClient.NewConnection(conf.Endpoint)
	if err != nil {
		target := conf.Endpoint
		if conf.HostOverride != "" {
			target = fmt.Sprintf("%s (TLS server name %s)", conf.Endpoint, conf.HostOverride)
		}
		return nil, errors.WithMessagef(err, "failed to connect to peer %s", target)
	}

	gw, err := client.Connect(id, connectOptions(conf, id, conn)...)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to create gateway connection")
	}

	logger.Infow("Connected to peer gateway", "endpoint", conf.Endpoint, "hostOverride", conf.HostOverride, "mspID", id.MspID(), "channel", conf.Channel, "chaincode", conf.Chaincode)

	return &Connection{
		endpoint: conf.Endpoint,
		conn:     conn,
		gateway:  gw,
		contract: &contract{
			contract:  gw.GetNetwork(conf.Channel).GetContract(conf.Chaincode),
			channel:   conf.Channel,
			chaincode: conf.Chaincode,
			metrics:   newLedgerMetrics(provider),
		},
		config: conf,
	}, nil
}

func connectOptions(conf Config, id *identity.SigningIdentity, conn grpc.ClientConnInterface) []client.ConnectOption {
	opts := []client.ConnectOption{
		client.WithSign(id.SignDigest),
		client.WithHash(hash.SHA256),
		client.WithClientConnection(conn),
	}
	// zero leaves the phase bounded only by the request context
	if t := conf.Timeouts.Evaluate; t > 0 {
		opts = append(opts, client.WithEvaluateTimeout(t))
	}
	if t := conf.Timeouts.Endorse; t > 0 {
		opts = append(opts, client.WithEndorseTimeout(t))
	}
	if t := conf.Timeouts.Submit; t > 0 {
		opts = append(opts, client.WithSubmitTimeout(t))
	}
	if t := conf.Timeouts.CommitStatus; t > 0 {
		opts = append(opts, client.WithCommitStatusTimeout(t))
	}
	return opts
}

// Contract returns the contract bound to this connection.
func (c *Connection) Contract() Contract {
	return c.contract
}

// DefaultSubmitOptions returns the configured defaults for submitted
// transactions.
func (c *Connection) DefaultSubmitOptions() SubmitOptions {
	return SubmitOptions{WaitForCommit: c.config.WaitForCommit}
}

// Endpoint returns the peer gateway address.
func (c *Connection) Endpoint() string {
	return c.endpoint
}

// State returns the state of the gRPC connection to the peer.
func (c *Connection) State() connectivity.State {
	return c.conn.GetState()
}

// HealthCheck reports an error when the connection to the peer is failing or
// has been shut down.
func (c *Connection) HealthCheck(context.Context) error {
	switch state := c.conn.GetState(); state {
	case connectivity.Ready, connectivity.Connecting:
		return nil
	case connectivity.Idle:
		c.conn.Connect()
		return nil
	default:
		return errors.Errorf("connection to peer %s is %s", c.endpoint, state)
	}
}

// Close releases the gateway and the underlying gRPC connection.
func (c *Connection) Close() error {
	if err := c.gateway.Close(); err != nil {
		logger.Warnf("Failed closing gateway: %s", err)
	}
	return c.conn.Close()
}
