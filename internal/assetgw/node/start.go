/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package node

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/fabric-rest/assetgw/common/crypto"
	"github.com/fabric-rest/assetgw/common/fabhttp"
	"github.com/fabric-rest/assetgw/common/flogging"
	floggingmetrics "github.com/fabric-rest/assetgw/common/flogging/metrics"
	"github.com/fabric-rest/assetgw/common/metadata"
	"github.com/fabric-rest/assetgw/core/operations"
	"github.com/fabric-rest/assetgw/core/operations/healthcheckers"
	"github.com/fabric-rest/assetgw/internal/assetgw/assets"
	"github.com/fabric-rest/assetgw/internal/assetgw/config"
	"github.com/fabric-rest/assetgw/internal/assetgw/rest"
	"github.com/fabric-rest/assetgw/internal/assetgw/version"
	"github.com/fabric-rest/assetgw/internal/pkg/comm"
	"github.com/fabric-rest/assetgw/internal/pkg/gateway"
	"github.com/fabric-rest/assetgw/internal/pkg/identity"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/grouper"
	"github.com/tedsuo/ifrit/sigmon"
)

const gatewayComponent = "gateway"

var logger = flogging.MustGetLogger("assetgw.node")

// StartCmd returns the command that runs the asset gateway.
func StartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Starts the asset gateway.",
		Long:  `Connects to the peer gateway and serves the asset REST API until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("trailing args detected")
			}
			// Parsing of the command line is done so silence cmd usage
			cmd.SilenceUsage = true

			conf, err := config.Load()
			if err != nil {
				return err
			}
			return serve(conf)
		},
	}
}

// Node holds the long running parts of the asset gateway.
type Node struct {
	Operations *operations.System
	Connection *gateway.Connection
	REST       *rest.Server
}

// New initializes logging, starts the operations endpoint and connects to the
// peer gateway. The REST server is created but not started; see Runner.
func New(conf *config.TopLevel) (*Node, error) {
	err := flogging.Global.Apply(flogging.Config{
		Format:  conf.Logging.Format,
		LogSpec: conf.Logging.Spec,
		Writer:  os.Stderr,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "invalid logging configuration")
	}
	logger.Infof("Starting %s", version.GetInfo())

	opsSystem := newOperationsSystem(conf)
	if err := opsSystem.Start(); err != nil {
		return nil, errors.WithMessage(err, "failed to initialize operations subsystem")
	}
	metricsProvider := opsSystem.Provider
	flogging.SetObserver(floggingmetrics.NewObserver(metricsProvider))

	id, err := identity.Load(conf.Gateway.MSPID, conf.Gateway.Identity.Cert, conf.Gateway.Identity.Key)
	if err != nil {
		opsSystem.Stop()
		return nil, errors.WithMessage(err, "failed to load client identity")
	}
	rootCAs, err := comm.ReadRootCAs(conf.Gateway.TLS.RootCert)
	if err != nil {
		opsSystem.Stop()
		return nil, err
	}
	crypto.TrackExpiration(id.CertPEM, rootCAs[0], logger.Infof, logger.Warnf, time.Now(), time.AfterFunc)

	gatewayConf := gatewayConfig(conf, rootCAs)
	if conf.Gateway.TLS.ClientAuthRequired {
		gatewayConf.ClientCert, gatewayConf.ClientKey, err = readClientCredentials(conf.Gateway.TLS)
		if err != nil {
			opsSystem.Stop()
			return nil, err
		}
	}

	conn, err := gateway.Connect(gatewayConf, id, metricsProvider)
	if err != nil {
		opsSystem.Stop()
		return nil, err
	}

	checker := healthcheckers.NewGatewayChecker(conn)
	if err := opsSystem.RegisterChecker(gatewayComponent, checker); err != nil {
		logger.Warnf("Failed to register %s health checker: %s", gatewayComponent, err)
	}
	if err := opsSystem.RegisterReadinessChecker(gatewayComponent, checker); err != nil {
		logger.Warnf("Failed to register %s readiness checker: %s", gatewayComponent, err)
	}

	service := assets.NewService(conn.Contract(), clock.NewClock(), conn.DefaultSubmitOptions())
	restServer := rest.NewServer(rest.Options{
		Logger:        flogging.MustGetLogger("assetgw.rest.server"),
		ListenAddress: conf.REST.ListenAddress,
		TLS:           httpTLS(conf.REST.TLS),
		AllowedOrigin: conf.REST.CORS.AllowedOrigin,
		AccessLog:     conf.REST.AccessLog,
		Metrics:       metricsProvider,
	}, service)

	return &Node{
		Operations: opsSystem,
		Connection: conn,
		REST:       restServer,
	}, nil
}

// Runner starts the REST server and, when signaled, stops it before closing
// the peer connection and the operations endpoint.
func (n *Node) Runner() ifrit.Runner {
	return grouper.NewOrdered(syscall.SIGTERM, grouper.Members{
		{Name: "connection", Runner: ifrit.RunFunc(n.closeOnSignal)},
		{Name: "rest", Runner: n.REST},
	})
}

func (n *Node) closeOnSignal(signals <-chan os.Signal, ready chan<- struct{}) error {
	close(ready)
	<-signals

	if err := n.Connection.Close(); err != nil {
		logger.Warnf("Failed closing peer connection: %s", err)
	}
	return n.Operations.Stop()
}

func serve(conf *config.TopLevel) error {
	n, err := New(conf)
	if err != nil {
		return err
	}

	handleSignals(addPlatformSignals(map[os.Signal]func(){}))

	process := ifrit.Invoke(sigmon.New(n.Runner(), syscall.SIGTERM, syscall.SIGINT))
	logger.Infow("Serving asset API", "address", n.REST.Addr(), "operations", n.Operations.Addr(), "version", metadata.Version)

	err = <-process.Wait()
	if err != nil {
		return err
	}
	logger.Info("Stopped")
	return nil
}

func handleSignals(handlers map[os.Signal]func()) {
	if len(handlers) == 0 {
		return
	}

	var signals []os.Signal
	for sig := range handlers {
		signals = append(signals, sig)
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, signals...)

	go func() {
		for sig := range signalChan {
			logger.Infof("Received signal: %d (%s)", sig, sig)
			handlers[sig]()
		}
	}()
}

func newOperationsSystem(conf *config.TopLevel) *operations.System {
	return operations.NewSystem(operations.Options{
		Options: fabhttp.Options{
			Logger:        flogging.MustGetLogger("operations.runner"),
			ListenAddress: conf.Operations.ListenAddress,
			TLS:           httpTLS(conf.Operations.TLS),
		},
		Metrics: operations.MetricsOptions{
			Provider: conf.Metrics.Provider,
		},
		Version: metadata.Version,
	})
}

func gatewayConfig(conf *config.TopLevel, rootCAs [][]byte) gateway.Config {
	return gateway.Config{
		Endpoint:     conf.Gateway.PeerEndpoint,
		HostOverride: conf.Gateway.HostOverride,
		TLSRootCerts: rootCAs,
		Channel:      conf.Gateway.Channel,
		Chaincode:    conf.Gateway.Chaincode,
		DialTimeout:  conf.Gateway.DialTimeout,
		Keepalive: comm.KeepaliveOptions{
			ClientInterval: conf.Gateway.Keepalive.Interval,
			ClientTimeout:  conf.Gateway.Keepalive.Timeout,
		},
		Timeouts: gateway.Timeouts{
			Evaluate:     conf.Gateway.Timeouts.Evaluate,
			Endorse:      conf.Gateway.Timeouts.Endorse,
			Submit:       conf.Gateway.Timeouts.Submit,
			CommitStatus: conf.Gateway.Timeouts.CommitStatus,
		},
		WaitForCommit: conf.Gateway.Commit.Wait,
	}
}

func readClientCredentials(t config.ClientTLS) (cert, key []byte, err error) {
	cert, err = os.ReadFile(t.ClientCert)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read TLS client certificate")
	}
	key, err = os.ReadFile(t.ClientKey)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read TLS client key")
	}
	return cert, key, nil
}

func httpTLS(t config.TLS) fabhttp.TLS {
	return fabhttp.TLS{
		Enabled:            t.Enabled,
		CertFile:           t.Certificate,
		KeyFile:            t.PrivateKey,
		ClientCertRequired: t.ClientAuthRequired,
		ClientCACertFiles:  t.ClientRootCAs,
	}
}
