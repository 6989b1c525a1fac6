/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"path/filepath"
	"time"

	"github.com/fabric-rest/assetgw/common/flogging"
	"github.com/fabric-rest/assetgw/common/viperutil"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Prefix for environment variables.
const Prefix = "ASSETGW"

// ConfigName is the name of the config file without the extension.
const ConfigName = "assetgw"

var logger = flogging.MustGetLogger("config")

// TopLevel directly corresponds to the assetgw config YAML.
type TopLevel struct {
	Gateway    Gateway
	REST       REST
	Operations Operations
	Metrics    Metrics
	Logging    Logging
}

// Gateway contains the connection parameters for the peer and the contract.
type Gateway struct {
	MSPID        string
	PeerEndpoint string
	HostOverride string
	Channel      string
	Chaincode    string
	TLS          ClientTLS
	Identity     Identity
	DialTimeout  time.Duration
	Keepalive    Keepalive
	Timeouts     Timeouts
	Commit       Commit
}

// ClientTLS holds the trust anchors used to verify the peer and the client
// credentials presented to peers that require client authentication.
type ClientTLS struct {
	RootCert           string
	ClientAuthRequired bool
	ClientCert         string
	ClientKey          string
}

// Identity holds the paths to the client signing credentials. Key may name a
// single PEM file or a keystore directory.
type Identity struct {
	Cert string
	Key  string
}

// Keepalive contains the client keepalive settings.
type Keepalive struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Timeouts bound each phase of a ledger call.
type Timeouts struct {
	Evaluate     time.Duration
	Endorse      time.Duration
	Submit       time.Duration
	CommitStatus time.Duration
}

// Commit controls whether writes wait for the commit status by default.
type Commit struct {
	Wait bool
}

// REST contains the configuration of the asset REST server.
type REST struct {
	ListenAddress string
	CORS          CORS
	AccessLog     bool
	TLS           TLS
}

// CORS contains the single origin allowed to call the REST server.
type CORS struct {
	AllowedOrigin string
}

// Operations configures the operations endpoint.
type Operations struct {
	ListenAddress string
	TLS           TLS
}

// TLS contains configuration for an HTTP listener.
type TLS struct {
	Enabled            bool
	Certificate        string
	PrivateKey         string
	ClientAuthRequired bool
	ClientRootCAs      []string
}

// Metrics configures the metrics provider.
type Metrics struct {
	Provider string
}

// Logging contains the logging spec and output format.
type Logging struct {
	Spec   string
	Format string
}

const testNetwork = "organizations/peerOrganizations/org1.example.com"

// Defaults carries the default assetgw configuration values.
var Defaults = map[string]interface{}{
	"gateway.mspId":                  "Org1MSP",
	"gateway.peerEndpoint":           "localhost:7051",
	"gateway.hostOverride":           "peer0.org1.example.com",
	"gateway.channel":                "mychannel",
	"gateway.chaincode":              "basic",
	"gateway.tls.rootCert":           testNetwork + "/tlsca/tlsca.org1.example.com-cert.pem",
	"gateway.tls.clientAuthRequired": false,
	"gateway.tls.clientCert":         "",
	"gateway.tls.clientKey":          "",
	"gateway.identity.cert":          testNetwork + "/users/Admin@org1.example.com/msp/signcerts/Admin@org1.example.com-cert.pem",
	"gateway.identity.key":           testNetwork + "/users/Admin@org1.example.com/msp/keystore",
	"gateway.dialTimeout":            "10s",
	"gateway.keepalive.interval":     "1m",
	"gateway.keepalive.timeout":      "20s",
	"gateway.timeouts.evaluate":      "5s",
	"gateway.timeouts.endorse":       "15s",
	"gateway.timeouts.submit":        "5s",
	"gateway.timeouts.commitStatus":  "1m",
	"gateway.commit.wait":            true,
	"rest.listenAddress":             "0.0.0.0:3000",
	"rest.cors.allowedOrigin":        "http://localhost:5173",
	"rest.accessLog":                 false,
	"rest.tls.enabled":               false,
	"operations.listenAddress":       "127.0.0.1:9443",
	"operations.tls.enabled":         false,
	"metrics.provider":               "disabled",
	"logging.spec":                   "info",
	"logging.format":                 "console",
}

// Load parses the assetgw YAML file and environment, producing
// a struct suitable for config use, returning error on failure.
func Load() (*TopLevel, error) {
	v := viper.New()
	if err := viperutil.InitViper(v, ConfigName, Prefix); err != nil {
		return nil, err
	}
	return LoadFromViper(v)
}

// LoadFromViper reads the config file v was set up to find and decodes it. A
// missing file is tolerated; defaults and environment overrides still apply.
func LoadFromViper(v *viper.Viper) (*TopLevel, error) {
	SetDefaults(v)

	configDir := "."
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "error reading configuration")
		}
		logger.Warningf("No %s.yaml found in %v, using defaults", ConfigName, viperutil.ConfigPaths())
	} else {
		configDir = filepath.Dir(v.ConfigFileUsed())
		logger.Infof("Loaded configuration from %s", v.ConfigFileUsed())
	}

	var uconf TopLevel
	if err := viperutil.EnhancedExactUnmarshal(v, &uconf); err != nil {
		return nil, errors.WithMessage(err, "error unmarshalling config into struct")
	}

	uconf.completeInitialization(configDir)
	if err := uconf.Validate(); err != nil {
		return nil, err
	}
	return &uconf, nil
}

// SetDefaults registers Defaults with v.
func SetDefaults(v *viper.Viper) {
	for k, val := range Defaults {
		v.SetDefault(k, val)
	}
}

func (c *TopLevel) completeInitialization(configDir string) {
	translate := func(p *string) { *p = viperutil.TranslatePath(configDir, *p) }

	translate(&c.Gateway.TLS.RootCert)
	translate(&c.Gateway.TLS.ClientCert)
	translate(&c.Gateway.TLS.ClientKey)
	translate(&c.Gateway.Identity.Cert)
	translate(&c.Gateway.Identity.Key)

	for _, t := range []*TLS{&c.REST.TLS, &c.Operations.TLS} {
		translate(&t.Certificate)
		translate(&t.PrivateKey)
		for i := range t.ClientRootCAs {
			translate(&t.ClientRootCAs[i])
		}
	}
}

// Validate reports the first missing or invalid setting.
func (c *TopLevel) Validate() error {
	required := []struct {
		key, val string
	}{
		{"gateway.mspId", c.Gateway.MSPID},
		{"gateway.peerEndpoint", c.Gateway.PeerEndpoint},
		{"gateway.channel", c.Gateway.Channel},
		{"gateway.chaincode", c.Gateway.Chaincode},
		{"gateway.tls.rootCert", c.Gateway.TLS.RootCert},
		{"gateway.identity.cert", c.Gateway.Identity.Cert},
		{"gateway.identity.key", c.Gateway.Identity.Key},
		{"rest.listenAddress", c.REST.ListenAddress},
	}
	for _, r := range required {
		if r.val == "" {
			return errors.Errorf("%s must be set", r.key)
		}
	}

	switch c.Metrics.Provider {
	case "", "disabled", "prometheus":
	default:
		return errors.Errorf("unknown metrics provider: %s", c.Metrics.Provider)
	}

	if t := c.Gateway.TLS; t.ClientAuthRequired && (t.ClientCert == "" || t.ClientKey == "") {
		return errors.New("gateway.tls requires clientCert and clientKey when clientAuthRequired")
	}

	for name, t := range map[string]TLS{"rest": c.REST.TLS, "operations": c.Operations.TLS} {
		if t.Enabled && (t.Certificate == "" || t.PrivateKey == "") {
			return errors.Errorf("%s.tls requires certificate and privateKey when enabled", name)
		}
	}

	return nil
}
