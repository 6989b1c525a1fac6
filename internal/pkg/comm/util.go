/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package comm

import (
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/pkg/errors"
)

// AddPemToCertPool adds PEM-encoded certs to a cert pool
func AddPemToCertPool(pemCerts []byte, pool *x509.CertPool) error {
	certs, err := pemToX509Certs(pemCerts)
	if err != nil {
		return err
	}
	for _, cert := range certs {
		pool.AddCert(cert)
	}
	return nil
}

// parse PEM-encoded certs
func pemToX509Certs(pemCerts []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate

	// it's possible that multiple certs are encoded
	for len(pemCerts) > 0 {
		var block *pem.Block
		block, pemCerts = pem.Decode(pemCerts)
		if block == nil {
			break
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}

		certs = append(certs, cert)
	}

	return certs, nil
}

// ReadRootCAs reads the PEM files at paths into a form suitable for
// SecureOptions.ServerRootCAs. A file without any certificate is an error.
func ReadRootCAs(paths ...string) ([][]byte, error) {
	var rootCAs [][]byte
	for _, p := range paths {
		pemBytes, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read TLS root certificate %s", p)
		}
		certs, err := pemToX509Certs(pemBytes)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse TLS root certificate %s", p)
		}
		if len(certs) == 0 {
			return nil, errors.Errorf("no certificates found in %s", p)
		}
		rootCAs = append(rootCAs, pemBytes)
	}
	return rootCAs, nil
}
