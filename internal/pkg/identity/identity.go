/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package identity loads the client credentials used to sign ledger requests.

package identity

import (
	"crypto"
	"crypto/x509"
	"os"
	"path/filepath"
	"sort"

	"github.com/hyperledger/fabric-gateway/pkg/identity"
	"github.com/pkg/errors"
)

// SigningIdentity is an X.509 client identity together with the private key
// signing function that belongs to it.
type SigningIdentity struct {
	*identity.X509Identity
	Certificate *x509.Certificate
	// CertPEM is the PEM encoded enrollment certificate.
	CertPEM []byte
	// SignDigest signs a message digest.
	SignDigest identity.Sign
}

// Load reads the PEM certificate at certPath and the PEM private key at
// keyPath. Either path may name a directory, in which case the first regular
// file in it is used, matching the msp/signcerts and msp/keystore layout.
func Load(mspID, certPath, keyPath string) (*SigningIdentity, error) {
	if mspID == "" {
		return nil, errors.New("an MSP ID is required")
	}

	certPEM, err := ReadFirstFile(certPath)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read certificate")
	}
	cert, err := identity.CertificateFromPEM(certPEM)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse certificate %s", certPath)
	}

	keyPEM, err := ReadFirstFile(keyPath)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read private key")
	}
	privateKey, err := identity.PrivateKeyFromPEM(keyPEM)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse private key %s", keyPath)
	}

	if err := checkKeyMatchesCertificate(privateKey, cert); err != nil {
		return nil, err
	}

	id, err := identity.NewX509Identity(mspID, cert)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create X.509 identity")
	}
	sign, err := identity.NewPrivateKeySign(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create signer")
	}

	return &SigningIdentity{
		X509Identity: id,
		Certificate:  cert,
		CertPEM:      certPEM,
		SignDigest:   sign,
	}, nil
}

// ReadFirstFile returns the contents of path, or of the first regular file in
// path when it is a directory.
func ReadFirstFile(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}
	if !fi.IsDir() {
		return readFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", path)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, e := range entries {
		if e.Type().IsRegular() {
			return readFile(filepath.Join(path, e.Name()))
		}
	}
	return nil, errors.Errorf("no files found in directory %s", path)
}

func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return b, nil
}

type publicKeyer interface {
	Public() crypto.PublicKey
}

type publicKeyEqualer interface {
	Equal(crypto.PublicKey) bool
}

func checkKeyMatchesCertificate(privateKey crypto.PrivateKey, cert *x509.Certificate) error {
	pk, ok := privateKey.(publicKeyer)
	if !ok {
		return errors.Errorf("unsupported private key type %T", privateKey)
	}
	pub, ok := pk.Public().(publicKeyEqualer)
	if !ok {
		return errors.Errorf("unsupported public key type %T", pk.Public())
	}
	if !pub.Equal(cert.PublicKey) {
		return errors.Errorf("private key does not match the public key of certificate %s", cert.Subject)
	}
	return nil
}
