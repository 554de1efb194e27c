// Package attest signs issued certificates so downstream systems can verify
// that an eligibility outcome came from a trusted scanner.
package attest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/rajivksingh13/darbiter/pkg/scan"
)

// Signer signs certificates using a keyed MAC.
type Signer interface {
	// Sign computes the signature over a certificate's canonical form.
	Sign(cert *scan.Certificate) (string, error)

	// Verify checks a signature against the certificate.
	Verify(cert *scan.Certificate, signature string) error
}

// SignedCertificate pairs a certificate with its signature.
type SignedCertificate struct {
	Certificate scan.Certificate `json:"certificate"`
	Signature   string           `json:"signature"`
}

// Attach signs the certificate and wraps it.
func Attach(signer Signer, cert scan.Certificate) (*SignedCertificate, error) {
	sig, err := signer.Sign(&cert)
	if err != nil {
		return nil, err
	}
	return &SignedCertificate{Certificate: cert, Signature: sig}, nil
}

// Encode serializes a signed certificate to a base64-encoded JSON token
// suitable for header or file propagation.
func Encode(sc *SignedCertificate) (string, error) {
	if sc == nil {
		return "", fmt.Errorf("signed certificate is nil")
	}
	data, err := json.Marshal(sc)
	if err != nil {
		return "", fmt.Errorf("marshaling signed certificate: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode deserializes a signed certificate token.
func Decode(s string) (*SignedCertificate, error) {
	if s == "" {
		return nil, fmt.Errorf("certificate token is empty")
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding certificate token: %w", err)
	}
	var sc SignedCertificate
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("unmarshaling signed certificate: %w", err)
	}
	return &sc, nil
}
