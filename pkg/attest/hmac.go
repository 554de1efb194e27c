package attest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/rajivksingh13/darbiter/pkg/scan"
)

// hmacSigner implements the Signer interface using HMAC-SHA256.
type hmacSigner struct {
	key []byte
}

// NewHMACSigner creates a new HMAC-SHA256 signer with the given key.
func NewHMACSigner(key []byte) Signer {
	return &hmacSigner{key: key}
}

// Sign creates an HMAC-SHA256 signature for the certificate. It builds a
// canonical string from the certificate fields and computes the HMAC.
func (s *hmacSigner) Sign(cert *scan.Certificate) (string, error) {
	if cert == nil {
		return "", fmt.Errorf("certificate is nil")
	}

	canonical := buildCanonicalString(cert)

	mac := hmac.New(sha256.New, s.key)
	if _, err := mac.Write([]byte(canonical)); err != nil {
		return "", fmt.Errorf("failed to compute HMAC: %w", err)
	}

	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify verifies the certificate signature using constant-time comparison.
func (s *hmacSigner) Verify(cert *scan.Certificate, signature string) error {
	if cert == nil {
		return fmt.Errorf("certificate is nil")
	}

	expected, err := s.Sign(cert)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	expectedBytes, err := hex.DecodeString(expected)
	if err != nil {
		return fmt.Errorf("failed to decode expected signature: %w", err)
	}

	actualBytes, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("failed to decode certificate signature: %w", err)
	}

	if !hmac.Equal(expectedBytes, actualBytes) {
		return fmt.Errorf("certificate signature verification failed")
	}

	return nil
}

// buildCanonicalString creates a deterministic string from certificate
// fields for HMAC computation. Format:
// scan_id|issuer|eligibility|usage|ruleset|issued_at_unix
func buildCanonicalString(c *scan.Certificate) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		c.ScanID,
		c.Issuer,
		c.Eligibility,
		c.Usage,
		c.Ruleset,
		c.IssuedAt.Unix(),
	)
}
