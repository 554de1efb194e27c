package attest

import (
	"strings"
	"testing"
	"time"

	"github.com/rajivksingh13/darbiter/pkg/eligibility"
	"github.com/rajivksingh13/darbiter/pkg/scan"
)

func sampleCertificate() scan.Certificate {
	return scan.Certificate{
		ScanID:      "scan-123",
		Issuer:      "local-scan",
		Eligibility: eligibility.StatusAISafe,
		Usage:       scan.UsageInference,
		Ruleset:     "Combined Baseline (1.3)",
		IssuedAt:    time.Unix(1_700_000_000, 0).UTC(),
	}
}

func TestSignAndVerify(t *testing.T) {
	signer := NewHMACSigner([]byte("test-signing-key"))
	cert := sampleCertificate()

	sig, err := signer.Sign(&cert)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig == "" {
		t.Fatal("empty signature")
	}
	if err := signer.Verify(&cert, sig); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestSignDeterministic(t *testing.T) {
	signer := NewHMACSigner([]byte("test-signing-key"))
	cert := sampleCertificate()

	first, err := signer.Sign(&cert)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	second, err := signer.Sign(&cert)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if first != second {
		t.Errorf("signatures differ: %q vs %q", first, second)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	signer := NewHMACSigner([]byte("test-signing-key"))
	cert := sampleCertificate()

	sig, err := signer.Sign(&cert)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tampered := cert
	tampered.Eligibility = eligibility.StatusNotAISafe
	if err := signer.Verify(&tampered, sig); err == nil {
		t.Error("Verify accepted a tampered certificate")
	}

	if err := signer.Verify(&cert, "not-hex"); err == nil {
		t.Error("Verify accepted a malformed signature")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	cert := sampleCertificate()
	sig, err := NewHMACSigner([]byte("key-a")).Sign(&cert)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := NewHMACSigner([]byte("key-b")).Verify(&cert, sig); err == nil {
		t.Error("Verify accepted a signature from a different key")
	}
}

func TestSignNilCertificate(t *testing.T) {
	signer := NewHMACSigner([]byte("k"))
	if _, err := signer.Sign(nil); err == nil {
		t.Error("Sign accepted nil certificate")
	}
	if err := signer.Verify(nil, "00"); err == nil {
		t.Error("Verify accepted nil certificate")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	signer := NewHMACSigner([]byte("test-signing-key"))
	signed, err := Attach(signer, sampleCertificate())
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}

	token, err := Encode(signed)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Certificate.ScanID != signed.Certificate.ScanID {
		t.Errorf("scan id = %q, want %q", decoded.Certificate.ScanID, signed.Certificate.ScanID)
	}
	if decoded.Signature != signed.Signature {
		t.Errorf("signature = %q, want %q", decoded.Signature, signed.Signature)
	}
	if err := signer.Verify(&decoded.Certificate, decoded.Signature); err != nil {
		t.Errorf("decoded certificate failed verification: %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(""); err == nil {
		t.Error("Decode accepted empty token")
	}
	if _, err := Decode("!!!not-base64!!!"); err == nil {
		t.Error("Decode accepted invalid base64")
	}
	if _, err := Decode(strings.Repeat("AAAA", 4)); err == nil {
		t.Error("Decode accepted non-JSON payload")
	}
}

func TestEncodeNil(t *testing.T) {
	if _, err := Encode(nil); err == nil {
		t.Error("Encode accepted nil")
	}
}
