package packager

import (
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// VerifyCertificate parses the certificate, requires the
// digital-signature key usage, and unless selfSigned is set verifies the
// chain to the system roots.
func VerifyCertificate(crtPath string, selfSigned bool) error {
	cert, err := loadCertificate(crtPath)
	if err != nil {
		return err
	}
	if cert.KeyUsage&x509.KeyUsageDigitalSignature == 0 {
		return fmt.Errorf("certificate %s: digital_signature usage required", crtPath)
	}
	if selfSigned {
		return nil
	}
	if _, err := cert.Verify(x509.VerifyOptions{}); err != nil {
		return fmt.Errorf("certificate %s: %w", crtPath, err)
	}
	return nil
}

// VerifySignature checks the payload against its signature under the
// certificate's RSA public key.
func VerifySignature(crtPath, payloadPath, sigPath string) error {
	cert, err := loadCertificate(crtPath)
	if err != nil {
		return err
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("certificate %s: not an RSA key", crtPath)
	}
	digest, err := fileDigest(payloadPath)
	if err != nil {
		return err
	}
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return fmt.Errorf("reading signature: %w", err)
	}
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest, sig); err != nil {
		return fmt.Errorf("%s: %w", payloadPath, ErrBadSignature)
	}
	return nil
}

func loadCertificate(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading certificate: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("certificate %s: no PEM data", path)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("certificate %s: %w", path, err)
	}
	return cert, nil
}
