package packager

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"atakama.com/sdk/sandbox"
)

// Verify checks an .apkg without keeping its contents: the certificate
// and every bundle signature are validated against a throwaway dir.
func Verify(pkgPath string, selfSigned bool) error {
	scratch := filepath.Join(os.TempDir(), uuid.NewString()+"-verify")
	defer os.RemoveAll(scratch)
	return Unpack(pkgPath, scratch, selfSigned)
}

// Unpack verifies an .apkg and extracts its payload bundles into destDir.
// The certificate inside the package is checked first, then every
// bundle's signature; only verified bundles are extracted.
func Unpack(pkgPath, destDir string, selfSigned bool) error {
	r, err := zip.OpenReader(pkgPath)
	if err != nil {
		return fmt.Errorf("opening package: %w", err)
	}
	defer r.Close()

	tmpDir := filepath.Join(os.TempDir(), uuid.NewString()+"-apkg")
	if err := os.MkdirAll(tmpDir, 0o700); err != nil {
		return fmt.Errorf("creating work dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	entries := make(map[string]*zip.File, len(r.File))
	var bundles []*zip.File
	for _, f := range r.File {
		entries[f.Name] = f
		if strings.HasSuffix(f.Name, ".zip") {
			bundles = append(bundles, f)
		}
	}

	certEntry, ok := entries[CertEntry]
	if !ok {
		return fmt.Errorf("package %s has no certificate", pkgPath)
	}
	crtPath, err := extractEntry(certEntry, tmpDir)
	if err != nil {
		return err
	}
	if err := VerifyCertificate(crtPath, selfSigned); err != nil {
		return err
	}

	if len(bundles) == 0 {
		return fmt.Errorf("package %s has no payload bundles", pkgPath)
	}

	zfac := &sandbox.ZipFacility{}
	for _, bundle := range bundles {
		sigEntry, ok := entries[bundle.Name+SignatureExt]
		if !ok {
			return fmt.Errorf("bundle %s has no signature", bundle.Name)
		}
		bundlePath, err := extractEntry(bundle, tmpDir)
		if err != nil {
			return err
		}
		sigPath, err := extractEntry(sigEntry, tmpDir)
		if err != nil {
			return err
		}
		if err := VerifySignature(crtPath, bundlePath, sigPath); err != nil {
			return err
		}
		if err := zfac.Extract(bundlePath, destDir); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(f *zip.File, dir string) (string, error) {
	target, err := sandbox.SafeJoin(dir, f.Name)
	if err != nil {
		return "", err
	}
	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("opening entry %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return target, nil
}
