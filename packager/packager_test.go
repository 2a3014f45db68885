package packager

import (
	"archive/zip"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"atakama.com/sdk/plugin"
)

// chdir changes into dir for the duration of the test, restoring the
// previous working directory on cleanup (t.Chdir needs Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// selfSignedPair writes a fresh RSA key and self-signed cert as PEM files
// and returns their paths.
func selfSignedPair(t *testing.T, keyUsage x509.KeyUsage) (keyPath, crtPath string) {
	t.Helper()
	dir := t.TempDir()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "packager-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     keyUsage,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyPath = filepath.Join(dir, "key.pem")
	crtPath = filepath.Join(dir, "crt.pem")
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{
		Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), 0o600))
	require.NoError(t, os.WriteFile(crtPath, pem.EncodeToMemory(&pem.Block{
		Type: "CERTIFICATE", Bytes: der,
	}), 0o644))
	return keyPath, crtPath
}

func writePluginSource(t *testing.T, dir string) string {
	t.Helper()
	src := filepath.Join(dir, "runcmd")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "detector.go"),
		[]byte("package runcmd\n"), 0o644))
	return src
}

func TestPackager_Pack_RoundTripsThroughUnpack(t *testing.T) {
	key, crt := selfSignedPair(t, x509.KeyUsageDigitalSignature)
	work := t.TempDir()
	chdir(t, work)

	src := writePluginSource(t, work)

	p := &Packager{Src: src, Key: key, Crt: crt, SelfSigned: true}
	apkg, err := p.Pack()
	require.NoError(t, err)
	assert.Equal(t, PackageExt, filepath.Ext(apkg))
	require.FileExists(t, apkg)

	// Package holds payload, signature and cert.
	r, err := zip.OpenReader(apkg)
	require.NoError(t, err)
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	r.Close()
	assert.ElementsMatch(t, []string{"runcmd.zip", "runcmd.zip.sig", CertEntry}, names)

	dest := filepath.Join(work, "plugins")
	require.NoError(t, Unpack(apkg, dest, true))
	assert.FileExists(t, filepath.Join(dest, "runcmd", "detector.go"))

	// A default manifest was generated for the bare source dir.
	data, err := os.ReadFile(filepath.Join(dest, "runcmd", ManifestName))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, "runcmd", m.Name)
	assert.Equal(t, plugin.CurrentSDKVersion, m.SDKVersion)
	assert.NotEmpty(t, m.ID)
}

func TestPackager_Pack_KeepsExistingManifest(t *testing.T) {
	key, crt := selfSignedPair(t, x509.KeyUsageDigitalSignature)
	work := t.TempDir()
	chdir(t, work)

	src := writePluginSource(t, work)
	require.NoError(t, os.WriteFile(filepath.Join(src, ManifestName),
		[]byte("name: runcmd\nversion: \"7.7\"\nsdk_version: 2\nid: fixed\n"), 0o644))

	p := &Packager{Src: src, Key: key, Crt: crt, SelfSigned: true}
	apkg, err := p.Pack()
	require.NoError(t, err)

	dest := filepath.Join(work, "plugins")
	require.NoError(t, Unpack(apkg, dest, true))

	var m Manifest
	data, err := os.ReadFile(filepath.Join(dest, "runcmd", ManifestName))
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, "7.7", m.Version)
	assert.Equal(t, "fixed", m.ID)
}

func TestPackager_Pack_NothingToDo(t *testing.T) {
	key, crt := selfSignedPair(t, x509.KeyUsageDigitalSignature)

	p := &Packager{Key: key, Crt: crt, SelfSigned: true}
	_, err := p.Pack()
	assert.ErrorIs(t, err, ErrNothingToDo)
}

func TestUnpack_RejectsTamperedPayload(t *testing.T) {
	key, crt := selfSignedPair(t, x509.KeyUsageDigitalSignature)
	work := t.TempDir()
	chdir(t, work)

	src := writePluginSource(t, work)
	p := &Packager{Src: src, Key: key, Crt: crt, SelfSigned: true}
	_, err := p.Pack()
	require.NoError(t, err)

	// Rebuild the apkg with a modified payload but the original signature.
	bundle := filepath.Join(distDir, "runcmd.zip")
	require.NoError(t, appendToZip(bundle, "runcmd/evil.go", "package runcmd // evil\n"))
	forged := &Packager{Pkg: bundle, Key: key, Crt: crt, SelfSigned: true}
	// Skip re-signing: assemble the package with the stale signature.
	apkg, err := forged.ZipPackage()
	require.NoError(t, err)

	err = Unpack(apkg, filepath.Join(work, "plugins"), true)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestUnpack_RejectsForeignSignature(t *testing.T) {
	keyA, crtA := selfSignedPair(t, x509.KeyUsageDigitalSignature)
	_, crtB := selfSignedPair(t, x509.KeyUsageDigitalSignature)
	work := t.TempDir()
	chdir(t, work)

	src := writePluginSource(t, work)
	p := &Packager{Src: src, Key: keyA, Crt: crtA, SelfSigned: true}
	_, err := p.Pack()
	require.NoError(t, err)

	// Same payload and signature, but a different signer's cert.
	forged := &Packager{Pkg: filepath.Join(distDir, "runcmd.zip"), Crt: crtB}
	apkg, err := forged.ZipPackage()
	require.NoError(t, err)

	err = Unpack(apkg, filepath.Join(work, "plugins"), true)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyCertificate_Policies(t *testing.T) {
	_, signing := selfSignedPair(t, x509.KeyUsageDigitalSignature)
	_, encOnly := selfSignedPair(t, x509.KeyUsageDataEncipherment)

	assert.NoError(t, VerifyCertificate(signing, true))
	assert.Error(t, VerifyCertificate(signing, false),
		"a self-signed cert does not chain to system roots")
	assert.Error(t, VerifyCertificate(encOnly, true),
		"digital_signature usage is required")
}

// appendToZip rewrites an archive with one extra entry.
func appendToZip(path, name, content string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := zip.NewWriter(f)
	for _, ent := range r.File {
		src, err := ent.Open()
		if err != nil {
			return err
		}
		dst, err := w.Create(ent.Name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(dst, src); err != nil {
			return err
		}
		src.Close()
	}
	dst, err := w.Create(name)
	if err != nil {
		return err
	}
	if _, err := dst.Write([]byte(content)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
