// Package packager builds, signs, verifies and unpacks Atakama plugin
// packages. An .apkg is a zip holding a payload bundle (itself a zip of
// the plugin's files), an RSA-SHA256 signature over the payload, and the
// signer's certificate proving authority.
package packager

import (
	"archive/zip"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"atakama.com/sdk/plugin"
)

const (
	// PackageExt is the extension of a finished plugin package.
	PackageExt = ".apkg"
	// SignatureExt is appended to the payload name for its signature.
	SignatureExt = ".sig"
	// CertEntry is the archive name of the signer certificate.
	CertEntry = "cert"
	// ManifestName is the bundle manifest file.
	ManifestName = "manifest.yml"
	// distDir receives built bundles and packages.
	distDir = "dist"
)

var (
	// ErrNothingToDo is returned when neither a source dir nor a payload
	// file was supplied.
	ErrNothingToDo = errors.New("nothing to do: must specify a source dir or a package file")

	// ErrBadSignature is returned when a payload does not match its
	// signature under the package certificate.
	ErrBadSignature = errors.New("signature verification failed")
)

// Manifest describes a plugin bundle.
type Manifest struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description,omitempty"`
	SDKVersion  int    `yaml:"sdk_version"`
	ID          string `yaml:"id"`
}

// DefaultManifest fills a manifest for a plugin directory that ships none.
func DefaultManifest(name string) Manifest {
	return Manifest{
		Name:       name,
		Version:    "1.0",
		SDKVersion: plugin.CurrentSDKVersion,
		ID:         uuid.NewString(),
	}
}

// Packager drives the pack pipeline: bundle a source dir (or take a
// prebuilt payload), sign it, and assemble the .apkg.
type Packager struct {
	// Src is the plugin source root folder; bundled when set.
	Src string
	// Pkg is the payload file path; set directly or by BuildBundle.
	Pkg string
	// Key is the PEM private key used for signing.
	Key string
	// Crt is the PEM certificate matching Key.
	Crt string
	// SelfSigned allows a certificate that does not chain to a system
	// root.
	SelfSigned bool
}

// Pack runs the whole pipeline and returns the .apkg path.
func (p *Packager) Pack() (string, error) {
	if p.Src == "" && p.Pkg == "" {
		return "", ErrNothingToDo
	}
	if !p.SelfSigned {
		if err := VerifyCertificate(p.Crt, false); err != nil {
			return "", err
		}
	}
	if p.Src != "" {
		if err := p.BuildBundle(); err != nil {
			return "", err
		}
	}
	if err := p.SignPackage(); err != nil {
		return "", err
	}
	return p.ZipPackage()
}

// BuildBundle zips the source dir into dist/<name>.zip, generating a
// default manifest when the dir has none, and points Pkg at the result.
func (p *Packager) BuildBundle() error {
	info, err := os.Stat(p.Src)
	if err != nil {
		return fmt.Errorf("source dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", p.Src)
	}

	name := filepath.Base(filepath.Clean(p.Src))
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", distDir, err)
	}
	out := filepath.Join(distDir, name+".zip")

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating bundle: %w", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	hasManifest := false

	walkErr := filepath.Walk(p.Src, func(path string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return err
		}
		rel, err := filepath.Rel(p.Src, path)
		if err != nil {
			return err
		}
		if rel == ManifestName {
			hasManifest = true
		}
		entry, err := w.Create(filepath.ToSlash(filepath.Join(name, rel)))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(entry, src)
		return err
	})
	if walkErr != nil {
		w.Close()
		return fmt.Errorf("bundling %s: %w", p.Src, walkErr)
	}

	if !hasManifest {
		data, err := yaml.Marshal(DefaultManifest(name))
		if err != nil {
			w.Close()
			return err
		}
		entry, err := w.Create(filepath.ToSlash(filepath.Join(name, ManifestName)))
		if err != nil {
			w.Close()
			return err
		}
		if _, err := entry.Write(data); err != nil {
			w.Close()
			return err
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing bundle: %w", err)
	}
	p.Pkg = out
	return nil
}

// SignPackage writes an RSA-SHA256 signature next to the payload and
// self-checks it against the certificate.
func (p *Packager) SignPackage() error {
	key, err := loadPrivateKey(p.Key)
	if err != nil {
		return err
	}
	digest, err := fileDigest(p.Pkg)
	if err != nil {
		return err
	}
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest)
	if err != nil {
		return fmt.Errorf("signing %s: %w", p.Pkg, err)
	}
	sigPath := p.Pkg + SignatureExt
	if err := os.WriteFile(sigPath, sig, 0o644); err != nil {
		return fmt.Errorf("writing signature: %w", err)
	}
	return VerifySignature(p.Crt, p.Pkg, sigPath)
}

// ZipPackage assembles <payload>.apkg from the payload, its signature and
// the certificate.
func (p *Packager) ZipPackage() (string, error) {
	final := p.Pkg + PackageExt
	f, err := os.Create(final)
	if err != nil {
		return "", fmt.Errorf("creating package: %w", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	files := map[string]string{
		filepath.Base(p.Pkg):                p.Pkg,
		filepath.Base(p.Pkg) + SignatureExt: p.Pkg + SignatureExt,
		CertEntry:                           p.Crt,
	}
	for arcname, path := range files {
		entry, err := w.Create(arcname)
		if err != nil {
			w.Close()
			return "", err
		}
		src, err := os.Open(path)
		if err != nil {
			w.Close()
			return "", fmt.Errorf("adding %s: %w", arcname, err)
		}
		_, err = io.Copy(entry, src)
		src.Close()
		if err != nil {
			w.Close()
			return "", fmt.Errorf("adding %s: %w", arcname, err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing package: %w", err)
	}
	return final, nil
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("key %s: no PEM data", path)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("key %s: %w", path, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key %s: not an RSA key", path)
	}
	return key, nil
}

func fileDigest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
