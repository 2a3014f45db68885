package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"atakama.com/sdk/packager"
)

// detectorKind names the scaffold flavors the wizard offers.
type detectorKind string

const (
	kindNameMatch detectorKind = "name-match"
	kindSubproc   detectorKind = "subprocess"
	kindHTTP      detectorKind = "http"
)

var allKinds = []detectorKind{kindNameMatch, kindSubproc, kindHTTP}

// scaffold writes a new plugin project: a manifest and a detector stub of
// the chosen flavor.
func scaffold(dir string, name string, kind detectorKind) error {
	root := filepath.Join(dir, name)
	if _, err := os.Stat(root); err == nil {
		return fmt.Errorf("directory %s already exists", root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating project dir: %w", err)
	}

	manifest := packager.DefaultManifest(name)
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(root, packager.ManifestName), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	stub, err := detectorStub(name, kind)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(root, "detector.go"), []byte(stub), 0o644); err != nil {
		return fmt.Errorf("writing detector stub: %w", err)
	}
	return nil
}

func detectorStub(name string, kind detectorKind) (string, error) {
	pkg := strings.ReplaceAll(name, "-", "")

	var body string
	switch kind {
	case kindNameMatch:
		body = `	return d.pattern.MatchString(fullPath), nil`
	case kindSubproc:
		body = `	execFacility, err := d.ns.Exec()
	if err != nil {
		return false, err
	}
	code, err := execFacility.RunShell(context.Background(), "your-helper "+fullPath)
	if err != nil {
		return false, err
	}
	return code == 0, nil`
	case kindHTTP:
		body = `	httpFacility, err := d.ns.HTTP()
	if err != nil {
		return false, err
	}
	var out struct {
		NeedsEncryption bool ` + "`json:\"needs_encryption\"`" + `
	}
	err = httpFacility.PostJSON(context.Background(), d.url, map[string]string{"path": fullPath}, &out)
	return out.NeedsEncryption, err`
	default:
		return "", fmt.Errorf("unknown detector kind %q", kind)
	}

	header := headerFor(kind, pkg, name)
	return header + `
// NeedsEncryption decides whether the file at fullPath is encrypted.
func (d *Detector) NeedsEncryption(fullPath string) (bool, error) {
` + body + `
}
`, nil
}

func headerFor(kind detectorKind, pkg, name string) string {
	switch kind {
	case kindNameMatch:
		return fmt.Sprintf(`package %s

import (
	"regexp"

	"atakama.com/sdk/plugin"
)

// Detector classifies files by name.
type Detector struct {
	pattern *regexp.Regexp
}

// New builds the detector from its config entry.
func New(args plugin.Args) (plugin.Plugin, error) {
	re, err := regexp.Compile(args.String("pattern", ""))
	if err != nil {
		return nil, err
	}
	return &Detector{pattern: re}, nil
}

func (d *Detector) Name() string    { return %q }
func (d *Detector) SDKVersion() int { return plugin.CurrentSDKVersion }
`, pkg, name)
	case kindSubproc:
		return fmt.Sprintf(`package %s

import (
	"context"

	"atakama.com/sdk/plugin"
	"atakama.com/sdk/sandbox"
)

// Detector delegates the decision to an external helper.
type Detector struct {
	ns *sandbox.Namespace
}

// New builds the detector; ns must grant subprocess capability.
func New(ns *sandbox.Namespace, args plugin.Args) (plugin.Plugin, error) {
	if _, err := ns.Exec(); err != nil {
		return nil, err
	}
	return &Detector{ns: ns}, nil
}

func (d *Detector) Name() string    { return %q }
func (d *Detector) SDKVersion() int { return plugin.CurrentSDKVersion }
`, pkg, name)
	default:
		return fmt.Sprintf(`package %s

import (
	"context"

	"atakama.com/sdk/plugin"
	"atakama.com/sdk/sandbox"
)

// Detector asks a remote service for the decision.
type Detector struct {
	ns  *sandbox.Namespace
	url string
}

// New builds the detector; ns must grant http capability.
func New(ns *sandbox.Namespace, args plugin.Args) (plugin.Plugin, error) {
	if _, err := ns.HTTP(); err != nil {
		return nil, err
	}
	return &Detector{ns: ns, url: args.String("url", "")}, nil
}

func (d *Detector) Name() string    { return %q }
func (d *Detector) SDKVersion() int { return plugin.CurrentSDKVersion }
`, pkg, name)
	}
}
