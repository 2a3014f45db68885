package detectors

import (
	"context"
	"fmt"
	"strings"

	"atakama.com/sdk/plugin"
	"atakama.com/sdk/sandbox"
)

// SubprocDetector delegates the encryption decision to an external
// command. The config's cmd field must contain a {path} placeholder; the
// command is run through the sandbox subprocess facility and exit code 0
// means "encrypt".
type SubprocDetector struct {
	ns  *sandbox.Namespace
	cmd string
}

const subprocName = "subprocess-detector"

// NewSubproc builds the detector from its config entry. The command runs
// inside ns, so the namespace must grant subprocess capability.
func NewSubproc(ns *sandbox.Namespace, args plugin.Args) (plugin.Plugin, error) {
	cmd := args.String("cmd", "")
	if !strings.Contains(cmd, "{path}") {
		return nil, fmt.Errorf("%s: cmd must contain a {path} placeholder", subprocName)
	}
	if _, err := ns.Exec(); err != nil {
		return nil, fmt.Errorf("%s: %w", subprocName, err)
	}
	return &SubprocDetector{ns: ns, cmd: cmd}, nil
}

func (d *SubprocDetector) Name() string    { return subprocName }
func (d *SubprocDetector) SDKVersion() int { return plugin.CurrentSDKVersion }

// NeedsEncryption substitutes the path into the command line and reports
// whether the child exited zero.
func (d *SubprocDetector) NeedsEncryption(fullPath string) (bool, error) {
	execFacility, err := d.ns.Exec()
	if err != nil {
		return false, err
	}
	cmd := strings.ReplaceAll(d.cmd, "{path}", fullPath)
	code, err := execFacility.RunShell(context.Background(), cmd)
	if err != nil {
		return false, fmt.Errorf("%s: %w", subprocName, err)
	}
	return code == 0, nil
}
