package detectors

import (
	"atakama.com/sdk/plugin"
	"atakama.com/sdk/sandbox"
)

// RegisterAll adds the bundled detectors to r, wiring them to run inside
// ns. Hosts call this once at load time; duplicate names fail fast.
func RegisterAll(r *plugin.Registry, ns *sandbox.Namespace) error {
	if err := r.Register(nameMatchName, NewNameMatch); err != nil {
		return err
	}
	if err := r.Register(subprocName, func(args plugin.Args) (plugin.Plugin, error) {
		return NewSubproc(ns, args)
	}); err != nil {
		return err
	}
	return r.Register(httpCheckName, func(args plugin.Args) (plugin.Plugin, error) {
		return NewHTTPCheck(ns, args)
	})
}
