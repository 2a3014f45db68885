// Package plugin defines the contracts the Atakama host consults when it
// loads third-party extensions, and the registry those extensions are
// looked up in.
package plugin

// Args holds the configuration map the host read for a plugin entry.
type Args map[string]any

// String returns the value for key as a string, or def when the key is
// absent or not a string.
func (a Args) String(key, def string) string {
	v, ok := a[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// Plugin is the base contract every Atakama extension satisfies.
//
// Name must return a short, stable identifier, unique among registered
// plugins, and must be side-effect free: the host calls it repeatedly for
// registration, diagnostics and enable/disable bookkeeping.
type Plugin interface {
	Name() string
}

// DetectorPlugin decides whether a file needs encryption.
//
// The host calls NeedsEncryption once per file-system mutation event with
// the full path of the file under consideration. The call is synchronous
// from the host's point of view and may be issued for several plugins in
// any order, possibly in parallel; implementations must not rely on
// invocation order and should not assume exclusive access to the file.
type DetectorPlugin interface {
	Plugin

	NeedsEncryption(fullPath string) (bool, error)
}

// FileChangedPlugin is notified after an encrypted file changes on disk.
type FileChangedPlugin interface {
	Plugin

	FileChanged(fullPath string) error
}

// StartupPlugin runs once when the host finishes booting.
type StartupPlugin interface {
	Plugin

	Startup() error
}

// Factory builds a plugin instance from its configuration entry.
type Factory func(args Args) (Plugin, error)
