package plugin

import "fmt"

// CurrentSDKVersion is incremented on breaking changes to the capability
// surface available to plugins. Compatibility is best effort: a plugin
// built against a different version is refused at build time rather than
// allowed to fail inside the host.
const CurrentSDKVersion = 2

// EnvSDKVersion is the environment variable through which the version
// marker is exposed to subprocesses spawned by plugins.
const EnvSDKVersion = "ATAKAMA_SDK_VERSION"

// Versioned is implemented by plugins that declare which SDK version they
// were built against.
type Versioned interface {
	SDKVersion() int
}

// CheckVersion verifies that p declares a compatible SDK version.
func CheckVersion(p Plugin) error {
	v, ok := p.(Versioned)
	if !ok {
		return fmt.Errorf("plugin %q: %w", p.Name(), ErrPluginVersionMissing)
	}
	if v.SDKVersion() != CurrentSDKVersion {
		return fmt.Errorf("plugin %q declares SDK version %d, host has %d: %w",
			p.Name(), v.SDKVersion(), CurrentSDKVersion, ErrPluginVersionMismatch)
	}
	return nil
}
