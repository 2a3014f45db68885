// Package sandbox provides the restricted execution namespace detector
// plugins run in. A plugin never reaches for ambient process capabilities;
// it is handed a Namespace pre-constructed from an allow-list, and every
// facility outside that list is unreachable.
//
// The documented allow-list covers subprocess invocation, HTTP client
// requests, the operating-system interface, zip archive handling and
// interpreter/system introspection. Plugins needing anything else must
// isolate it behind a subprocess carrying its own dependency closure.
package sandbox

import (
	"errors"
	"fmt"
)

// Capability names one entry of the sandbox allow-list.
type Capability string

const (
	CapSubprocess    Capability = "subprocess"
	CapHTTP          Capability = "http"
	CapOS            Capability = "os"
	CapZip           Capability = "zip"
	CapIntrospection Capability = "introspection"
)

// ErrCapabilityDenied is returned when a plugin requests a facility the
// namespace was not constructed with.
var ErrCapabilityDenied = errors.New("capability not granted")

// AllCapabilities returns the full documented allow-list.
func AllCapabilities() []Capability {
	return []Capability{CapSubprocess, CapHTTP, CapOS, CapZip, CapIntrospection}
}

// Namespace is the capability surface handed to a plugin. Facilities are
// constructed up front; requesting one outside the grant fails with
// ErrCapabilityDenied.
type Namespace struct {
	granted map[Capability]bool

	exec *ExecFacility
	http *HTTPFacility
	fs   *FSFacility
	zip  *ZipFacility
}

// New builds a namespace granting exactly the listed capabilities.
func New(caps ...Capability) *Namespace {
	n := &Namespace{granted: make(map[Capability]bool, len(caps))}
	for _, c := range caps {
		n.granted[c] = true
	}
	if n.granted[CapSubprocess] {
		n.exec = newExecFacility()
	}
	if n.granted[CapHTTP] {
		n.http = newHTTPFacility()
	}
	if n.granted[CapOS] {
		n.fs = &FSFacility{}
	}
	if n.granted[CapZip] {
		n.zip = &ZipFacility{}
	}
	return n
}

// Default builds a namespace granting the full documented allow-list.
func Default() *Namespace {
	return New(AllCapabilities()...)
}

// Granted reports whether the capability is part of this namespace.
func (n *Namespace) Granted(c Capability) bool {
	return n.granted[c]
}

// Exec returns the subprocess facility.
func (n *Namespace) Exec() (*ExecFacility, error) {
	if n.exec == nil {
		return nil, denied(CapSubprocess)
	}
	return n.exec, nil
}

// HTTP returns the HTTP client facility.
func (n *Namespace) HTTP() (*HTTPFacility, error) {
	if n.http == nil {
		return nil, denied(CapHTTP)
	}
	return n.http, nil
}

// FS returns the operating-system interface facility.
func (n *Namespace) FS() (*FSFacility, error) {
	if n.fs == nil {
		return nil, denied(CapOS)
	}
	return n.fs, nil
}

// Zip returns the archive facility.
func (n *Namespace) Zip() (*ZipFacility, error) {
	if n.zip == nil {
		return nil, denied(CapZip)
	}
	return n.zip, nil
}

// Introspect returns the runtime report facility.
func (n *Namespace) Introspect() (*Introspection, error) {
	if !n.granted[CapIntrospection] {
		return nil, denied(CapIntrospection)
	}
	return newIntrospection(), nil
}

func denied(c Capability) error {
	return fmt.Errorf("%s: %w", c, ErrCapabilityDenied)
}
