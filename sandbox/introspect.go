package sandbox

import (
	"os"
	"runtime"

	"atakama.com/sdk/plugin"
)

// Introspection reports on the runtime a plugin finds itself in. Plugin
// authors branch on SDKVersion when the capability surface changes
// between host releases.
type Introspection struct {
	SDKVersion int
	GoVersion  string
	OS         string
	Arch       string
	NumCPU     int
	Hostname   string
	PID        int
}

func newIntrospection() *Introspection {
	hostname, _ := os.Hostname()
	return &Introspection{
		SDKVersion: plugin.CurrentSDKVersion,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
		Hostname:   hostname,
		PID:        os.Getpid(),
	}
}
