package detectors

import (
	"context"
	"fmt"

	"atakama.com/sdk/plugin"
	"atakama.com/sdk/sandbox"
)

// HTTPCheckDetector asks a remote classification service whether a path
// needs encryption. The config's url field names the endpoint; the
// detector POSTs {"path": ...} and expects {"needs_encryption": bool}.
// Transient failures are retried by the sandbox HTTP facility.
type HTTPCheckDetector struct {
	ns  *sandbox.Namespace
	url string
}

const httpCheckName = "http-detector"

type classifyRequest struct {
	Path string `json:"path"`
}

type classifyResponse struct {
	NeedsEncryption bool `json:"needs_encryption"`
}

// NewHTTPCheck builds the detector from its config entry. The namespace
// must grant HTTP capability.
func NewHTTPCheck(ns *sandbox.Namespace, args plugin.Args) (plugin.Plugin, error) {
	url := args.String("url", "")
	if url == "" {
		return nil, fmt.Errorf("%s: url is required", httpCheckName)
	}
	if _, err := ns.HTTP(); err != nil {
		return nil, fmt.Errorf("%s: %w", httpCheckName, err)
	}
	return &HTTPCheckDetector{ns: ns, url: url}, nil
}

func (d *HTTPCheckDetector) Name() string    { return httpCheckName }
func (d *HTTPCheckDetector) SDKVersion() int { return plugin.CurrentSDKVersion }

// NeedsEncryption forwards the decision to the classification service.
func (d *HTTPCheckDetector) NeedsEncryption(fullPath string) (bool, error) {
	httpFacility, err := d.ns.HTTP()
	if err != nil {
		return false, err
	}
	var out classifyResponse
	if err := httpFacility.PostJSON(context.Background(), d.url, classifyRequest{Path: fullPath}, &out); err != nil {
		return false, fmt.Errorf("%s: %w", httpCheckName, err)
	}
	return out.NeedsEncryption, nil
}
