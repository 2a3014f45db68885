// Package rules implements the keyserver approval ruleset engine. When a
// key server receives a multifactor request, registered rule plugins are
// consulted; rules are grouped into sets that must all pass, and a request
// is approved when any set passes.
package rules

import "fmt"

// RequestType identifies the kind of multifactor request a rule is asked
// to approve.
type RequestType string

const (
	RequestDecrypt          RequestType = "decrypt"
	RequestSearch           RequestType = "search"
	RequestCreateProfile    RequestType = "create_profile"
	RequestActivateLocation RequestType = "activate_location"
	RequestCreateLocation   RequestType = "create_location"
	RequestRenameFile       RequestType = "rename"
	RequestSecureExport     RequestType = "secure_export"
)

// NewRequestType validates a request type read from a policy file.
func NewRequestType(value string) (RequestType, error) {
	switch rt := RequestType(value); rt {
	case RequestDecrypt, RequestSearch, RequestCreateProfile,
		RequestActivateLocation, RequestCreateLocation,
		RequestRenameFile, RequestSecureExport:
		return rt, nil
	default:
		return "", fmt.Errorf("invalid request type: %q", value)
	}
}

// String returns the policy-file spelling of the request type.
func (r RequestType) String() string {
	return string(r)
}

// ProfileInfo identifies the requesting profile.
type ProfileInfo struct {
	// ProfileID is the requesting profile uuid.
	ProfileID []byte
	// ProfileWords is the profile "words" mnemonic.
	ProfileWords []string
}

// MetaInfo is authenticated metadata associated with the encrypted data,
// typically the full mount path of a file.
type MetaInfo struct {
	Meta string
	// Complete reports whether the meta is fully verified or partial.
	Complete bool
}

// ApprovalRequest is one multifactor request presented to the rules.
type ApprovalRequest struct {
	RequestType RequestType
	// DeviceID is the requesting device uuid.
	DeviceID []byte
	Profile  ProfileInfo
	// AuthMeta is the authenticated metadata for the encrypted data.
	AuthMeta []MetaInfo
	// CryptographicID identifies the key material the request is about.
	CryptographicID []byte
}
