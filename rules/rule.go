package rules

import (
	"errors"
	"fmt"

	cmap "github.com/orcaman/concurrent-map/v2"

	"atakama.com/sdk/plugin"
)

var (
	// ErrUnknownRequestType is returned by a rule that does not recognize
	// the request it was handed. The ruleset logs it and counts the rule
	// as a deny.
	ErrUnknownRequestType = errors.New("unknown or invalid request type")

	// ErrUnknownRule is returned when a policy entry names a rule that
	// was never registered.
	ErrUnknownRule = errors.New("rule not registered")
)

// RulePlugin is the contract for key server approval rule handlers.
//
// Each rule receives its configuration from the policy file, not the
// Atakama config like other plugins. In addition to the policy arguments,
// a unique rule_id is injected when not already present.
type RulePlugin interface {
	plugin.Plugin

	// ApproveRequest reports whether the request will be authorized.
	// Returning ErrUnknownRequestType (or any error) is logged by the
	// enclosing ruleset and treated as a deny.
	ApproveRequest(req *ApprovalRequest) (bool, error)

	// CheckQuota reports whether the profile may still be approved, i.e.
	// has not hit a limit, quota or other stateful cap. Not a guarantee
	// of future approval; used for reporting.
	CheckQuota(profile ProfileInfo) bool

	// ClearQuota resets limits, access counts or bytes transferred for a
	// profile. Used by an administrator to unstick a capped user.
	ClearQuota(profile ProfileInfo)

	// Args returns the policy arguments the rule was built from.
	Args() plugin.Args
}

// Factory builds a rule instance from its policy entry.
type Factory func(args plugin.Args) (RulePlugin, error)

// Base carries the policy args for a rule and supplies neutral quota
// behavior. Embed it and override what the rule actually tracks.
type Base struct {
	args plugin.Args
}

// NewBase wraps the policy args for embedding.
func NewBase(args plugin.Args) Base {
	if args == nil {
		args = plugin.Args{}
	}
	return Base{args: args}
}

// Args returns the policy arguments.
func (b Base) Args() plugin.Args { return b.args }

// RuleID returns the injected rule identifier.
func (b Base) RuleID() string { return b.args.String("rule_id", "") }

// CheckQuota defaults to "no limit reached".
func (b Base) CheckQuota(profile ProfileInfo) bool { return true }

// ClearQuota defaults to a no-op.
func (b Base) ClearQuota(profile ProfileInfo) {}

// SDKVersion satisfies the host's version gate for rules shipped in-tree.
func (b Base) SDKVersion() int { return plugin.CurrentSDKVersion }

var factories = cmap.New[Factory]()

// Register adds a rule factory under name. Names are unique; the second
// registration fails.
func Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("rule name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("rule %q: factory cannot be nil", name)
	}
	if !factories.SetIfAbsent(name, factory) {
		return fmt.Errorf("rule %q: %w", name, plugin.ErrDuplicateName)
	}
	return nil
}

// ResetRegistry clears all registered rule factories. Intended for tests.
func ResetRegistry() {
	factories.Clear()
}

// fromEntry builds a rule from one policy map. The "rule" key selects the
// factory; the remaining keys, including the injected rule_id, become the
// rule's args.
func fromEntry(entry map[string]any) (RulePlugin, error) {
	raw, ok := entry["rule"]
	if !ok {
		return nil, fmt.Errorf("rule entries must have a plugin name")
	}
	name, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("rule name must be a string, got %T", raw)
	}

	factory, ok := factories.Get(name)
	if !ok {
		return nil, fmt.Errorf("rule %q: %w", name, ErrUnknownRule)
	}

	args := plugin.Args{}
	for k, v := range entry {
		if k == "rule" {
			continue
		}
		args[k] = v
	}

	r, err := factory(args)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", name, err)
	}
	return r, nil
}

// entryFor is the inverse of fromEntry: args plus the rule name.
func entryFor(r RulePlugin) map[string]any {
	out := make(map[string]any, len(r.Args())+1)
	for k, v := range r.Args() {
		out[k] = v
	}
	out["rule"] = r.Name()
	return out
}
