package rules

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Logger is the minimal logging surface the engine needs. The default
// writes to stderr through the standard library.
type Logger interface {
	Printf(format string, v ...any)
}

var logger Logger = log.New(os.Stderr, "[rules] ", log.LstdFlags)

// SetLogger replaces the engine's logger.
func SetLogger(l Logger) {
	if l != nil {
		logger = l
	}
}

// RuleSet is a list of rules that must all approve a request. An empty
// ruleset always approves.
type RuleSet []RulePlugin

// ApproveRequest reports whether every rule in the set approves. A rule
// error is logged and counts as a deny.
func (rs RuleSet) ApproveRequest(req *ApprovalRequest) bool {
	for _, rule := range rs {
		res, err := rule.ApproveRequest(req)
		if err != nil {
			logger.Printf("error in rule %s (%s): %v", rule.Name(), ruleID(rule), err)
			return false
		}
		if !res {
			return false
		}
	}
	return true
}

// ruleSetFromList builds a set from policy entries, injecting rule ids.
func ruleSetFromList(entries []map[string]any, gen *idGenerator) (RuleSet, error) {
	rs := make(RuleSet, 0, len(entries))
	for _, ent := range entries {
		if err := gen.inject(ent); err != nil {
			return nil, err
		}
		rule, err := fromEntry(ent)
		if err != nil {
			return nil, err
		}
		rs = append(rs, rule)
	}
	return rs, nil
}

// toList is the policy-file representation of the set.
func (rs RuleSet) toList() []map[string]any {
	out := make([]map[string]any, 0, len(rs))
	for _, rule := range rs {
		out = append(out, entryFor(rule))
	}
	return out
}

// RuleTree is a list of rulesets. A request is approved when any set
// approves; an empty tree denies.
type RuleTree []RuleSet

// ApproveRequest reports whether any ruleset approves the request.
func (rt RuleTree) ApproveRequest(req *ApprovalRequest) bool {
	for _, rs := range rt {
		if rs.ApproveRequest(req) {
			return true
		}
	}
	return false
}

func ruleTreeFromList(setdefs [][]map[string]any, gen *idGenerator) (RuleTree, error) {
	rt := make(RuleTree, 0, len(setdefs))
	for _, entries := range setdefs {
		rs, err := ruleSetFromList(entries, gen)
		if err != nil {
			return nil, err
		}
		rt = append(rt, rs)
	}
	return rt, nil
}

func (rt RuleTree) toList() [][]map[string]any {
	out := make([][]map[string]any, 0, len(rt))
	for _, rs := range rt {
		out = append(out, rs.toList())
	}
	return out
}

// RuleEngine holds a RuleTree per request type and dispatches requests to
// the matching tree.
type RuleEngine struct {
	trees map[RequestType]RuleTree
}

// NewRuleEngine wraps an already-built tree map.
func NewRuleEngine(trees map[RequestType]RuleTree) *RuleEngine {
	if trees == nil {
		trees = make(map[RequestType]RuleTree)
	}
	return &RuleEngine{trees: trees}
}

// ApproveRequest dispatches to the tree for the request's type. When no
// tree covers the type, handled is false and the caller decides the
// default.
func (e *RuleEngine) ApproveRequest(req *ApprovalRequest) (approved, handled bool) {
	tree, ok := e.trees[req.RequestType]
	if !ok {
		return false, false
	}
	return tree.ApproveRequest(req), true
}

// ClearQuota resets quota state in every rule of every tree.
func (e *RuleEngine) ClearQuota(profile ProfileInfo) {
	for _, tree := range e.trees {
		for _, rs := range tree {
			for _, rule := range rs {
				rule.ClearQuota(profile)
			}
		}
	}
}

// Tree returns the tree for a request type, if any.
func (e *RuleEngine) Tree(rt RequestType) (RuleTree, bool) {
	tree, ok := e.trees[rt]
	return tree, ok
}

// FromMap builds a rule engine from a policy map:
//
//	decrypt:
//	  - - rule: name
//	      param: val1
//	    - rule: name2
//	      param: val2
//	  - - rule: name
//	      param: val1
func FromMap(info map[string][][]map[string]any) (*RuleEngine, error) {
	gen := newIDGenerator()
	trees := make(map[RequestType]RuleTree, len(info))
	for key, setdefs := range info {
		rt, err := NewRequestType(key)
		if err != nil {
			return nil, err
		}
		tree, err := ruleTreeFromList(setdefs, gen)
		if err != nil {
			return nil, fmt.Errorf("request type %q: %w", key, err)
		}
		trees[rt] = tree
	}
	return NewRuleEngine(trees), nil
}

// FromYAMLFile builds a rule engine from a policy file, see FromMap.
func FromYAMLFile(path string) (*RuleEngine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	var info map[string][][]map[string]any
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parsing policy file %s: %w", path, err)
	}
	return FromMap(info)
}

// ToMap renders the engine back into its policy-map form, including the
// injected rule ids.
func (e *RuleEngine) ToMap() map[string][][]map[string]any {
	out := make(map[string][][]map[string]any, len(e.trees))
	for rt, tree := range e.trees {
		out[rt.String()] = tree.toList()
	}
	return out
}

func ruleID(r RulePlugin) string {
	return r.Args().String("rule_id", "?")
}
