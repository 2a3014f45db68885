// Package detectors ships the example detector plugins bundled with the
// SDK: name matching, subprocess delegation and remote classification.
// They double as reference implementations for third-party authors.
package detectors

import (
	"fmt"
	"regexp"
	"strings"

	"atakama.com/sdk/plugin"
)

// NameMatchDetector classifies files by name.
//
// Config accepts three fields: type, pattern and invert.
//
//   - type: one of "glob", "regex" and "*"; determines how the pattern is
//     interpreted. With "*" every file is selected, no pattern is needed
//     and invert is ignored.
//   - pattern: the pattern to match against.
//   - invert: "true" flips the selection, i.e. files NOT matching the
//     pattern are encrypted.
//
// Globs support wildcards (* and ?) and character ranges ([aeiou],
// [a-z]). Patterns are searched against the full path and anchored at its
// end, so "*.pdf" selects any path ending in .pdf.
type NameMatchDetector struct {
	matchFn func(path string) bool
}

const nameMatchName = "name-match-detector"

// NewNameMatch builds the detector from its config entry.
func NewNameMatch(args plugin.Args) (plugin.Plugin, error) {
	matchType := strings.ToLower(strings.TrimSpace(args.String("type", "")))
	invert := strings.ToLower(strings.TrimSpace(args.String("invert", "false"))) == "true"

	switch matchType {
	case "*":
		return &NameMatchDetector{matchFn: func(string) bool { return true }}, nil
	case "glob", "regex":
		pattern := args.String("pattern", "")
		if pattern == "" {
			return nil, fmt.Errorf("%s: %q match requires a pattern", nameMatchName, matchType)
		}
		if matchType == "glob" {
			pattern = globToRegexp(pattern)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid pattern: %w", nameMatchName, err)
		}
		match := re.MatchString
		if invert {
			return &NameMatchDetector{matchFn: func(p string) bool { return !match(p) }}, nil
		}
		return &NameMatchDetector{matchFn: match}, nil
	default:
		return nil, fmt.Errorf("%s: unsupported match type %q", nameMatchName, matchType)
	}
}

func (d *NameMatchDetector) Name() string    { return nameMatchName }
func (d *NameMatchDetector) SDKVersion() int { return plugin.CurrentSDKVersion }

// NeedsEncryption reports whether the configured pattern selects the path.
func (d *NameMatchDetector) NeedsEncryption(fullPath string) (bool, error) {
	return d.matchFn(fullPath), nil
}

// globToRegexp translates a shell glob into a regexp source: unanchored on
// the left (the glob is searched anywhere in the path), anchored on the
// right so "*.pdf" does not select "x.pdfz".
func globToRegexp(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				b.WriteString(regexp.QuoteMeta(string(c)))
				continue
			}
			set := glob[i+1 : i+1+end]
			if strings.HasPrefix(set, "!") {
				set = "^" + set[1:]
			}
			b.WriteByte('[')
			b.WriteString(set)
			b.WriteByte(']')
			i += end + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteByte('$')
	return b.String()
}
