package lower

import (
	"path"
	"strings"
)

// FunctionMatcher determines if a function should be included or excluded.
// Used for the Only and Skip configuration.
type FunctionMatcher interface {
	MatchFunction(name string) bool
}

// FunctionNameMatcher matches functions by exact name.
type FunctionNameMatcher struct {
	names map[string]bool
}

// NewFunctionNameMatcher creates a matcher from a list of function names.
func NewFunctionNameMatcher(names []string) *FunctionNameMatcher {
	m := &FunctionNameMatcher{names: make(map[string]bool)}
	for _, n := range names {
		m.names[n] = true
	}
	return m
}

// MatchFunction returns true if the function name matches.
func (m *FunctionNameMatcher) MatchFunction(name string) bool {
	return m.names[name]
}

// FunctionPrefixMatcher matches functions by name prefix.
type FunctionPrefixMatcher struct {
	prefixes []string
}

// NewFunctionPrefixMatcher creates a matcher that matches functions starting with any prefix.
func NewFunctionPrefixMatcher(prefixes []string) *FunctionPrefixMatcher {
	return &FunctionPrefixMatcher{prefixes: prefixes}
}

// MatchFunction returns true if the function name starts with any prefix.
func (m *FunctionPrefixMatcher) MatchFunction(name string) bool {
	for _, p := range m.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// FunctionPatternMatcher matches function names against shell globs as
// understood by path.Match: "gen_*", "*_test", "step?" or "*". A pattern
// that is not a valid glob only matches the identical name.
type FunctionPatternMatcher struct {
	exact map[string]bool
	globs []string
}

// NewFunctionPatternMatcher creates a matcher from a list of patterns.
func NewFunctionPatternMatcher(patterns []string) *FunctionPatternMatcher {
	m := &FunctionPatternMatcher{exact: make(map[string]bool)}
	for _, p := range patterns {
		if !strings.ContainsAny(p, "*?[\\") {
			m.exact[p] = true
			continue
		}
		if _, err := path.Match(p, ""); err != nil {
			m.exact[p] = true
			continue
		}
		m.globs = append(m.globs, p)
	}
	return m
}

// MatchFunction returns true if the name matches any pattern.
func (m *FunctionPatternMatcher) MatchFunction(name string) bool {
	if m.exact[name] {
		return true
	}
	for _, g := range m.globs {
		if ok, _ := path.Match(g, name); ok {
			return true
		}
	}
	return false
}

// CompositeFunctionMatcher combines multiple function matchers.
type CompositeFunctionMatcher struct {
	matchers []FunctionMatcher
}

// NewCompositeFunctionMatcher creates a matcher that matches if any sub-matcher matches.
func NewCompositeFunctionMatcher(matchers ...FunctionMatcher) *CompositeFunctionMatcher {
	return &CompositeFunctionMatcher{matchers: matchers}
}

// MatchFunction returns true if any sub-matcher matches.
func (m *CompositeFunctionMatcher) MatchFunction(name string) bool {
	for _, matcher := range m.matchers {
		if matcher.MatchFunction(name) {
			return true
		}
	}
	return false
}
