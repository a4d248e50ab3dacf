// Package matcher implements composite glob/regex/predicate matching over
// paths, built on doublestar for globs and combining several pattern kinds
// into one evaluator the way an ignore-list composes multiple sources.
package matcher

import (
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher tests whether a path belongs to a set of patterns.
type Matcher interface {
	Test(path string) bool
}

type globPattern string

func (p globPattern) Test(path string) bool {
	ok, err := doublestar.Match(string(p), path)
	return err == nil && ok
}

type regexPattern struct{ re *regexp.Regexp }

func (p regexPattern) Test(path string) bool {
	return p.re.MatchString(path)
}

// Predicate adapts an arbitrary function to a Matcher.
type Predicate func(path string) bool

// Test implements Matcher.
func (p Predicate) Test(path string) bool { return p(path) }

// composite matches if any of its members match (OR semantics).
type composite []Matcher

// Test implements Matcher.
func (c composite) Test(path string) bool {
	for _, m := range c {
		if m.Test(path) {
			return true
		}
	}
	return false
}

// Glob builds a Matcher from a doublestar glob pattern (e.g. "**/*.js").
func Glob(pattern string) Matcher {
	return globPattern(pattern)
}

// Regex builds a Matcher from a compiled regular expression.
func Regex(re *regexp.Regexp) Matcher {
	return regexPattern{re: re}
}

// New composes any mix of glob strings, *regexp.Regexp, Predicate functions,
// or other Matchers (including nested slices of any of those) into a single
// Matcher with OR semantics.
func New(patterns ...interface{}) (Matcher, error) {
	members := make(composite, 0, len(patterns))
	for _, p := range patterns {
		m, err := toMatcher(p)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func toMatcher(p interface{}) (Matcher, error) {
	switch v := p.(type) {
	case string:
		return Glob(v), nil
	case *regexp.Regexp:
		return Regex(v), nil
	case func(string) bool:
		return Predicate(v), nil
	case Predicate:
		return v, nil
	case Matcher:
		return v, nil
	case []interface{}:
		return New(v...)
	default:
		return nil, errUnsupportedPattern
	}
}
