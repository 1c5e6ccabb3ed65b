package lineprof

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// Matcher decides whether a file path belongs to a pattern-mode session.
type Matcher interface {
	MatchString(path string) bool
}

type targetKind int

const (
	targetInvalid targetKind = iota
	targetExact
	targetPattern
)

// Target selects the files a session profiles. The zero value is invalid.
type Target struct {
	kind    targetKind
	name    string
	matcher Matcher
}

// ExactFile profiles the single file the host identifies by name.
func ExactFile(name string) Target {
	if name == "" {
		return Target{}
	}
	return Target{kind: targetExact, name: name}
}

// Pattern profiles every file whose path matches the regular expression expr.
func Pattern(expr string) (Target, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	return Matching(re, expr), nil
}

// Glob profiles every file whose path, or base name, matches a shell glob.
func Glob(pattern string) (Target, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	return Matching(globMatcher(pattern), pattern), nil
}

// Matching profiles every file accepted by m. desc is used for display only.
func Matching(m Matcher, desc string) Target {
	if m == nil {
		return Target{}
	}
	return Target{kind: targetPattern, name: desc, matcher: m}
}

// Valid reports whether t names a file or a pattern.
func (t Target) Valid() bool {
	return t.kind != targetInvalid
}

// IsPattern reports whether t selects files by pattern.
func (t Target) IsPattern() bool {
	return t.kind == targetPattern
}

func (t Target) String() string {
	switch t.kind {
	case targetExact:
		return "file:" + t.name
	case targetPattern:
		return "pattern:" + t.name
	}
	return "invalid"
}

type globMatcher string

func (g globMatcher) MatchString(path string) bool {
	if ok, _ := filepath.Match(string(g), path); ok {
		return true
	}
	ok, _ := filepath.Match(string(g), filepath.Base(path))
	return ok
}
