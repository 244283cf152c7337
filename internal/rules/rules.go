// Package rules evaluates project-indicator and exclusion patterns against
// directory listings. It performs no I/O: callers supply directory names and
// entry names, and get back a classification decision.
package rules

import (
	"regexp"
	"strings"

	"projcat/internal/cerrors"
)

// PatternKind identifies how a pattern is matched
type PatternKind int

const (
	// ExactPattern matches the name byte-for-byte
	ExactPattern PatternKind = iota
	// SuffixPattern matches names ending with the pattern's suffix (e.g. *.gemspec)
	SuffixPattern
	// GlobPattern matches names against a shell-style wildcard pattern
	GlobPattern
)

// Pattern is one compiled indicator or exclusion pattern
type Pattern struct {
	Raw    string
	Kind   PatternKind
	suffix string
	re     *regexp.Regexp
}

// Compile turns a raw pattern string into a matchable Pattern.
// Patterns of the form "*.ext" with no other wildcards become suffix
// patterns; anything else containing * or ? becomes a glob; the rest
// match exactly. Matching is case-sensitive.
func Compile(raw string) (Pattern, error) {
	if strings.TrimSpace(raw) == "" {
		return Pattern{}, cerrors.New(cerrors.ConfigInvalid, "empty pattern", nil)
	}

	if strings.HasPrefix(raw, "*.") && !strings.ContainsAny(raw[2:], "*?") {
		return Pattern{Raw: raw, Kind: SuffixPattern, suffix: raw[1:]}, nil
	}

	if strings.ContainsAny(raw, "*?") {
		escaped := regexp.QuoteMeta(raw)
		expr := strings.NewReplacer(`\*`, ".*", `\?`, ".").Replace(escaped)
		re, err := regexp.Compile("^" + expr + "$")
		if err != nil {
			return Pattern{}, cerrors.New(cerrors.ConfigInvalid, "invalid glob pattern "+raw, err)
		}
		return Pattern{Raw: raw, Kind: GlobPattern, re: re}, nil
	}

	return Pattern{Raw: raw, Kind: ExactPattern}, nil
}

// Match reports whether the pattern matches name
func (p Pattern) Match(name string) bool {
	switch p.Kind {
	case SuffixPattern:
		return strings.HasSuffix(name, p.suffix)
	case GlobPattern:
		return p.re.MatchString(name)
	default:
		return name == p.Raw
	}
}

// CompileAll compiles a list of raw patterns, preserving order
func CompileAll(raw []string) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(raw))
	for _, r := range raw {
		p, err := Compile(r)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// DefaultIndicators are the marker patterns recognized out of the box
func DefaultIndicators() []string {
	return []string{
		".git",
		"package.json",
		"Gemfile",
		"*.gemspec",
		"Cargo.toml",
		"pyproject.toml",
		"requirements.txt",
		"go.mod",
		"pom.xml",
		"devenv.nix",
	}
}

// DefaultExclusions are the directory names pruned out of the box
func DefaultExclusions() []string {
	return []string{
		"node_modules",
		"vendor",
		".git",
		"__pycache__",
		"target",
		"build",
		"dist",
	}
}

// DefaultMaxDepth bounds how far scans descend below each root
const DefaultMaxDepth = 10

// Config is a compiled rule set
type Config struct {
	Indicators []Pattern
	Exclusions []Pattern
	MaxDepth   int
}

// NewConfig compiles raw indicator and exclusion lists into a Config.
// maxDepth must be at least 1.
func NewConfig(indicators, exclusions []string, maxDepth int) (*Config, error) {
	if maxDepth < 1 {
		return nil, cerrors.New(cerrors.ConfigInvalid, "max depth must be at least 1", nil)
	}
	if len(indicators) == 0 {
		return nil, cerrors.New(cerrors.ConfigInvalid, "at least one indicator pattern is required", nil)
	}

	ind, err := CompileAll(indicators)
	if err != nil {
		return nil, err
	}
	exc, err := CompileAll(exclusions)
	if err != nil {
		return nil, err
	}

	return &Config{Indicators: ind, Exclusions: exc, MaxDepth: maxDepth}, nil
}

// Default returns the built-in rule set
func Default() *Config {
	cfg, err := NewConfig(DefaultIndicators(), DefaultExclusions(), DefaultMaxDepth)
	if err != nil {
		panic(err) // built-in patterns always compile
	}
	return cfg
}

// DecisionKind classifies a directory
type DecisionKind int

const (
	// Plain means descend but do not catalog
	Plain DecisionKind = iota
	// Excluded means prune: do not catalog and do not descend
	Excluded
	// Project means catalog and still descend (nested projects are legal)
	Project
)

// Decision is the outcome of classifying one directory
type Decision struct {
	Kind  DecisionKind
	Hints []string // indicator patterns that matched, in indicator order
}

// Classify decides what a directory is. Exclusion wins over indicator:
// if the directory's own name or any ancestor name up to the scan root
// matches an exclusion pattern, the directory is Excluded regardless of
// its contents.
func (c *Config) Classify(dirName string, entryNames []string, ancestorNames []string) Decision {
	if c.matchesExclusion(dirName) {
		return Decision{Kind: Excluded}
	}
	for _, ancestor := range ancestorNames {
		if c.matchesExclusion(ancestor) {
			return Decision{Kind: Excluded}
		}
	}

	var hints []string
	for _, ind := range c.Indicators {
		for _, entry := range entryNames {
			if ind.Match(entry) {
				hints = append(hints, ind.Raw)
				break
			}
		}
	}

	if len(hints) > 0 {
		return Decision{Kind: Project, Hints: hints}
	}
	return Decision{Kind: Plain}
}

// IsIndicatorName reports whether name itself matches an indicator
// pattern. Hidden directories are normally skipped during scans, but a
// hidden name that is itself an indicator (like .git) must still be
// visible to entry matching in its parent.
func (c *Config) IsIndicatorName(name string) bool {
	for _, ind := range c.Indicators {
		if ind.Match(name) {
			return true
		}
	}
	return false
}

func (c *Config) matchesExclusion(name string) bool {
	for _, exc := range c.Exclusions {
		if exc.Match(name) {
			return true
		}
	}
	return false
}
