package catalog

import (
	"strings"
	"time"
)

// Kind classifies a project by its dominant ecosystem
type Kind string

const (
	KindRust    Kind = "rust"
	KindNode    Kind = "node"
	KindRuby    Kind = "ruby"
	KindPython  Kind = "python"
	KindGo      Kind = "go"
	KindJava    Kind = "java"
	KindGit     Kind = "git"
	KindNix     Kind = "nix"
	KindUnknown Kind = "unknown"
)

// Label returns a human-readable name for the kind
func (k Kind) Label() string {
	switch k {
	case KindRust:
		return "Rust"
	case KindNode:
		return "Node.js"
	case KindRuby:
		return "Ruby"
	case KindPython:
		return "Python"
	case KindGo:
		return "Go"
	case KindJava:
		return "Java"
	case KindGit:
		return "Git"
	case KindNix:
		return "Nix"
	default:
		return "Unknown"
	}
}

// Well-known indicator file names
const (
	HintGit          = ".git"
	HintPackageJSON  = "package.json"
	HintGemfile      = "Gemfile"
	HintGemspec      = "*.gemspec"
	HintCargoToml    = "Cargo.toml"
	HintPyproject    = "pyproject.toml"
	HintRequirements = "requirements.txt"
	HintGoMod        = "go.mod"
	HintPomXML       = "pom.xml"
	HintDevenvNix    = "devenv.nix"
)

// DeriveKind maps a set of matched indicator hints to a project kind.
// When multiple ecosystems are present the more specific manifest wins:
// a Rust crate under git is Rust, not Git.
func DeriveKind(hints []string) Kind {
	has := make(map[string]bool, len(hints))
	for _, h := range hints {
		has[h] = true
		if strings.HasSuffix(h, ".gemspec") {
			has[HintGemspec] = true
		}
	}

	switch {
	case has[HintCargoToml]:
		return KindRust
	case has[HintPackageJSON]:
		return KindNode
	case has[HintGemfile] || has[HintGemspec]:
		return KindRuby
	case has[HintPyproject] || has[HintRequirements]:
		return KindPython
	case has[HintGoMod]:
		return KindGo
	case has[HintPomXML]:
		return KindJava
	case has[HintGit]:
		return KindGit
	case has[HintDevenvNix]:
		return KindNix
	default:
		return KindUnknown
	}
}

// ProjectRecord is a cataloged project root
type ProjectRecord struct {
	Path        string     `json:"path"`
	Name        string     `json:"name"`
	Hints       []string   `json:"hints"`
	Kind        Kind       `json:"kind"`
	FirstSeen   time.Time  `json:"firstSeen"`
	LastScanned time.Time  `json:"lastScanned"`
	VisitCount  int64      `json:"visitCount"`
	LastVisited *time.Time `json:"lastVisited,omitempty"`
}

// Discovery is a project root found during a scan, before it is persisted
type Discovery struct {
	Path  string
	Name  string
	Hints []string
	Kind  Kind
}

// ScanRun records one scan invocation for provenance
type ScanRun struct {
	RunID           string    `json:"runId"`
	Roots           []string  `json:"roots"`
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt"`
	DiscoveredCount int64     `json:"discoveredCount"`
	SkippedCount    int64     `json:"skippedCount"`
	PrunedCount     int64     `json:"prunedCount"`
	DirsScanned     int64     `json:"dirsScanned"`
}

// Stats summarizes the catalog contents
type Stats struct {
	TotalProjects int64          `json:"totalProjects"`
	TotalVisits   int64          `json:"totalVisits"`
	ByKind        map[Kind]int64 `json:"byKind"`
	LastScan      *time.Time     `json:"lastScan,omitempty"`
}
