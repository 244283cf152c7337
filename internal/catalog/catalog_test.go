package catalog

import "testing"

func TestDeriveKindPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		hints []string
		want  Kind
	}{
		{"cargo wins over git", []string{".git", "Cargo.toml"}, KindRust},
		{"node wins over git", []string{"package.json", ".git"}, KindNode},
		{"cargo wins over node", []string{"package.json", "Cargo.toml"}, KindRust},
		{"gemfile", []string{"Gemfile"}, KindRuby},
		{"gemspec suffix", []string{"mygem.gemspec"}, KindRuby},
		{"gemspec pattern", []string{"*.gemspec"}, KindRuby},
		{"pyproject", []string{"pyproject.toml", ".git"}, KindPython},
		{"requirements", []string{"requirements.txt"}, KindPython},
		{"go wins over pom", []string{"pom.xml", "go.mod"}, KindGo},
		{"pom", []string{"pom.xml"}, KindJava},
		{"bare git", []string{".git"}, KindGit},
		{"nix", []string{"devenv.nix"}, KindNix},
		{"custom hint only", []string{"flake.lock"}, KindUnknown},
		{"no hints", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveKind(tt.hints); got != tt.want {
				t.Errorf("DeriveKind(%v) = %s, want %s", tt.hints, got, tt.want)
			}
		})
	}
}

func TestKindLabels(t *testing.T) {
	if KindNode.Label() != "Node.js" {
		t.Errorf("unexpected label %s", KindNode.Label())
	}
	if Kind("bogus").Label() != "Unknown" {
		t.Errorf("unknown kinds must label as Unknown")
	}
}
