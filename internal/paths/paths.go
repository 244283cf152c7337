package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// HomeEnvVar overrides the projcat home directory
	HomeEnvVar = "PROJCAT_HOME"
	// CatalogEnvVar overrides the catalog database path directly
	CatalogEnvVar = "PROJCAT_DB"
	// DefaultHome is the default home directory name under $HOME
	DefaultHome = ".projcat"
	// CatalogFileName is the catalog database file name
	CatalogFileName = "catalog.db"
)

// Home returns the projcat home directory.
// Uses PROJCAT_HOME if set, otherwise ~/.projcat
func Home() (string, error) {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(userHome, DefaultHome), nil
}

// DefaultCatalogPath returns the path of the catalog database.
// Precedence: PROJCAT_DB, then <home>/catalog.db
func DefaultCatalogPath() (string, error) {
	if p := os.Getenv(CatalogEnvVar); p != "" {
		return p, nil
	}

	home, err := Home()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, CatalogFileName), nil
}

// Canonicalize converts a path to an absolute form with symlinks resolved,
// suitable for use as a stable catalog key.
func Canonicalize(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		expanded, err := ExpandHome(path)
		if err != nil {
			return "", err
		}
		path = expanded
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// If the path doesn't exist yet, use the absolute form as-is
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", err
	}

	return resolved, nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return userHome, nil
		}
		return filepath.Join(userHome, path[2:]), nil
	}
	return path, nil
}

// Display abbreviates a path's home-directory prefix to ~ for output
func Display(path string) string {
	userHome, err := os.UserHomeDir()
	if err != nil || userHome == "" {
		return path
	}

	if path == userHome {
		return "~"
	}
	if strings.HasPrefix(path, userHome+string(filepath.Separator)) {
		return "~" + filepath.ToSlash(path[len(userHome):])
	}
	return path
}

// EnsureParentDir creates the parent directory of path if it does not exist
func EnsureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}
