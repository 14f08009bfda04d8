package context

import (
	"fmt"
	"runtime/debug"
)

// VersionInfo contains the application version and build metadata.
type VersionInfo struct {
	Semantic string
	Commit   string
	Dirty    bool
}

// String returns a human-readable representation of the version.
func (v *VersionInfo) String() string {
	s := v.Semantic
	if v.Commit != "" {
		commit := v.Commit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		s = fmt.Sprintf("%s (%s)", s, commit)
	}
	if v.Dirty {
		s += " dirty"
	}

	return s
}

// GetVersion returns the version information embedded in the binary.
func GetVersion() (*VersionInfo, error) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, fmt.Errorf("failed reading build info")
	}

	v := &VersionInfo{Semantic: info.Main.Version}
	if v.Semantic == "" || v.Semantic == "(devel)" {
		v.Semantic = "devel"
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			v.Commit = setting.Value
		case "vcs.modified":
			v.Dirty = setting.Value == "true"
		}
	}

	return v, nil
}
