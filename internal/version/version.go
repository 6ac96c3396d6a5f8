package version

import (
	"runtime/debug"
	"strings"
)

// Version is the base release version. Release builds override it via
// -ldflags; the default carries a -dev marker so local builds are
// distinguishable from tagged releases.
var Version = "1.0.0-dev"

// Resolve returns the version string, suffixing -dev builds with the VCS
// revision recorded by the Go toolchain when one is available.
func Resolve() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		info = nil
	}
	return resolveVersion(Version, info)
}

func resolveVersion(base string, info *debug.BuildInfo) string {
	if base == "" {
		base = "0.0.0"
	}

	if !strings.HasSuffix(base, "-dev") || info == nil {
		return base
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}

	if revision == "" {
		return base
	}

	if len(revision) > 7 {
		revision = revision[:7]
	}

	resolved := base + "+" + revision
	if dirty {
		resolved += ".dirty"
	}
	return resolved
}
