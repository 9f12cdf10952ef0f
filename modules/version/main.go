package version

import (
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/lkarlslund/tagcamps/modules/version.Version=..."
var (
	Program    = "tagcamps"
	Commit     = ""
	Version    = ""
	Copyright  = "(c) 2024 Lars Karlslund"
	Disclaimer = "This program comes with ABSOLUTELY NO WARRANTY"
)

func init() {
	if Version != "" && Commit != "" {
		return
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = bi.Main.Version
	}
	if Commit == "" {
		for _, setting := range bi.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
				Commit = setting.Value[:7]
			}
		}
	}
}

func ProgramVersionShort() string {
	return strings.Trim(Program+" "+VersionStringShort(), " ")
}

func VersionStringShort() string {
	var parts []string
	if Version != "" {
		v := Version
		if strings.Contains(Version, "-") {
			v += " (non-release)"
		}
		parts = append(parts, v)
	}
	if Commit != "" && !strings.Contains(Version, Commit) {
		parts = append(parts, "(commit "+Commit+")")
	}
	if len(parts) == 0 {
		return "(unknown build)"
	}
	return strings.Join(parts, " ")
}

func VersionString() string {
	return ProgramVersionShort() + ", " + Copyright + ", " + Disclaimer
}
