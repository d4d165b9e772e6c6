// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version describes the running build.
package version

import (
	"fmt"
	"runtime/debug"
)

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string // Short git commit hash (e.g., "abc1234")
	BuildTime string // Build timestamp in RFC3339 format
}

// Resolve fills fields left at their ldflags defaults from the VCS stamp Go
// embeds in the binary.
func (i Info) Resolve() Info {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return i
	}
	return i.withSettings(bi.Settings)
}

func (i Info) withSettings(settings []debug.BuildSetting) Info {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if unset(i.GitCommit) && s.Value != "" {
				i.GitCommit = s.Value
				if len(i.GitCommit) > 7 {
					i.GitCommit = i.GitCommit[:7]
				}
			}
		case "vcs.time":
			if unset(i.BuildTime) && s.Value != "" {
				i.BuildTime = s.Value
			}
		}
	}
	return i
}

func unset(s string) bool {
	return s == "" || s == "unknown"
}

// String formats the build for -version output.
func (i Info) String() string {
	v := i.Version
	if v == "" {
		v = "dev"
	}
	commit, built := i.GitCommit, i.BuildTime
	if commit == "" {
		commit = "unknown"
	}
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("diocese %s (commit: %s, built: %s)", v, commit, built)
}
