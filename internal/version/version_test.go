// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import (
	"runtime/debug"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "release",
			info: Info{Version: "v1.4.0", GitCommit: "abc1234", BuildTime: "2026-03-01T10:00:00Z"},
			want: "diocese v1.4.0 (commit: abc1234, built: 2026-03-01T10:00:00Z)",
		},
		{
			name: "zero value",
			want: "diocese dev (commit: unknown, built: unknown)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-05-10T08:30:00Z"},
		{Key: "GOOS", Value: "linux"},
	}

	got := Info{Version: "dev", GitCommit: "unknown", BuildTime: "unknown"}.withSettings(settings)
	if got.GitCommit != "0123456" {
		t.Errorf("GitCommit = %q, want 0123456", got.GitCommit)
	}
	if got.BuildTime != "2026-05-10T08:30:00Z" {
		t.Errorf("BuildTime = %q", got.BuildTime)
	}

	injected := Info{Version: "v2.0.0", GitCommit: "feedbee", BuildTime: "2026-01-01T00:00:00Z"}
	if kept := injected.withSettings(settings); kept != injected {
		t.Errorf("ldflags values should win, got %+v", kept)
	}
}
