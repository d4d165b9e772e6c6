// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package demo keeps a public demonstration install fresh: on start it
// throws away the database and uploads once they are older than the reset
// interval, so the sample content is seeded again.
package demo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// stampFile records the last reset inside the data directory.
const stampFile = ".last_reset"

// DefaultInterval is how long visitors' edits survive.
const DefaultInterval = 24 * time.Hour

// Resetter wipes the demo data files.
type Resetter struct {
	DBPath     string
	UploadsDir string
	// Interval between resets. Zero means DefaultInterval.
	Interval time.Duration
	// Now replaces time.Now.
	Now func() time.Time
}

func (r Resetter) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r Resetter) interval() time.Duration {
	if r.Interval > 0 {
		return r.Interval
	}
	return DefaultInterval
}

func (r Resetter) stampPath() string {
	return filepath.Join(filepath.Dir(r.DBPath), stampFile)
}

// LastReset returns the recorded reset time. ok is false when none was
// recorded or the record is unreadable.
func (r Resetter) LastReset() (last time.Time, ok bool, err error) {
	data, err := os.ReadFile(r.stampPath())
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("reading reset timestamp: %w", err)
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.Unix(sec, 0), true, nil
}

// ResetIfDue resets when no reset was recorded or the last one is older than
// the interval. It reports whether a reset happened.
func (r Resetter) ResetIfDue() (bool, error) {
	last, ok, err := r.LastReset()
	if err != nil {
		return false, err
	}
	if ok && r.now().Sub(last) < r.interval() {
		slog.Info("demo reset not due",
			"last_reset", last.UTC().Format(time.RFC3339),
			"next_reset", last.Add(r.interval()).UTC().Format(time.RFC3339),
		)
		return false, nil
	}

	slog.Info("demo reset due, removing database and uploads")
	return true, r.Reset()
}

// Reset removes the database with its WAL files, empties the uploads
// directory and records the reset time.
func (r Resetter) Reset() error {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(r.DBPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", r.DBPath+suffix, err)
		}
	}

	if err := emptyDir(r.UploadsDir); err != nil {
		return fmt.Errorf("clearing uploads: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.stampPath()), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	stamp := []byte(strconv.FormatInt(r.now().UTC().Unix(), 10))
	if err := os.WriteFile(r.stampPath(), stamp, 0644); err != nil {
		return fmt.Errorf("writing reset timestamp: %w", err)
	}

	slog.Info("demo reset complete", "db", r.DBPath, "uploads", r.UploadsDir)
	return nil
}

// emptyDir removes everything inside dir but keeps dir. A missing dir is
// already empty.
func emptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		p := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}
	return nil
}
