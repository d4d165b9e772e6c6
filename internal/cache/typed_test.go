// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type settingsStub struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func TestTypedCache_SetGet(t *testing.T) {
	mc := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mc.Close() }()
	tc := NewTypedCache[settingsStub](mc, "settings:", 0)
	ctx := context.Background()

	if _, ok := tc.Get(ctx, "default"); ok {
		t.Fatal("Get on empty cache reported a hit")
	}

	want := settingsStub{Title: "Diocese", Tags: []string{"a"}}
	if err := tc.Set(ctx, "default", want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := tc.Get(ctx, "default")
	if !ok || got.Title != want.Title || len(got.Tags) != 1 {
		t.Errorf("Get = %+v, %v", got, ok)
	}

	if has, _ := mc.Has(ctx, "settings:default"); !has {
		t.Error("value not stored under namespaced key")
	}
}

func TestTypedCache_GetOrLoad(t *testing.T) {
	mc := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mc.Close() }()
	tc := NewTypedCache[int](mc, "n:", 0)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}
	for i := 0; i < 3; i++ {
		v, err := tc.GetOrLoad(ctx, "answer", load)
		if err != nil || v != 42 {
			t.Fatalf("GetOrLoad = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestTypedCache_GetOrLoadError(t *testing.T) {
	mc := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mc.Close() }()
	tc := NewTypedCache[int](mc, "n:", 0)
	ctx := context.Background()

	boom := errors.New("boom")
	if _, err := tc.GetOrLoad(ctx, "x", func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("GetOrLoad error = %v, want boom", err)
	}
	if has, _ := mc.Has(ctx, "n:x"); has {
		t.Error("failed load was cached")
	}
}

func TestTypedCache_InvalidateAndCorrupt(t *testing.T) {
	mc := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mc.Close() }()
	tc := NewTypedCache[settingsStub](mc, "settings:", 0)
	ctx := context.Background()

	_ = tc.Set(ctx, "a", settingsStub{Title: "A"})
	_ = mc.Set(ctx, "other", []byte("keep"), 0)
	if err := tc.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := tc.Get(ctx, "a"); ok {
		t.Error("entry survived Invalidate")
	}
	if has, _ := mc.Has(ctx, "other"); !has {
		t.Error("Invalidate removed a key outside its namespace")
	}

	_ = mc.Set(ctx, "settings:bad", []byte("{not json"), 0)
	if _, ok := tc.Get(ctx, "bad"); ok {
		t.Error("corrupt entry reported as hit")
	}
	if has, _ := mc.Has(ctx, "settings:bad"); has {
		t.Error("corrupt entry was not dropped")
	}
}
