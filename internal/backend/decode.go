// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

var timeLayouts = []string{
	TimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var (
	timeType        = reflect.TypeOf(time.Time{})
	stringSliceType = reflect.TypeOf([]string{})
)

// Decode copies row into the struct pointed to by out using mapstructure tags.
// Integers decode into bools, stored timestamps into time.Time and JSON
// arrays into []string.
func Decode(row Row, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(stringToTimeHook, stringToSliceHook),
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(row))
}

// DecodeOne decodes a single row into a T.
func DecodeOne[T any](row Row) (T, error) {
	var v T
	err := Decode(row, &v)
	return v, err
}

// DecodeAll decodes every row, failing on the first malformed one.
func DecodeAll[T any](rows []Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, r := range rows {
		v, err := DecodeOne[T](r)
		if err != nil {
			return nil, fmt.Errorf("decoding row %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func stringToTimeHook(_ reflect.Type, t reflect.Type, data any) (any, error) {
	if t != timeType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return parseTime(v)
	case int64:
		return time.Unix(v, 0).UTC(), nil
	default:
		return data, nil
	}
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func stringToSliceHook(_ reflect.Type, t reflect.Type, data any) (any, error) {
	if t != stringSliceType {
		return data, nil
	}
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}, nil
	}
	if strings.HasPrefix(s, "[") {
		var out []string
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("decoding list: %w", err)
		}
		if out == nil {
			out = []string{}
		}
		return out, nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}
