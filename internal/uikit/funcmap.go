// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package uikit provides template helpers and pagination view models.
package uikit

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Months contains Portuguese month names.
var Months = []string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Location is the time zone dates are shown in.
var Location = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}()

// TemplateFuncs returns a template.FuncMap with pure helper functions.
//
// Callers can merge project-specific functions on top:
//
//	funcs := uikit.TemplateFuncs()
//	funcs["myFunc"] = myProjectFunc
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"hasPrefix": strings.HasPrefix,
		"join":      strings.Join,

		"safeURL": func(s string) template.URL {
			return template.URL(s)
		},

		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},

		"formatDate":     FormatDate,
		"formatDateTime": FormatDateTime,
		"isoDate": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},

		"toJSON": func(v any) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return "null"
			}
			return template.JS(b)
		},

		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				dict[key] = values[i+1]
			}
			return dict
		},
	}
}

// FormatDate formats t as "2 de janeiro de 2006". The zero time is "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(Location)
	return fmt.Sprintf("%d de %s de %d", t.Day(), Months[t.Month()-1], t.Year())
}

// FormatDateTime formats t as "2 de janeiro de 2006, 15:04".
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	local := t.In(Location)
	return fmt.Sprintf("%s, %02d:%02d", FormatDate(t), local.Hour(), local.Minute())
}
