// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/olegiv/diocese-go/internal/seo"
	"github.com/olegiv/diocese-go/internal/uikit"
)

// sanitizer keeps the markup editors may use in article bodies and
// biographies and drops scripts, handlers and styles.
var sanitizer = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("p", "span", "div", "figure", "img")
	p.AllowElements("figure", "figcaption")
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}()

// markdown renders the about text. Raw HTML is let through goldmark and
// then sanitized like any other stored HTML.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()),
)

// SanitizeHTML cleans stored HTML for output.
func SanitizeHTML(s string) template.HTML {
	return template.HTML(sanitizer.Sanitize(s))
}

// Markdown converts Markdown to sanitized HTML. On a conversion failure the
// text is shown escaped with line breaks.
func Markdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(s), &buf); err != nil {
		return NL2BR(s)
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

// NL2BR escapes s and turns its line breaks into <br>.
func NL2BR(s string) template.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = template.HTMLEscapeString(line)
	}
	return template.HTML(strings.Join(lines, "<br>\n"))
}

// Excerpt returns the first n characters of the text of an HTML fragment.
func Excerpt(s string, n int) string {
	return seo.Truncate(seo.StripHTML(s), n)
}

// relTimePT are the Portuguese relative time magnitudes.
var relTimePT = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "agora", DivBy: time.Second},
	{D: 2 * time.Second, Format: "1 segundo %s", DivBy: 1},
	{D: time.Minute, Format: "%d segundos %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minuto %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutos %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hora %s", DivBy: 1},
	{D: humanize.Day, Format: "%d horas %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 dia %s", DivBy: 1},
	{D: humanize.Month, Format: "%d dias %s", DivBy: humanize.Day},
	{D: 2 * humanize.Month, Format: "1 mês %s", DivBy: 1},
	{D: humanize.Year, Format: "%d meses %s", DivBy: humanize.Month},
	{D: 2 * humanize.Year, Format: "1 ano %s", DivBy: 1},
	{D: humanize.LongTime, Format: "%d anos %s", DivBy: humanize.Year},
}

// Ago describes t relative to now in Portuguese, e.g. "5 minutos atrás".
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.CustomRelTime(t, now, "atrás", "a partir de agora", relTimePT)
}

// Count formats n with thousands separators the Brazilian way.
func Count(n int) string {
	return strings.ReplaceAll(humanize.Comma(int64(n)), ",", ".")
}

func templateFuncs() template.FuncMap {
	funcs := uikit.TemplateFuncs()

	funcs["sanitize"] = SanitizeHTML
	funcs["markdown"] = Markdown
	funcs["nl2br"] = NL2BR
	funcs["excerpt"] = Excerpt
	funcs["ago"] = func(t time.Time) string { return Ago(t, time.Now()) }
	funcs["count"] = Count
	funcs["bytes"] = func(n int64) string { return humanize.Bytes(uint64(n)) }
	funcs["telHref"] = func(phone string) template.URL {
		var b strings.Builder
		for _, r := range phone {
			if r == '+' || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		return template.URL("tel:" + b.String())
	}

	return funcs
}
