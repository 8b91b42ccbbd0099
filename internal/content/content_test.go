// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", `{"a":1}`, `{"a":1}`, true},
		{"key order", `{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{"whitespace", `{ "a" : [1, 2] }`, `{"a":[1,2]}`, true},
		{"number forms", `{"n":1}`, `{"n":1.0}`, true},
		{"different value", `{"a":1}`, `{"a":2}`, false},
		{"array order", `[1,2]`, `[2,1]`, false},
		{"nested", `{"a":{"b":[{"c":true}]}}`, `{"a":{"b":[{"c":true}]}}`, true},
		{"nested differs", `{"a":{"b":[{"c":true}]}}`, `{"a":{"b":[{"c":false}]}}`, false},
		{"empty is null", ``, `null`, true},
		{"null vs empty object", `null`, `{}`, false},
		{"empty array vs null", `[]`, `null`, false},
		{"exponent form", `{"n":1e2}`, `{"n":100}`, true},
		{"integers beyond float precision", `{"id":9007199254740993}`, `{"id":9007199254740992}`, false},
		{"same large integer", `{"id":9007199254740993}`, `{"id":9007199254740993}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Equal([]byte(tt.a), []byte(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEqual_InvalidJSON(t *testing.T) {
	_, err := Equal([]byte(`{"a":`), []byte(`{}`))
	assert.True(t, errors.Is(err, ErrInvalidJSON))

	_, err = Equal([]byte(`{} {}`), []byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
	_, err = Decode([]byte(`{"a":1}}`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestNormalize(t *testing.T) {
	got, err := Normalize([]byte("{ \"a\" : 1 }\n"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, got)

	got, err = Normalize(nil)
	require.NoError(t, err)
	assert.Equal(t, Null, got)

	_, err = Normalize([]byte(`{`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestSanitize(t *testing.T) {
	raw := `{"title":"Fish & chips","body":"<p>ok</p><script>alert(1)</script>","tags":["<b onclick=\"x()\">hi</b>"],"n":3}`
	out, err := Sanitize([]byte(raw))
	require.NoError(t, err)

	doc, err := Decode(out)
	require.NoError(t, err)
	m := doc.(map[string]any)

	assert.Equal(t, "Fish & chips", m["title"], "strings without markup stay untouched")
	assert.Equal(t, "<p>ok</p>", m["body"])
	assert.Equal(t, []any{"<b>hi</b>"}, m["tags"])
	assert.Equal(t, json.Number("3"), m["n"])
}

func TestSanitizeKeepsLargeIntegers(t *testing.T) {
	out, err := Sanitize([]byte(`{"html":"<script>x</script>hi","id":9007199254740993}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"html":"hi","id":9007199254740993}`, string(out))
	assert.Contains(t, string(out), "9007199254740993")
}

func TestSanitizeKeepsPlainTextComparisons(t *testing.T) {
	raw := []byte(`{"note":"price < 5 & rising","range":"1<2"}`)
	out, err := Sanitize(raw)
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(out))

	out, err = Sanitize([]byte(`{"note":"a < b <script>alert(1)</script>"}`))
	require.NoError(t, err)
	doc, err := Decode(out)
	require.NoError(t, err)
	assert.NotContains(t, doc.(map[string]any)["note"], "<script>")
}

func TestSanitizeUnchangedKeepsBytes(t *testing.T) {
	raw := []byte(`{"b": 12345678901234567890, "html": "<p>fine</p>"}`)
	out, err := Sanitize(raw)
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(out))

	_, err = Sanitize([]byte(`{"a":`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestMarkdownSource(t *testing.T) {
	src, ok := MarkdownSource(map[string]any{"body": "# Hi"})
	assert.True(t, ok)
	assert.Equal(t, "# Hi", src)

	src, ok = MarkdownSource("plain")
	assert.True(t, ok)
	assert.Equal(t, "plain", src)

	_, ok = MarkdownSource(map[string]any{"title": "x"})
	assert.False(t, ok)
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("Poured on **Harbor Street**.\n\n<script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>Harbor Street</strong>")
	assert.False(t, strings.Contains(html, "<script>"))
}
