// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content compares, sanitises and renders the JSON documents held
// in section drafts and published snapshots.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"math/big"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Null is the JSON encoding of an empty section.
const Null = "null"

// ErrInvalidJSON is returned when a document is not valid JSON.
var ErrInvalidJSON = errors.New("content is not valid JSON")

var (
	ugcPolicy = bluemonday.UGCPolicy()
	markdown  = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

// Decode parses a stored document. Empty input decodes to nil (JSON null).
// Numbers decode as json.Number so they keep their exact digits.
func Decode(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", ErrInvalidJSON)
	}
	return v, nil
}

// numbersByValue compares JSON numbers exactly, so 1 equals 1.0 but two
// integers beyond float64 precision stay distinct.
var numbersByValue = cmp.Comparer(func(a, b json.Number) bool {
	ra, okA := new(big.Rat).SetString(a.String())
	rb, okB := new(big.Rat).SetString(b.String())
	if !okA || !okB {
		return a == b
	}
	return ra.Cmp(rb) == 0
})

// Equal reports whether two JSON documents are structurally equal.
// Key order and whitespace are ignored; numbers compare by value.
func Equal(a, b []byte) (bool, error) {
	va, err := Decode(a)
	if err != nil {
		return false, err
	}
	vb, err := Decode(b)
	if err != nil {
		return false, err
	}
	return cmp.Equal(va, vb, numbersByValue), nil
}

// Normalize validates raw and returns its compact encoding.
func Normalize(raw []byte) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Null, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return buf.String(), nil
}

// Sanitize strips unsafe markup from every string value in raw. Plain text
// that only gains entity escapes, such as "a < b", is kept as written.
// When nothing changes raw is returned as is.
func Sanitize(raw []byte) ([]byte, error) {
	v, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	clean, changed := sanitizeValue(v)
	if !changed {
		return raw, nil
	}
	return json.Marshal(clean)
}

func sanitizeValue(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		if !strings.Contains(t, "<") {
			return t, false
		}
		clean := ugcPolicy.Sanitize(t)
		if clean == t || html.UnescapeString(clean) == t {
			return t, false
		}
		return clean, true
	case []any:
		changed := false
		for i := range t {
			var c bool
			t[i], c = sanitizeValue(t[i])
			changed = changed || c
		}
		return t, changed
	case map[string]any:
		changed := false
		for k, val := range t {
			clean, c := sanitizeValue(val)
			t[k] = clean
			changed = changed || c
		}
		return t, changed
	default:
		return v, false
	}
}

// MarkdownSource extracts the markdown text of a section document: either
// the document itself when it is a string, or its "body" field.
func MarkdownSource(doc any) (string, bool) {
	switch t := doc.(type) {
	case string:
		return t, true
	case map[string]any:
		body, ok := t["body"].(string)
		return body, ok
	}
	return "", false
}

// RenderMarkdown converts markdown to sanitised HTML.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return ugcPolicy.Sanitize(buf.String()), nil
}
