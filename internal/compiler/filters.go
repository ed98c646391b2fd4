package compiler

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/yuin/goldmark"
)

// Filter transforms rep content during compilation.
type Filter interface {
	Apply(content []byte) ([]byte, error)
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(content []byte) ([]byte, error)

func (f FilterFunc) Apply(content []byte) ([]byte, error) { return f(content) }

// DefaultFilters returns the built-in filter registry.
func DefaultFilters() map[string]Filter {
	return map[string]Filter{
		"markdown":   FilterFunc(markdownFilter),
		"strip_html": FilterFunc(stripHTMLFilter),
		"rot13":      FilterFunc(rot13Filter),
	}
}

var md = goldmark.New()

func markdownFilter(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert(content, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

func stripHTMLFilter(content []byte) ([]byte, error) {
	return htmlTag.ReplaceAll(content, nil), nil
}

func rot13Filter(content []byte) ([]byte, error) {
	out := make([]byte, len(content))
	for i, c := range content {
		switch {
		case c >= 'a' && c <= 'z':
			out[i] = 'a' + (c-'a'+13)%26
		case c >= 'A' && c <= 'Z':
			out[i] = 'A' + (c-'A'+13)%26
		default:
			out[i] = c
		}
	}
	return out, nil
}
