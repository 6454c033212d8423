package catalog

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup drops tags from catalog descriptions and decodes entities.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	var sb strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input, keep what was read so far
			return strings.TrimSpace(sb.String())
		case html.TextToken:
			sb.Write(tokenizer.Text())
		}
	}
}
