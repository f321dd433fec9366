// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package edgar

import (
	"strings"

	"golang.org/x/net/html"
)

// SanitizeHTML reduces a raw filing blob to searchable plain text: tags
// stripped, script/style contents dropped, entities decoded, whitespace
// collapsed to single spaces. EDGAR .txt documents wrap HTML inside SGML
// container tags, which the tokenizer treats as ordinary elements.
func SanitizeHTML(raw string) string {
	tok := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	skip := 0

	for {
		switch tok.Next() {
		case html.ErrorToken:
			return collapseWhitespace(b.String())
		case html.StartTagToken:
			if name, _ := tok.TagName(); skippedTag(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := tok.TagName(); skippedTag(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(tok.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func skippedTag(name []byte) bool {
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
