package parse

import "strings"

// Normalize flattens a raw field value to plain text. Plain strings pass
// through; a structured-document tree (Atlassian Document Format decoded from
// JSON) is walked recursively, concatenating leaf text in document order and
// preserving paragraph boundaries as line breaks. Absent values normalize to
// the empty string.
func Normalize(field any) string {
	switch v := field.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		var b strings.Builder
		walkNode(&b, v)
		return strings.TrimRight(b.String(), "\n")
	default:
		return ""
	}
}

// walkNode renders one document node and its children into the builder.
func walkNode(b *strings.Builder, node map[string]any) {
	nodeType, _ := node["type"].(string)

	switch nodeType {
	case "text":
		if text, ok := node["text"].(string); ok {
			b.WriteString(text)
		}
		return
	case "hardBreak":
		b.WriteString("\n")
		return
	case "rule":
		return
	}

	walkContent(b, node["content"])

	// Block-level nodes end a line so each paragraph, heading, or list item
	// lands on its own line in the normalized text.
	switch nodeType {
	case "paragraph", "heading", "listItem", "codeBlock", "blockquote", "tableRow":
		endLine(b)
	}
}

func walkContent(b *strings.Builder, content any) {
	items, ok := content.([]any)
	if !ok {
		return
	}
	for _, item := range items {
		if node, ok := item.(map[string]any); ok {
			walkNode(b, node)
		}
	}
}

func endLine(b *strings.Builder) {
	s := b.String()
	if len(s) > 0 && !strings.HasSuffix(s, "\n") {
		b.WriteString("\n")
	}
}
