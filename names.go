package domsnap

import (
	"strings"

	"github.com/domsnap/domsnap/host"
)

// normalizeText collapses any run of whitespace (including newlines) into a
// single space, then trims (spec.md §4.3).
func normalizeText(s string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v' {
			if !lastWasSpace {
				b.WriteRune(' ')
			}
			lastWasSpace = true
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return strings.TrimSpace(b.String())
}

// visibleTextContent is the concatenation, in document order, of all
// descendant text-node contents, excluding any descendant in the skip-tag
// set, then normalized (spec.md §4.3).
func visibleTextContent(el host.Element) string {
	var b strings.Builder
	collectVisibleText(el, &b)
	return normalizeText(b.String())
}

func collectVisibleText(el host.Element, b *strings.Builder) {
	if isSkipTag(el.TagName()) {
		return
	}
	for _, child := range el.ChildNodes() {
		switch child.Kind() {
		case host.TextNode:
			b.WriteString(child.TextData())
		case host.ElementNode:
			collectVisibleText(child.Element(), b)
		}
	}
}

// resolveAccessibleName implements spec.md §4.2's accessible-name
// precedence. role must already be resolved (resolveRole).
func resolveAccessibleName(doc host.Document, el host.Element, role string) string {
	if label, ok := el.Attr("aria-label"); ok {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			return trimmed
		}
	}

	if labelledby, ok := el.Attr("aria-labelledby"); ok {
		if name := resolveLabelledBy(doc, labelledby); name != "" {
			return name
		}
	}

	tag := strings.ToLower(el.TagName())

	if tag == "img" {
		if alt, ok := el.Attr("alt"); ok {
			return alt
		}
	}

	if tag == "input" {
		if placeholder, ok := el.Attr("placeholder"); ok && placeholder != "" {
			return placeholder
		}
		inputType := normalizedInputType(el)
		if inputType == "submit" || inputType == "button" {
			if v, ok := el.Attr("value"); ok && v != "" {
				return v
			}
			return "Submit"
		}
	}

	if tag == "button" {
		return visibleTextContent(el)
	}

	if tag == "a" {
		return visibleTextContent(el)
	}

	if isInteractive(el, role) {
		return visibleTextContent(el)
	}

	return ""
}

// resolveLabelledBy concatenates the trimmed text of each referenced
// element that exists, joined by a single space. Missing ids are ignored
// (spec.md §7 "Missing reference").
func resolveLabelledBy(doc host.Document, idList string) string {
	ids := strings.Fields(idList)
	var parts []string
	for _, id := range ids {
		target, ok := doc.GetElementByID(id)
		if !ok {
			continue
		}
		text := strings.TrimSpace(visibleTextContent(target))
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// hasExplicitLabel reports whether the element carries an aria-label or
// resolvable aria-labelledby whose text length exceeds 1 character — used
// by shouldIncludeElement rule 7.
func hasExplicitLabel(doc host.Document, el host.Element) bool {
	if label, ok := el.Attr("aria-label"); ok && len(strings.TrimSpace(label)) > 1 {
		return true
	}
	if labelledby, ok := el.Attr("aria-labelledby"); ok {
		if len(resolveLabelledBy(doc, labelledby)) > 1 {
			return true
		}
	}
	return false
}
