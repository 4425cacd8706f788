package domsnap

import (
	"strings"

	"github.com/domsnap/domsnap/host"
)

// InteractiveRoles is the set of roles considered operable (spec.md §4.2).
var InteractiveRoles = map[string]bool{
	"button":     true,
	"checkbox":   true,
	"combobox":   true,
	"link":       true,
	"menuitem":   true,
	"radio":      true,
	"searchbox":  true,
	"slider":     true,
	"spinbutton": true,
	"switch":     true,
	"tab":        true,
	"textbox":    true,
}

// InteractiveTags is the set of tags considered interactive regardless of
// resolved role (spec.md §4.2).
var InteractiveTags = map[string]bool{
	"a":        true,
	"button":   true,
	"summary":  true,
	"details":  true,
	"select":   true,
	"textarea": true,
	"input":    true,
	"label":    true,
	"video":    true,
	"audio":    true,
}

// LayoutRoles are treated as non-semantic containers (spec.md §4.2).
var LayoutRoles = map[string]bool{
	"generic":       true,
	"article":       true,
	"section":       true,
	"region":        true,
	"group":         true,
	"main":          true,
	"complementary": true,
	"navigation":    true,
	"banner":        true,
	"contentinfo":   true,
}

// inputTypeRoles maps a lower-cased <input type> to its ARIA role
// (spec.md §4.2 step 3).
var inputTypeRoles = map[string]string{
	"button": "button",
	"submit": "button",
	"reset":  "button",
	"image":  "button",

	"checkbox": "checkbox",
	"radio":    "radio",
	"range":    "slider",

	"email":    "textbox",
	"url":      "textbox",
	"password": "textbox",
	"text":     "textbox",

	"search": "searchbox",
	"number": "spinbutton",
}

func isInteractive(el host.Element, role string) bool {
	if InteractiveRoles[role] {
		return true
	}
	if InteractiveTags[strings.ToLower(el.TagName())] {
		return true
	}
	if el.IsContentEditable() {
		return true
	}
	return false
}

// resolveRole implements spec.md §4.2's role resolution precedence.
func resolveRole(el host.Element) string {
	if explicit, ok := el.Attr("role"); ok && strings.TrimSpace(explicit) != "" {
		return strings.ToLower(strings.TrimSpace(explicit))
	}

	tag := strings.ToLower(el.TagName())

	switch tag {
	case "a":
		if _, ok := el.Attr("href"); ok {
			return "link"
		}
		return "generic"
	case "button":
		return "button"
	case "img":
		return "image"
	case "textarea":
		return "textbox"
	case "select":
		return "combobox"
	case "input":
		inputType := strings.ToLower(el.Attrs()["type"])
		if inputType == "" {
			inputType = "text"
		}
		if role, ok := inputTypeRoles[inputType]; ok {
			return role
		}
		return "textbox"
	}

	if el.IsContentEditable() {
		return "textbox"
	}

	return "generic"
}

// normalizedInputType returns the lower-cased input type, defaulting to
// "text" the same way resolveRole does.
func normalizedInputType(el host.Element) string {
	t := strings.ToLower(el.Attrs()["type"])
	if t == "" {
		return "text"
	}
	return t
}
