// Package dom defines the document query/mutate capability the extractor and filler work against,
// plus a goquery-backed implementation over parsed HTML.
package dom

import (
	"strings"
)

// Option is one entry of a select list.
type Option struct {
	Value string
	Text  string
}

// Element is a node in a Document.
type Element interface {
	// Tag returns the lower-cased tag name.
	Tag() string
	Attr(name string) (string, bool)
	// Text returns the trimmed text content.
	Text() string
	// Value returns the control's current value.
	Value() string
	Options() []Option
	// SetValue writes the control's value. For select lists it selects the option with that value.
	SetValue(v string)
	// Dispatch notifies the host page that an event of the given type fired on the element.
	Dispatch(eventType string)
	// Closest returns the nearest ancestor (or the element itself) matching selector, or nil.
	Closest(selector string) Element
	// Find returns descendants matching selector in document order.
	Find(selector string) []Element
	// Same reports whether other refers to the same node.
	Same(other Element) bool
}

// Document is a queryable, mutable page.
type Document interface {
	Title() string
	URL() string
	// Controls returns every input, textarea and select element in document order.
	Controls() []Element
	// Query returns the first element matching selector, or nil.
	Query(selector string) Element
	// Find returns every element matching selector in document order.
	Find(selector string) []Element
	// LabelFor returns the first label whose for attribute equals id, or nil.
	LabelFor(id string) Element
}

// Event is a notification recorded by documents that do not run page scripts.
type Event struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// IDSelector returns the "#id" locator for an element id.
func IDSelector(id string) string {
	return "#" + id
}

// NameSelector returns the `[name="..."]` locator for a name attribute.
func NameSelector(name string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name)
	return `[name="` + escaped + `"]`
}

// locator is a parsed selector produced by IDSelector, NameSelector or a bare tag name.
type locator struct {
	attr  string
	value string
	raw   string
}

// parseLocator recognises the selector forms the extractor emits so that ids and names
// containing CSS metacharacters still resolve. Anything else is treated as a CSS selector.
func parseLocator(selector string) locator {
	switch {
	case strings.HasPrefix(selector, "#") && len(selector) > 1:
		return locator{attr: "id", value: selector[1:]}
	case strings.HasPrefix(selector, `[name="`) && strings.HasSuffix(selector, `"]`):
		inner := selector[len(`[name="`) : len(selector)-len(`"]`)]
		return locator{attr: "name", value: unescape(inner)}
	default:
		return locator{raw: selector}
	}
}

func unescape(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
