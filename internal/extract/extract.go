// Package extract builds field descriptors from a document's fillable controls.
package extract

import (
	"strings"

	"github.com/jonathan/form-autofill/internal/dom"
	"github.com/jonathan/form-autofill/internal/types"
)

const (
	// containerSelector finds the structural block whose text describes a control.
	containerSelector = "div, section, fieldset, form"
	headingSelector   = "h1, h2, h3, h4, h5, h6, .title, .heading"
	describeSelector  = ".description, .help-text, .hint, p"

	formHeadingSelector     = "h1, h2, h3, .form-title, .title"
	formDescriptionSelector = ".form-description, .description, p"
)

// skippedKinds carry no user-fillable meaning.
var skippedKinds = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
}

// Fields returns one descriptor per fillable control in document order.
// It only reads from doc and can be called any number of times.
func Fields(doc dom.Document) []types.FieldDescriptor {
	controls := doc.Controls()
	fields := make([]types.FieldDescriptor, 0, len(controls))

	for _, el := range controls {
		kind := Kind(el)
		if skippedKinds[kind] {
			continue
		}
		fields = append(fields, Describe(doc, el))
	}

	return fields
}

// Describe builds the descriptor for a single control.
func Describe(doc dom.Document, el dom.Element) types.FieldDescriptor {
	id := attr(el, "id")
	name := attr(el, "name")
	labelEl := labelElement(doc, el, id)

	field := types.FieldDescriptor{
		Kind:        Kind(el),
		Name:        name,
		ID:          id,
		Placeholder: attr(el, "placeholder"),
		Context:     nearbyContext(el, labelEl),
		Required:    required(el),
		Selector:    Selector(el),
		Value:       el.Value(),
	}
	if labelEl != nil {
		field.Label = labelEl.Text()
	}
	return field
}

// Page returns the page-level context together with all field descriptors.
func Page(doc dom.Document) types.PageContext {
	page := types.PageContext{
		Title:  doc.Title(),
		URL:    doc.URL(),
		Fields: Fields(doc),
	}

	if form := doc.Query("form"); form != nil {
		if heading := first(form.Find(formHeadingSelector)); heading != nil {
			page.FormTitle = heading.Text()
		}
		if desc := first(form.Find(formDescriptionSelector)); desc != nil {
			page.FormDescription = desc.Text()
		}
	}

	return page
}

// Kind is the control's effective type: the lower-cased type attribute for inputs
// (text when missing or empty) and the tag name otherwise.
func Kind(el dom.Element) string {
	tag := el.Tag()
	if tag != "input" {
		return tag
	}
	kind := strings.ToLower(strings.TrimSpace(attr(el, "type")))
	if kind == "" {
		return "text"
	}
	return kind
}

// Selector builds a locator that survives DOM mutation: id first, then name,
// then the bare tag name. The last form is not unique and resolves to the first
// element with that tag.
func Selector(el dom.Element) string {
	if id := attr(el, "id"); id != "" {
		return dom.IDSelector(id)
	}
	if name := attr(el, "name"); name != "" {
		return dom.NameSelector(name)
	}
	return el.Tag()
}

// labelElement resolves a for-associated label first, then the nearest wrapping label.
// A label whose text is empty does not count, so resolution falls through to the next source.
func labelElement(doc dom.Document, el dom.Element, id string) dom.Element {
	if id != "" {
		if label := doc.LabelFor(id); label != nil && label.Text() != "" {
			return label
		}
	}
	if label := el.Closest("label"); label != nil && label.Text() != "" {
		return label
	}
	return nil
}

// nearbyContext joins the first heading and first description found in the control's
// nearest structural container. The control's own label is never used as the description.
func nearbyContext(el dom.Element, label dom.Element) string {
	container := el.Closest(containerSelector)
	if container == nil {
		return ""
	}

	var parts []string
	if heading := first(container.Find(headingSelector)); heading != nil {
		if text := heading.Text(); text != "" {
			parts = append(parts, text)
		}
	}

	for _, desc := range container.Find(describeSelector) {
		if desc.Same(el) || (label != nil && desc.Same(label)) {
			continue
		}
		if text := desc.Text(); text != "" {
			parts = append(parts, text)
		}
		break
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}

func required(el dom.Element) bool {
	if _, ok := el.Attr("required"); ok {
		return true
	}
	v, _ := el.Attr("aria-required")
	return strings.EqualFold(v, "true")
}

func attr(el dom.Element, name string) string {
	v, _ := el.Attr(name)
	return v
}

func first(els []dom.Element) dom.Element {
	if len(els) == 0 {
		return nil
	}
	return els[0]
}
