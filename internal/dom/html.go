package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLDocument is a Document over parsed HTML. Writes mutate the parsed tree and
// dispatched events are appended to an in-memory log instead of running page scripts.
type HTMLDocument struct {
	doc    *goquery.Document
	url    string
	events []Event
}

// ParseHTML parses an HTML page. pageURL is reported by URL and may be empty.
func ParseHTML(r io.Reader, pageURL string) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ParseError{Message: "failed to parse HTML", Cause: err}
	}
	return &HTMLDocument{doc: doc, url: pageURL}, nil
}

// ParseHTMLString is ParseHTML over a string.
func ParseHTMLString(html, pageURL string) (*HTMLDocument, error) {
	return ParseHTML(strings.NewReader(html), pageURL)
}

// Title returns the trimmed text of the first title element.
func (d *HTMLDocument) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// URL returns the page URL given at parse time.
func (d *HTMLDocument) URL() string { return d.url }

// Controls returns input, textarea and select elements in document order.
func (d *HTMLDocument) Controls() []Element {
	return d.all(d.doc.Find("input, textarea, select"))
}

// Query resolves selector to its first match. Locators built by IDSelector and
// NameSelector are matched by attribute equality.
func (d *HTMLDocument) Query(selector string) Element {
	loc := parseLocator(selector)
	if loc.attr == "" {
		return d.wrap(d.doc.Find(loc.raw).First())
	}
	match := d.doc.Find("[" + loc.attr + "]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr(loc.attr)
		return v == loc.value
	})
	return d.wrap(match.First())
}

// Find returns every element matching a CSS selector.
func (d *HTMLDocument) Find(selector string) []Element {
	return d.all(d.doc.Find(selector))
}

// LabelFor returns the first label element whose for attribute equals id.
func (d *HTMLDocument) LabelFor(id string) Element {
	if id == "" {
		return nil
	}
	match := d.doc.Find("label[for]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("for")
		return v == id
	})
	return d.wrap(match.First())
}

// Events returns the notifications dispatched so far, oldest first.
func (d *HTMLDocument) Events() []Event {
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

// HTML renders the document including any writes.
func (d *HTMLDocument) HTML() (string, error) {
	html, err := d.doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return html, nil
}

func (d *HTMLDocument) wrap(s *goquery.Selection) Element {
	if s == nil || s.Length() == 0 {
		return nil
	}
	return &htmlElement{doc: d, sel: s.First()}
}

func (d *HTMLDocument) all(s *goquery.Selection) []Element {
	out := make([]Element, 0, s.Length())
	s.Each(func(_ int, item *goquery.Selection) {
		out = append(out, &htmlElement{doc: d, sel: item})
	})
	return out
}

type htmlElement struct {
	doc *HTMLDocument
	sel *goquery.Selection
}

func (e *htmlElement) Tag() string { return goquery.NodeName(e.sel) }

func (e *htmlElement) Attr(name string) (string, bool) { return e.sel.Attr(name) }

func (e *htmlElement) Text() string { return strings.TrimSpace(e.sel.Text()) }

func (e *htmlElement) Value() string {
	switch e.Tag() {
	case "textarea":
		return e.sel.Text()
	case "select":
		opt := e.sel.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = e.sel.Find("option").First()
		}
		if opt.Length() == 0 {
			return ""
		}
		return optionValue(opt)
	default:
		return e.sel.AttrOr("value", "")
	}
}

func (e *htmlElement) Options() []Option {
	if e.Tag() != "select" {
		return nil
	}
	var opts []Option
	e.sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		opts = append(opts, Option{Value: optionValue(opt), Text: strings.TrimSpace(opt.Text())})
	})
	return opts
}

func (e *htmlElement) SetValue(v string) {
	switch e.Tag() {
	case "textarea":
		e.sel.SetText(v)
	case "select":
		var target *goquery.Selection
		e.sel.Find("option").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
			if optionValue(opt) == v {
				target = opt
				return false
			}
			return true
		})
		if target == nil {
			return
		}
		e.sel.Find("option").RemoveAttr("selected")
		target.SetAttr("selected", "selected")
	default:
		e.sel.SetAttr("value", v)
	}
}

func (e *htmlElement) Dispatch(eventType string) {
	e.doc.events = append(e.doc.events, Event{Type: eventType, Target: e.describe()})
}

func (e *htmlElement) Closest(selector string) Element {
	return e.doc.wrap(e.sel.Closest(selector))
}

func (e *htmlElement) Find(selector string) []Element {
	return e.doc.all(e.sel.Find(selector))
}

func (e *htmlElement) Same(other Element) bool {
	o, ok := other.(*htmlElement)
	if !ok || o == nil {
		return false
	}
	return e.sel.Get(0) == o.sel.Get(0)
}

func (e *htmlElement) describe() string {
	if id, ok := e.sel.Attr("id"); ok && id != "" {
		return IDSelector(id)
	}
	if name, ok := e.sel.Attr("name"); ok && name != "" {
		return NameSelector(name)
	}
	return e.Tag()
}

// optionValue follows the HTML rule that an option without a value attribute uses its text.
func optionValue(opt *goquery.Selection) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return strings.Join(strings.Fields(opt.Text()), " ")
}
