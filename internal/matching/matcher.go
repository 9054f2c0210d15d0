// Package matching decides which profile attribute applies to each extracted field
// and writes the resolved values into the document.
package matching

import (
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/jonathan/form-autofill/internal/dom"
	"github.com/jonathan/form-autofill/internal/types"
)

// Matcher resolves field descriptors against a profile using a keyword table
// and a normalized fuzzy fallback over the profile's own keys.
type Matcher struct {
	keywords []KeywordRule
	verbose  bool
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithKeywords replaces the keyword table. Order is significant: first hit wins.
func WithKeywords(rules []KeywordRule) Option {
	return func(m *Matcher) {
		m.keywords = rules
	}
}

// WithVerbose logs every per-field decision.
func WithVerbose(verbose bool) Option {
	return func(m *Matcher) {
		m.verbose = verbose
	}
}

// New creates a Matcher using DefaultKeywords.
func New(opts ...Option) *Matcher {
	m := &Matcher{keywords: DefaultKeywords}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type identifier struct {
	source string
	value  string
}

// Match returns the profile attribute and value for field, or types.NoMatch.
// Identifiers are tried in the order name, id, placeholder, label and the first
// one that resolves to a non-empty string value wins.
func (m *Matcher) Match(field types.FieldDescriptor, profile types.Profile) types.MatchResult {
	for _, ident := range identifiers(field) {
		if attribute, value, ok := m.resolve(ident.value, profile); ok {
			return types.MatchResult{
				Matched:   true,
				Attribute: attribute,
				Value:     value,
				Source:    ident.source,
			}
		}
	}
	return types.NoMatch
}

func identifiers(field types.FieldDescriptor) []identifier {
	candidates := []identifier{
		{types.SourceName, field.Name},
		{types.SourceID, field.ID},
		{types.SourcePlaceholder, field.Placeholder},
		{types.SourceLabel, field.Label},
	}
	out := candidates[:0]
	for _, c := range candidates {
		c.value = strings.ToLower(c.value)
		if strings.TrimSpace(c.value) != "" {
			out = append(out, c)
		}
	}
	return out
}

// resolve applies the keyword table and then the fuzzy fallback to one identifier.
// A keyword hit decides the attribute for this identifier: when the profile has no
// usable value for it, the identifier yields nothing and fuzzy matching is not tried.
func (m *Matcher) resolve(ident string, profile types.Profile) (string, string, bool) {
	for _, rule := range m.keywords {
		if strings.Contains(ident, rule.Pattern) {
			value, ok := usable(profile, rule.Attribute)
			return rule.Attribute, value, ok
		}
	}

	normalizedIdent := Normalize(ident)
	if normalizedIdent == "" {
		return "", "", false
	}
	// The first string-valued key containing or contained in the identifier
	// decides it, even when its value is empty.
	for _, key := range profile.Keys() {
		value, ok := profile.String(key)
		if !ok {
			continue
		}
		normalizedKey := Normalize(key)
		if normalizedKey == "" {
			continue
		}
		if strings.Contains(normalizedIdent, normalizedKey) || strings.Contains(normalizedKey, normalizedIdent) {
			return key, value, value != ""
		}
	}
	return "", "", false
}

// usable returns the attribute's value when it is a non-empty string.
// Numbers, booleans and nested values never participate in matching.
func usable(profile types.Profile, key string) (string, bool) {
	value, ok := profile.String(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Normalize lower-cases s and strips every character that is not an ASCII letter or digit.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fill matches every descriptor against profile and writes the resolved values.
// Fields without a match are left untouched and reported, never treated as errors.
// The only error is an unavailable document.
func (m *Matcher) Fill(doc dom.Document, fields []types.FieldDescriptor, profile types.Profile) (types.FillOutcome, error) {
	var outcome types.FillOutcome
	if doc == nil {
		return outcome, fmt.Errorf("document is not available")
	}

	for _, field := range fields {
		outcome.Add(m.fillField(doc, field, profile))
	}

	if m.verbose {
		log.Printf("[FILL] %d filled, %d skipped", outcome.Filled, outcome.Skipped)
	}
	return outcome, nil
}

func (m *Matcher) fillField(doc dom.Document, field types.FieldDescriptor, profile types.Profile) types.FieldOutcome {
	result := types.FieldOutcome{Selector: field.Selector, Kind: field.Kind, Status: types.StatusNoMatch}

	match := m.Match(field, profile)
	if !match.Matched {
		if m.verbose {
			log.Printf("[FILL] %s: no match", field.Selector)
		}
		return result
	}
	result.Attribute = match.Attribute
	result.Value = match.Value

	if field.Kind == "file" {
		result.Status = types.StatusUnwritable
		return result
	}

	// Selectors without id or name resolve to the first element with that tag.
	el := doc.Query(field.Selector)
	if el == nil {
		result.Status = types.StatusNotFound
		return result
	}

	result.Status = Write(el, match.Value)
	if m.verbose {
		log.Printf("[FILL] %s <- %s via %s (%s)", field.Selector, match.Attribute, match.Source, result.Status)
	}
	return result
}

// Write applies value to a control. Select lists take the first option whose value
// or display text equals value case-insensitively and are left unchanged when none does.
// Other controls always receive the value followed by input and change notifications,
// even when the value is unchanged.
func Write(el dom.Element, value string) types.FieldStatus {
	if el.Tag() == "select" {
		for _, opt := range el.Options() {
			if strings.EqualFold(opt.Value, value) || strings.EqualFold(opt.Text, value) {
				el.SetValue(opt.Value)
				return types.StatusFilled
			}
		}
		return types.StatusNoOption
	}

	el.SetValue(value)
	el.Dispatch("input")
	el.Dispatch("change")
	return types.StatusFilled
}
