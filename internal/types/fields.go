// Package types provides the data shapes shared by the extractor, matcher, enrichment and transport layers.
package types

// FieldDescriptor is a snapshot of one fillable control taken at extraction time.
// It does not follow later changes to the page.
type FieldDescriptor struct {
	Kind        string `json:"type"`
	Name        string `json:"name,omitempty"`
	ID          string `json:"id,omitempty"`
	Label       string `json:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Context     string `json:"context,omitempty"`
	Required    bool   `json:"required,omitempty"`
	// Selector re-finds the control: "#id", then `[name="..."]`, then the bare tag name.
	// The tag-name form is not unique; writers target its first match.
	Selector string `json:"selector"`
	Value    string `json:"value,omitempty"`
}

// PageContext carries page-level signals alongside the extracted fields.
type PageContext struct {
	Title           string            `json:"title"`
	URL             string            `json:"url"`
	FormTitle       string            `json:"formTitle,omitempty"`
	FormDescription string            `json:"formDescription,omitempty"`
	Fields          []FieldDescriptor `json:"fields"`
}

// Identifier sources, in the order the matcher tries them.
const (
	SourceName        = "name"
	SourceID          = "id"
	SourcePlaceholder = "placeholder"
	SourceLabel       = "label"
)

// MatchResult is the matcher's decision for one field. The zero value is NoMatch.
type MatchResult struct {
	Matched   bool   `json:"matched"`
	Attribute string `json:"attribute,omitempty"`
	Value     string `json:"value,omitempty"`
	Source    string `json:"source,omitempty"`
}

// NoMatch is returned when no profile attribute applies to a field.
var NoMatch = MatchResult{}

// FieldStatus describes what happened to one field during a fill pass.
type FieldStatus string

const (
	StatusFilled FieldStatus = "filled"
	// StatusNoMatch means no profile attribute applied; the control was left untouched.
	StatusNoMatch FieldStatus = "no_match"
	// StatusNoOption means a select list had no option equal to the resolved value.
	StatusNoOption FieldStatus = "select_no_option"
	// StatusNotFound means the selector no longer resolves in the document.
	StatusNotFound FieldStatus = "not_found"
	// StatusUnwritable covers controls whose value cannot be set by script (file inputs).
	StatusUnwritable FieldStatus = "unwritable"
)

// FieldOutcome reports the fill result for one descriptor.
type FieldOutcome struct {
	Selector  string      `json:"selector"`
	Kind      string      `json:"type"`
	Status    FieldStatus `json:"status"`
	Attribute string      `json:"attribute,omitempty"`
	Value     string      `json:"value,omitempty"`
}

// FillOutcome aggregates a fill pass. Partial success is the normal case.
type FillOutcome struct {
	Fields  []FieldOutcome `json:"fields"`
	Filled  int            `json:"filled"`
	Skipped int            `json:"skipped"`
}

// Add records a field outcome and updates the counters.
func (o *FillOutcome) Add(f FieldOutcome) {
	o.Fields = append(o.Fields, f)
	if f.Status == StatusFilled {
		o.Filled++
	} else {
		o.Skipped++
	}
}

// ResumeFile is an uploaded resume as the extension stores it.
type ResumeFile struct {
	FileName   string `json:"fileName" validate:"required"`
	FileData   string `json:"fileData" validate:"required,base64"`
	FileType   string `json:"fileType"`
	UploadedAt string `json:"uploadedAt,omitempty"`
}
