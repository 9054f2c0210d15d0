package types

// ExtractResumeRequest asks the backend to build a profile from a resume file.
type ExtractResumeRequest struct {
	FileName string `json:"fileName" validate:"required"`
	FileData string `json:"fileData" validate:"required"`
	FileType string `json:"fileType"`
}

// ExtractResumeResponse mirrors the extension's expected payload.
type ExtractResumeResponse struct {
	Success       bool    `json:"success"`
	ExtractedData Profile `json:"extractedData"`
	Error         string  `json:"error,omitempty"`
}

// PageSummary is the page-level part of PageContext sent with auto-fill requests.
type PageSummary struct {
	Title           string `json:"title,omitempty"`
	URL             string `json:"url,omitempty"`
	FormTitle       string `json:"formTitle,omitempty"`
	FormDescription string `json:"formDescription,omitempty"`
}

// AutoFillRequest asks the collaborator for an enriched profile.
type AutoFillRequest struct {
	UserData    Profile           `json:"userData"`
	PageFields  []FieldDescriptor `json:"pageFields" validate:"dive"`
	PageContext *PageSummary      `json:"pageContext,omitempty"`
	ResumeData  *ResumeFile       `json:"resumeData,omitempty"`
}

// AutoFillResponse carries the overlaid profile.
type AutoFillResponse struct {
	Success    bool    `json:"success"`
	FilledData Profile `json:"filledData"`
	Error      string  `json:"error,omitempty"`
}

// Validate validates the ExtractResumeRequest.
func (r *ExtractResumeRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the AutoFillRequest.
func (r *AutoFillRequest) Validate() error {
	return validate.Struct(r)
}

// Summary returns the page-level part of a PageContext.
func (c PageContext) Summary() *PageSummary {
	return &PageSummary{
		Title:           c.Title,
		URL:             c.URL,
		FormTitle:       c.FormTitle,
		FormDescription: c.FormDescription,
	}
}
