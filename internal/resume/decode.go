// Package resume turns uploaded resume files into plain text for the enrichment prompt.
package resume

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/microcosm-cc/bluemonday"
)

// MaxPromptChars bounds how much resume text is sent to the collaborator.
const MaxPromptChars = 8000

var htmlPolicy = bluemonday.StrictPolicy()

// Decode converts base64 file data into plain text according to its media type.
// When the declared type is empty or generic the type is sniffed from the bytes.
// Unsupported types yield "" and no error: the caller treats that as no resume content.
func Decode(fileData, mediaType string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(fileData))
	if err != nil {
		return "", &DecodeError{Message: "file data is not valid base64", Cause: err}
	}
	return DecodeBytes(data, mediaType)
}

// DecodeBytes is Decode over raw file bytes.
func DecodeBytes(data []byte, mediaType string) (string, error) {
	kind := baseType(mediaType)
	if kind == "" || kind == "application/octet-stream" {
		kind = baseType(mimetype.Detect(data).String())
	}

	switch kind {
	case "text/plain", "text/markdown", "text/x-markdown":
		return strings.TrimSpace(string(bytes.ToValidUTF8(data, nil))), nil
	case "text/html":
		return htmlText(data), nil
	case "application/pdf":
		return pdfText(data)
	default:
		return "", nil
	}
}

// Truncate cuts text to at most n runes.
func Truncate(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

func baseType(mediaType string) string {
	if mediaType == "" {
		return ""
	}
	kind, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mediaType))
	}
	return kind
}

func htmlText(data []byte) string {
	stripped := htmlPolicy.SanitizeBytes(data)
	return strings.Join(strings.Fields(html.UnescapeString(string(stripped))), " ")
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &DecodeError{Message: "failed to open PDF", Cause: err}
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", &DecodeError{Message: "failed to extract PDF text", Cause: err}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", &DecodeError{Message: "failed to read PDF text", Cause: err}
	}
	return strings.TrimSpace(buf.String()), nil
}

// DecodeError reports a resume that could not be read.
type DecodeError struct {
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resume decode error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("resume decode error: %s", e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
