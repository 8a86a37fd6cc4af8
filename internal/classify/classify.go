// Package classify decides what kind of payload a portal returned before any
// extraction work happens: a PDF, a JSON API response carrying the decision
// text, an HTML page, or nothing usable.
package classify

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind is the payload classification.
type Kind int

const (
	Unknown Kind = iota
	PDF
	JSONAPI
	HTML
)

func (k Kind) String() string {
	switch k {
	case PDF:
		return "pdf"
	case JSONAPI:
		return "json-api"
	case HTML:
		return "html"
	default:
		return "unknown"
	}
}

// Result carries the classification and, for JSON API payloads, the decision
// text found in the response together with the field it came from.
type Result struct {
	Kind  Kind
	Text  string
	Field string
}

// jsonTextFields are the field names portals use for the decision body,
// tried in priority order. An explicit table, not reflection: the first
// present non-empty string wins.
var jsonTextFields = []string{"content", "text", "karar", "icerik", "markdown_content"}

// minJSONTextLen is the floor below which a JSON field is judged to be a
// status message rather than a decision body.
const minJSONTextLen = 200

var pdfMagic = []byte("%PDF-")

// Classify inspects the content-type header and body. It is total: any
// (contentType, body) pair maps to one of the four kinds without panicking.
func Classify(contentType string, body []byte) Result {
	ct := strings.ToLower(strings.TrimSpace(contentType))

	if strings.Contains(ct, "pdf") || bytes.HasPrefix(body, pdfMagic) {
		return Result{Kind: PDF}
	}

	if strings.Contains(ct, "json") {
		if text, field, ok := decisionTextFromJSON(body); ok {
			return Result{Kind: JSONAPI, Text: text, Field: field}
		}
	}

	if len(bytes.TrimSpace(body)) == 0 || looksBinary(body) {
		return Result{Kind: Unknown}
	}
	return Result{Kind: HTML}
}

func decisionTextFromJSON(body []byte) (string, string, bool) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", "", false
	}
	for _, field := range jsonTextFields {
		v, ok := payload[field]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if len(strings.TrimSpace(s)) >= minJSONTextLen {
			return s, field, true
		}
	}
	return "", "", false
}

// looksBinary reports whether the body prefix contains NUL bytes, which
// rules out HTML parsing. Legacy portals still serve ISO-8859-9 pages, so
// invalid UTF-8 alone is not treated as binary.
func looksBinary(body []byte) bool {
	probe := body
	if len(probe) > 512 {
		probe = probe[:512]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
