package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMaxBytes bounds untrusted quiz documents.
const DefaultMaxBytes int64 = 1 << 20

var (
	ErrUnsupportedFormat = errors.New("unsupported quiz file format")
	ErrPayloadTooLarge   = errors.New("quiz document exceeds size limit")
	ErrMalformedDocument = errors.New("quiz document is malformed")
)

// Format is the encoding of a quiz document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromFilename picks the format from a file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// FormatFromContentType maps an HTTP content type, defaulting to JSON.
func FormatFromContentType(ct string) Format {
	ct = strings.ToLower(ct)
	if strings.Contains(ct, "yaml") || strings.Contains(ct, "yml") {
		return FormatYAML
	}
	return FormatJSON
}

// LoadFile reads, size-checks and sanitizes a quiz document from disk.
func LoadFile(path string, maxBytes int64) (*Quiz, error) {
	format, err := FormatFromFilename(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open quiz file: %w", err)
	}
	defer f.Close()
	return LoadReader(f, format, maxBytes)
}

// LoadReader reads at most maxBytes from r and sanitizes the result.
func LoadReader(r io.Reader, format Format, maxBytes int64) (*Quiz, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read quiz document: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrPayloadTooLarge, maxBytes)
	}
	return Load(data, format)
}

// Load decodes an untrusted document and coerces it into a Quiz. Fields of
// the wrong type are defaulted rather than rejected, so the validator can
// report on the result. Only undecodable input returns an error.
func Load(data []byte, format Format) (*Quiz, error) {
	var raw any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		raw = normalizeYAML(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level must be an object", ErrMalformedDocument)
	}
	return Sanitize(doc), nil
}

// Sanitize converts a decoded document tree into a Quiz.
func Sanitize(doc map[string]any) *Quiz {
	q := &Quiz{
		Title:          strings.TrimSpace(str(doc["quizTitle"])),
		Sections:       []Section{},
		ResultMessages: map[string]any{},
	}
	for _, item := range list(doc["sections"]) {
		if m, ok := item.(map[string]any); ok {
			q.Sections = append(q.Sections, sanitizeSection(m))
		}
	}
	if messages, ok := doc["resultMessages"].(map[string]any); ok {
		q.ResultMessages = messages
	}
	return q
}

func sanitizeSection(m map[string]any) Section {
	s := Section{
		ID:        str(m["id"]),
		Slug:      str(m["slug"]),
		Title:     strings.TrimSpace(str(m["title"])),
		Questions: []Question{},
	}
	for _, item := range list(m["questions"]) {
		if qm, ok := item.(map[string]any); ok {
			s.Questions = append(s.Questions, sanitizeQuestion(qm))
		}
	}
	return s
}

func sanitizeQuestion(m map[string]any) Question {
	q := Question{
		ID:   str(m["id"]),
		Text: strings.TrimSpace(str(m["text"])),
		Type: QuestionType(str(m["type"])),
	}
	if !q.Type.Valid() {
		q.Type = SingleChoice
	}

	if q.Type == TextInput {
		q.Placeholder = strings.TrimSpace(str(m["placeholder"]))
		return q
	}

	if raw, ok := m["options"].([]any); ok {
		q.Options = []Option{}
		for _, item := range raw {
			om, ok := item.(map[string]any)
			if !ok {
				continue
			}
			q.Options = append(q.Options, Option{
				ID:    str(om["id"]),
				Text:  strings.TrimSpace(str(om["text"])),
				Value: str(om["value"]),
			})
		}
	}
	if routing, ok := m["routing"].(map[string]any); ok {
		q.Routing = make(map[string]Route, len(routing))
		for optionID, raw := range routing {
			// non-object entries keep an empty type so the validator flags them
			rm, _ := raw.(map[string]any)
			q.Routing[optionID] = Route{
				Type:   RouteType(str(rm["type"])),
				Target: str(rm["target"]),
			}
		}
	}
	return q
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

// normalizeYAML turns map[any]any nodes into map[string]any.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalizeYAML(t[i])
		}
		return t
	default:
		return v
	}
}

// Marshal renders the canonical indented JSON export of q.
func Marshal(q *Quiz) ([]byte, error) {
	if q == nil {
		return nil, ErrNilQuiz
	}
	out := *q
	if out.Sections == nil {
		out.Sections = []Section{}
	}
	if out.ResultMessages == nil {
		out.ResultMessages = map[string]any{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal quiz: %w", err)
	}
	return data, nil
}
