// Package textextract flattens a content-unit payload into the canonical plain-text
// view shared by the braille and story handlers.
package textextract

import (
	"encoding/json"
	"strconv"
	"strings"
)

type record = map[string]any

// Extract renders title, introduction, concepts, summary, quick checks and practice
// questions in that order, one part per line, skipping empty fields.
// Payloads that are not JSON objects are returned as text.
func Extract(payload []byte) string {
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return string(payload)
	}
	obj, ok := v.(record)
	if !ok {
		switch t := v.(type) {
		case nil:
			return ""
		case string:
			return t
		default:
			return scalar(t)
		}
	}
	return ExtractRecord(obj)
}

// ExtractAll concatenates several payloads with a blank line between units.
func ExtractAll(payloads [][]byte) string {
	parts := make([]string, 0, len(payloads))
	for _, p := range payloads {
		parts = append(parts, Extract(p))
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

func ExtractRecord(payload record) string {
	var parts []string
	add := func(prefix string, v any) {
		if s, ok := text(v); ok {
			parts = append(parts, prefix+s)
		}
	}

	meta := asRecord(payload["meta"])
	content := asRecord(payload["content"])
	practice := asRecord(payload["practice"])

	add("", meta["title"])
	add("", content["introduction"])

	for _, c := range asList(content["coreConcepts"]) {
		concept, ok := c.(record)
		if !ok {
			continue
		}
		add("", concept["conceptTitle"])
		add("", concept["explanation"])
		add("Example: ", concept["example"])
		add("Diagram: ", concept["diagramDescription"])
	}

	if summary := asList(content["summary"]); len(summary) > 0 {
		parts = append(parts, "Summary:")
		for _, p := range summary {
			add("", p)
		}
	}

	if checks := asList(content["quickCheckQuestions"]); len(checks) > 0 {
		parts = append(parts, "Quick check questions:")
		for _, q := range checks {
			qr, ok := q.(record)
			if !ok {
				continue
			}
			add("Question: ", qr["question"])
			add("Answer: ", qr["answer"])
		}
	}

	if questions := asList(practice["questions"]); len(questions) > 0 {
		parts = append(parts, "Questions:")
		for _, q := range questions {
			qr, ok := q.(record)
			if !ok {
				continue
			}
			add("", qr["question"])
			if opts := asList(qr["options"]); len(opts) > 0 {
				rendered := make([]string, 0, len(opts))
				for _, o := range opts {
					rendered = append(rendered, scalar(o))
				}
				parts = append(parts, "Options: "+strings.Join(rendered, ", "))
			}
			switch a := qr["correctAnswer"].(type) {
			case string:
				parts = append(parts, "Answer: "+a)
			case float64:
				parts = append(parts, "Answer: "+scalar(a))
			}
			add("Explanation: ", qr["explanation"])
		}
	}

	return strings.Join(parts, "\n")
}

func text(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func asRecord(v any) record {
	if r, ok := v.(record); ok {
		return r
	}
	return record{}
}

func asList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}
