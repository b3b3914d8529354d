package wiktextract

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// maxPayloadLen bounds the payload snippet kept in an Anomaly.
const maxPayloadLen = 120

// Extract collects the words of every translation reference in rec whose code
// equals lang. Top-level translations come first, then sense-level ones when
// withSenses is set. Words are trimmed, empty ones dropped, and duplicates
// removed in order of first occurrence.
//
// References whose payload is neither a string nor a list are reported as
// anomalies and contribute no words.
func Extract(rec *Record, lang string, withSenses bool) ([]string, []Anomaly) {
	var (
		words     []string
		anomalies []Anomaly
	)

	collect := func(trs []Translation) {
		for i := range trs {
			if trs[i].Code != lang {
				continue
			}
			got, ok := wordsFromPayload(trs[i].Word)
			if !ok {
				anomalies = append(anomalies, Anomaly{Lang: lang, Payload: snippet(trs[i].Word)})
				continue
			}
			words = append(words, got...)
		}
	}

	collect(rec.Translations)
	if withSenses {
		for i := range rec.Senses {
			collect(rec.Senses[i].Translations)
		}
	}

	return DeduplicateStrings(words), anomalies
}

// wordsFromPayload normalizes a raw "word" payload. An absent or null payload
// yields no words and is not an anomaly. Non-string list items are ignored.
func wordsFromPayload(raw json.RawMessage) ([]string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, true
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		if s = strings.TrimSpace(s); s != "" {
			return []string{s}, true
		}
		return nil, true
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false
		}
		var out []string
		for _, item := range items {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func snippet(raw json.RawMessage) string {
	s := string(raw)
	if len(s) <= maxPayloadLen {
		return s
	}
	cut := maxPayloadLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

// DeduplicateStrings returns a new slice with duplicate strings removed,
// preserving the order of first occurrence. Returns nil for nil input.
func DeduplicateStrings(ss []string) []string {
	if ss == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(ss))
	result := make([]string, 0, len(ss))

	for _, s := range ss {
		if _, exists := seen[s]; exists {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}

	return result
}
