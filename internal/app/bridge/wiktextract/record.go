package wiktextract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedRecord is returned by Decode for lines that are not a JSON object.
var ErrMalformedRecord = errors.New("malformed record")

// Decode parses one JSONL line into a Record.
//
// Only a line that is not a JSON object fails. Inside the object, a field of
// the wrong type decodes as empty and a list element of the wrong shape is
// dropped, so one odd translation reference never costs the rest of the entry.
func Decode(line []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return rec, nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Word         json.RawMessage `json:"word"`
		LangCode     json.RawMessage `json:"lang_code"`
		Lang         json.RawMessage `json:"lang"`
		POS          json.RawMessage `json:"pos"`
		Translations json.RawMessage `json:"translations"`
		Senses       json.RawMessage `json:"senses"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Record{
		Word:     stringField(raw.Word),
		LangCode: stringField(raw.LangCode),
		Lang:     stringField(raw.Lang),
		POS:      stringField(raw.POS),
	}
	r.Translations = listField[Translation](raw.Translations)
	r.Senses = listField[Sense](raw.Senses)
	return nil
}

func (s *Sense) UnmarshalJSON(data []byte) error {
	var raw struct {
		Translations json.RawMessage `json:"translations"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Sense{Translations: listField[Translation](raw.Translations)}
	return nil
}

func (t *Translation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code json.RawMessage `json:"code"`
		Lang json.RawMessage `json:"lang"`
		Word json.RawMessage `json:"word"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Translation{
		Code: stringField(raw.Code),
		Lang: stringField(raw.Lang),
		Word: raw.Word,
	}
	return nil
}

// stringField returns raw as a string, or "" when raw is absent or not a string.
func stringField(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// listField decodes the elements of a JSON array one by one, dropping those
// that are not objects. Anything other than an array yields nil.
func listField[T any](raw json.RawMessage) []T {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	var out []T
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
