// Package wiktextract decodes wiktextract/Kaikki JSONL records and pulls out
// the translation references used for bridging.
// Pure functions: bytes in, structs out. No database dependencies.
package wiktextract

import "encoding/json"

// Record mirrors one wiktextract JSONL line (only fields we need).
type Record struct {
	Word         string        `json:"word"`
	LangCode     string        `json:"lang_code"`
	Lang         string        `json:"lang"`
	POS          string        `json:"pos"`
	Translations []Translation `json:"translations"`
	Senses       []Sense       `json:"senses"`
}

// Sense mirrors one sense of a record. Kaikki dumps place many
// translation tables here instead of at the top level.
type Sense struct {
	Translations []Translation `json:"translations"`
}

// Translation mirrors a translation reference. Word is kept raw because
// dumps carry it either as a string or as a list of strings.
type Translation struct {
	Code string          `json:"code"`
	Lang string          `json:"lang"`
	Word json.RawMessage `json:"word"`
}

// Anomaly describes a translation reference whose word payload had an
// unexpected shape and was skipped.
type Anomaly struct {
	Lang    string
	Payload string
}
