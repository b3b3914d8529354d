package wiktextract

import "strings"

// Verdict is the outcome of running a record through Filter.
type Verdict int

const (
	// Skip marks a record of another language. It is neither an error nor a match.
	Skip Verdict = iota
	// Accept marks a bridge-language record with a usable headword.
	Accept
	// MissingHeadword marks a bridge-language record without a headword.
	MissingHeadword
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case MissingHeadword:
		return "missing_headword"
	default:
		return "skip"
	}
}

// Filter selects entries of the bridge language.
type Filter struct {
	Lang string
}

// Check classifies rec.
func (f Filter) Check(rec *Record) Verdict {
	if rec.LangCode != f.Lang {
		return Skip
	}
	if strings.TrimSpace(rec.Word) == "" {
		return MissingHeadword
	}
	return Accept
}
