package domain

import "fmt"

// LangCode is a Wiktionary language code such as "en", "de" or "fa".
type LangCode string

// Word is the identity unit of the translation graph. The pair
// (Text, Lang) is unique in the store; Text is always normalized.
type Word struct {
	ID   int64
	Text string
	Lang LangCode
}

// WordKey identifies a word before it has an ID.
type WordKey struct {
	Text string
	Lang LangCode
}

// NewWordKey normalizes text and pairs it with lang.
func NewWordKey(text string, lang LangCode) WordKey {
	return WordKey{Text: NormalizeText(text), Lang: lang}
}

func (k WordKey) String() string {
	return fmt.Sprintf("%s:%s", k.Lang, k.Text)
}

// Edge is a directed translation link from SourceID to TargetID.
// Edges are idempotent: the same ordered pair is stored once.
type Edge struct {
	SourceID int64
	TargetID int64
}

// BridgePath names the three languages of a bridged import:
// Source -> Bridge -> Target.
type BridgePath struct {
	Source LangCode
	Bridge LangCode
	Target LangCode
}

// Validate checks that all three codes are set and pairwise distinct.
func (p BridgePath) Validate() error {
	if p.Source == "" || p.Bridge == "" || p.Target == "" {
		return fmt.Errorf("%w: source, bridge and target languages are required", ErrValidation)
	}
	if p.Source == p.Bridge || p.Bridge == p.Target || p.Source == p.Target {
		return fmt.Errorf("%w: languages must be distinct (got %s/%s/%s)", ErrValidation, p.Source, p.Bridge, p.Target)
	}
	return nil
}

func (p BridgePath) String() string {
	return fmt.Sprintf("%s->%s->%s", p.Source, p.Bridge, p.Target)
}

// StoreTotals reports row counts of the two relations.
type StoreTotals struct {
	Words int64
	Edges int64
}
