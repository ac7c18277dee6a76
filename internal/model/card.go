// Package model defines the corpus data types.
package model

import (
	"encoding/json"

	"github.com/oklog/ulid/v2"
)

// NewID returns a fresh card id. ULIDs are unique and sort by creation time.
func NewID() string {
	return ulid.Make().String()
}

// CorpusEntry is one structured analysis of a term as returned by the
// generation service. Entries are immutable once created.
type CorpusEntry struct {
	Term             string       `json:"term" jsonschema_description:"The analyzed term, exactly as given."`
	Meaning          string       `json:"meaning" jsonschema_description:"Concise explanation of what the term means."`
	Paraphrases      []Paraphrase `json:"paraphrases" jsonschema_description:"Paraphrase groups, ordered from most to least common register."`
	LocalizationMemo []string     `json:"localization_memo" jsonschema_description:"Free-text notes for translators: nuance, register, pitfalls."`
	Examples         []string     `json:"examples" jsonschema_description:"Natural example sentences using the term."`
	Tags             []string     `json:"tags" jsonschema_description:"Short topical tags for the term."`
}

// Paraphrase groups alternative wordings under a named category.
type Paraphrase struct {
	Category string   `json:"category" jsonschema_description:"Register or style of this group, e.g. formal, casual, slang."`
	Words    []string `json:"words" jsonschema_description:"Alternative wordings in this category."`
}

// CorpusCard is a CorpusEntry with local identity. ID is the identity key;
// CreatedAt is epoch milliseconds.
type CorpusCard struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
	CorpusEntry
}

// RawCard is an import candidate before validation. Nil or non-object
// elements parse to an empty map and fail the shape check.
type RawCard map[string]any

// ID returns the candidate's id field, or "" when absent or not a string.
func (r RawCard) ID() string {
	s, _ := r["id"].(string)
	return s
}

// HasRequiredFields reports whether the candidate carries non-empty term
// and meaning fields, the minimal shape accepted by an import merge.
func (r RawCard) HasRequiredFields() bool {
	term, _ := r["term"].(string)
	meaning, _ := r["meaning"].(string)
	return term != "" && meaning != ""
}

// Card converts the candidate into a CorpusCard by re-encoding through
// JSON. Unknown fields are dropped; missing optional fields stay zero.
func (r RawCard) Card() (CorpusCard, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return CorpusCard{}, err
	}
	var c CorpusCard
	if err := json.Unmarshal(b, &c); err != nil {
		return CorpusCard{}, err
	}
	return c, nil
}
