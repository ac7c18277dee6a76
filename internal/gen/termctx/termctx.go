// Package termctx derives local morphological context for a term so the
// generation prompt is grounded in the term's actual reading and parts of
// speech, not just its surface form.
package termctx

import (
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Token is one analyzed segment of a term.
type Token struct {
	Surface string
	Reading string
	Lemma   string
	POS     string
}

// Builder tokenizes terms with the IPA dictionary.
type Builder struct {
	t *tokenizer.Tokenizer
}

// New loads the dictionary and builds a tokenizer.
func New() (*Builder, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("init tokenizer: %w", err)
	}
	return &Builder{t: t}, nil
}

// Tokens analyzes a term into surface/reading/lemma/POS tuples.
func (b *Builder) Tokens(term string) []Token {
	var out []Token
	for _, tok := range b.t.Tokenize(term) {
		if tok.Class == tokenizer.DUMMY {
			continue
		}
		features := tok.Features()

		// IPA feature layout: 0 POS, 6 base form, 7 reading (katakana).
		t := Token{Surface: tok.Surface}
		if len(features) > 0 {
			t.POS = features[0]
		}
		if len(features) > 6 && features[6] != "*" {
			t.Lemma = features[6]
		}
		if len(features) > 7 && features[7] != "*" {
			t.Reading = features[7]
		}
		out = append(out, t)
	}
	return out
}

// Describe renders the analysis as compact prompt lines, one per token, or
// "" when the term yields nothing useful.
func (b *Builder) Describe(term string) string {
	tokens := b.Tokens(strings.TrimSpace(term))
	if len(tokens) == 0 {
		return ""
	}

	var lines []string
	for _, t := range tokens {
		parts := []string{t.Surface}
		if t.Reading != "" {
			parts = append(parts, "reading="+t.Reading)
		}
		if t.Lemma != "" && t.Lemma != t.Surface {
			parts = append(parts, "lemma="+t.Lemma)
		}
		if t.POS != "" {
			parts = append(parts, "pos="+t.POS)
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}
