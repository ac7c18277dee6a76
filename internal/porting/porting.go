// Package porting serializes the history to portable files and parses
// uploaded files back into import candidates. Per-record validation belongs
// to the history store; this layer only checks the top-level shape.
package porting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayatake/lexinote/internal/model"
)

// DefaultBasename is the filename prefix for exports.
const DefaultBasename = "lexinote"

// ImportFormatError reports a file whose top-level value is not a JSON
// array. The user recovers by reselecting a file.
type ImportFormatError struct {
	Err error
}

func (e *ImportFormatError) Error() string {
	return fmt.Sprintf("import file is not a JSON array: %v", e.Err)
}

func (e *ImportFormatError) Unwrap() error { return e.Err }

// Export serializes the full history as pretty-printed JSON.
func Export(cards []model.CorpusCard) ([]byte, error) {
	if cards == nil {
		cards = []model.CorpusCard{}
	}
	b, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return b, nil
}

// Filename returns the export filename for the given day. The embedded date
// avoids silent overwrite across days, not within a day.
func Filename(basename string, t time.Time) string {
	if basename == "" {
		basename = DefaultBasename
	}
	return fmt.Sprintf("%s_%s.json", basename, t.Format("2006-01-02"))
}

// Parse decodes an uploaded file into raw candidates. It fails with
// ImportFormatError when the top-level value is not an array; elements of
// the wrong shape are passed through as empty records for the merge to skip.
func Parse(data []byte) ([]model.RawCard, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ImportFormatError{Err: fmt.Errorf("top-level value is not an array")}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, &ImportFormatError{Err: err}
	}

	candidates := make([]model.RawCard, 0, len(elems))
	for _, e := range elems {
		var r model.RawCard
		// Non-object elements decode to nil and fail the shape check later.
		_ = json.Unmarshal(e, &r)
		candidates = append(candidates, r)
	}
	return candidates, nil
}
