// Package gen calls the external generation service and parses its reply
// into the corpus entry schema. One outbound call per invocation; no
// retries, no caching.
package gen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ayatake/lexinote/internal/model"
)

const recordToolName = "record_analysis"

// entrySchema is derived once from the entry struct.
var entrySchema = generateSchema[model.CorpusEntry]()

// ContextBuilder supplies locally computed context about a term for the
// prompt. An empty string means no context is available.
type ContextBuilder interface {
	Describe(term string) string
}

// Config holds generation settings.
type Config struct {
	Model     string
	MaxTokens int64
}

// Client issues analysis requests against the Anthropic API.
type Client struct {
	model     anthropic.Model
	maxTokens int64
	termCtx   ContextBuilder
	opts      []option.RequestOption
}

// New returns a client. termCtx may be nil. Extra request options are
// appended to every call (tests use them to point at a local server).
func New(cfg Config, termCtx ContextBuilder, opts ...option.RequestOption) *Client {
	return &Client{
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
		termCtx:   termCtx,
		opts:      opts,
	}
}

// Generate analyzes one term. It fails with CredentialError when the
// credential is empty or rejected, and with ResponseFormatError when the
// reply cannot be parsed into the entry schema.
func (c *Client) Generate(ctx context.Context, term, credential string) (model.CorpusEntry, error) {
	if strings.TrimSpace(credential) == "" {
		return model.CorpusEntry{}, &CredentialError{Reason: "no credential configured"}
	}

	var local string
	if c.termCtx != nil {
		local = c.termCtx.Describe(term)
	}

	opts := append([]option.RequestOption{option.WithAPIKey(credential)}, c.opts...)
	client := anthropic.NewClient(opts...)

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(term, local))),
		},
		Tools: []anthropic.ToolUnionParam{{OfTool: &anthropic.ToolParam{
			Name:        recordToolName,
			Description: anthropic.String("Record the structured linguistic analysis of the term."),
			InputSchema: entrySchema,
		}}},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: recordToolName},
		},
	})
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			if apierr.StatusCode == http.StatusUnauthorized || apierr.StatusCode == http.StatusForbidden {
				return model.CorpusEntry{}, &CredentialError{Reason: "rejected by the service", Err: err}
			}
		}
		return model.CorpusEntry{}, fmt.Errorf("generation request for %q: %w", term, err)
	}

	return entryFromMessage(term, msg)
}

// buildPrompt creates the analysis prompt for a single term.
func buildPrompt(term, localCtx string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a lexicographer helping game and software localizers.

Analyze the term %q and record the result with the %s tool.

Guidelines:
- meaning: one or two plain sentences explaining the term
- paraphrases: 2-4 groups, each a register/style category with alternative wordings
- localization_memo: practical notes for translators (nuance, politeness, pitfalls)
- examples: 2-3 natural sentences using the term
- tags: up to 5 short topical tags
Keep lists in the language of the term itself; memos may mix languages where useful.`,
		term, recordToolName)

	if localCtx != "" {
		fmt.Fprintf(&b, "\n\nMorphological context from a local tokenizer:\n%s", localCtx)
	}
	return b.String()
}

// entryFromMessage extracts the entry from a service reply. The forced tool
// call is the normal path; plain-text replies with embedded JSON are
// accepted as a fallback.
func entryFromMessage(term string, msg *anthropic.Message) (model.CorpusEntry, error) {
	var text strings.Builder
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.ToolUseBlock:
			return entryFromJSON(term, []byte(v.JSON.Input.Raw()))
		case anthropic.TextBlock:
			text.WriteString(v.Text)
		}
	}

	raw, err := extractJSON(text.String())
	if err != nil {
		return model.CorpusEntry{}, &ResponseFormatError{Reason: "no structured analysis in reply", Err: err}
	}
	return entryFromJSON(term, []byte(raw))
}

// entryFromJSON decodes and minimally validates a candidate entry.
func entryFromJSON(term string, raw []byte) (model.CorpusEntry, error) {
	var e model.CorpusEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return model.CorpusEntry{}, &ResponseFormatError{Reason: "reply does not match the entry schema", Err: err}
	}
	if e.Meaning == "" {
		return model.CorpusEntry{}, &ResponseFormatError{Reason: "reply is missing a meaning"}
	}
	if e.Term == "" {
		e.Term = term
	}
	return e, nil
}

// extractJSON finds the first complete JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found")
	}
	out := s[start : end+1]
	if !json.Valid([]byte(out)) {
		return "", fmt.Errorf("embedded JSON is invalid")
	}
	return out, nil
}
