// Package session is the orchestration boundary consumed by the
// presentation layer. It owns the per-session request state machine and
// converts component failures into reportable errors; nothing here is
// allowed to take the process down.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ayatake/lexinote/internal/history"
	"github.com/ayatake/lexinote/internal/model"
	"github.com/ayatake/lexinote/internal/porting"
)

// ErrBusy means an analyze request is already outstanding. At most one
// generation call may be in flight per session.
var ErrBusy = errors.New("an analysis is already in progress")

// Generator issues one analysis call against the external service.
type Generator interface {
	Generate(ctx context.Context, term, credential string) (model.CorpusEntry, error)
}

// CredentialStore is the credential half of the persistence adapter.
type CredentialStore interface {
	ReadCredential(ctx context.Context) (string, error)
	WriteCredential(ctx context.Context, credential string) error
}

// Session wires history, credential storage and the generator together.
type Session struct {
	hist  *history.Store
	creds CredentialStore
	gen   Generator
	log   *slog.Logger

	requesting atomic.Bool

	// Seams for tests.
	now   func() time.Time
	newID func() string
}

// New returns a session. gen may be nil for flows that never analyze.
func New(hist *history.Store, creds CredentialStore, gen Generator, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		hist:  hist,
		creds: creds,
		gen:   gen,
		log:   log,
		now:   time.Now,
		newID: model.NewID,
	}
}

// Analyze sends the term to the generation service and prepends the
// resulting card to the history. While one request is outstanding, further
// calls fail with ErrBusy.
func (s *Session) Analyze(ctx context.Context, term string) (model.CorpusCard, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return model.CorpusCard{}, fmt.Errorf("analyze: empty term")
	}
	if s.gen == nil {
		return model.CorpusCard{}, fmt.Errorf("analyze: no generator configured")
	}

	if !s.requesting.CompareAndSwap(false, true) {
		return model.CorpusCard{}, ErrBusy
	}
	defer s.requesting.Store(false)

	credential, err := s.creds.ReadCredential(ctx)
	if err != nil {
		return model.CorpusCard{}, fmt.Errorf("read credential: %w", err)
	}

	entry, err := s.gen.Generate(ctx, term, credential)
	if err != nil {
		return model.CorpusCard{}, err
	}

	card := model.CorpusCard{
		ID:          s.newID(),
		CreatedAt:   s.now().UnixMilli(),
		CorpusEntry: entry,
	}
	if err := s.hist.Prepend(ctx, card); err != nil {
		return model.CorpusCard{}, err
	}

	s.log.Info("term analyzed", "term", term, "id", card.ID)
	return card, nil
}

// Cards returns the history, newest first.
func (s *Session) Cards() []model.CorpusCard {
	return s.hist.Cards()
}

// Delete removes a card by id. Unknown ids are a no-op; any confirmation
// happens in the presentation layer before this is called.
func (s *Session) Delete(ctx context.Context, id string) error {
	return s.hist.Remove(ctx, id)
}

// Export writes the full history to a date-stamped file in dir and returns
// the path written.
func (s *Session) Export(ctx context.Context, dir string) (string, error) {
	data, err := porting.Export(s.hist.Cards())
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, porting.Filename(porting.DefaultBasename, s.now()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	s.log.Info("history exported", "path", path, "cards", s.hist.Len())
	return path, nil
}

// ImportFile parses uploaded bytes and merges the candidates into the
// history, returning how many were accepted. A file whose top-level value
// is not an array fails with porting.ImportFormatError and leaves the
// history unchanged.
func (s *Session) ImportFile(ctx context.Context, data []byte) (int, error) {
	candidates, err := porting.Parse(data)
	if err != nil {
		return 0, err
	}
	accepted, err := s.hist.MergeImport(ctx, candidates)
	if err != nil {
		return 0, err
	}
	s.log.Info("history imported", "candidates", len(candidates), "accepted", accepted)
	return accepted, nil
}

// SetCredential stores the credential; an empty string erases it.
func (s *Session) SetCredential(ctx context.Context, credential string) error {
	return s.creds.WriteCredential(ctx, strings.TrimSpace(credential))
}

// CredentialSet reports whether a credential is currently stored.
func (s *Session) CredentialSet(ctx context.Context) (bool, error) {
	c, err := s.creds.ReadCredential(ctx)
	if err != nil {
		return false, err
	}
	return c != "", nil
}
