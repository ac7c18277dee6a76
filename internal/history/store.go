// Package history owns the ordered card collection. The store is the single
// owner of the history; the persistence backend holds a serialized mirror
// that is rewritten after every mutation.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ayatake/lexinote/internal/model"
)

// Backend is the subset of the persistence adapter the store needs.
type Backend interface {
	ReadHistory(ctx context.Context) ([]byte, error)
	WriteHistory(ctx context.Context, data []byte) error
}

// Store holds the in-memory history, newest card first.
type Store struct {
	backend Backend
	log     *slog.Logger
	cards   []model.CorpusCard
}

// Load reads the persisted history into a new store. Corrupted stored JSON
// is not fatal: the store starts empty and the condition is logged.
func Load(ctx context.Context, backend Backend, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{backend: backend, log: log}

	data, err := backend.ReadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}

	var cards []model.CorpusCard
	if err := json.Unmarshal(data, &cards); err != nil {
		log.Warn("stored history is not valid JSON, starting empty", "error", err)
		return s, nil
	}
	s.cards = cards
	return s, nil
}

// Cards returns a copy of the history, newest first.
func (s *Store) Cards() []model.CorpusCard {
	out := make([]model.CorpusCard, len(s.cards))
	copy(out, s.cards)
	return out
}

// Len returns the number of cards.
func (s *Store) Len() int {
	return len(s.cards)
}

// Contains reports whether a card with the given id is present.
func (s *Store) Contains(id string) bool {
	for _, c := range s.cards {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Prepend inserts the card at position 0 and persists before returning.
func (s *Store) Prepend(ctx context.Context, card model.CorpusCard) error {
	if card.ID == "" {
		return fmt.Errorf("prepend: card has no id")
	}
	if s.Contains(card.ID) {
		return fmt.Errorf("prepend: duplicate card id %s", card.ID)
	}

	s.cards = append([]model.CorpusCard{card}, s.cards...)
	if err := s.save(ctx); err != nil {
		s.cards = s.cards[1:]
		return err
	}
	return nil
}

// Remove deletes the card with the given id if present and persists. A
// missing id is a no-op, not an error; confirmation is the caller's concern.
func (s *Store) Remove(ctx context.Context, id string) error {
	idx := -1
	for i, c := range s.cards {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	removed := s.cards[idx]
	s.cards = append(s.cards[:idx], s.cards[idx+1:]...)
	if err := s.save(ctx); err != nil {
		s.cards = append(s.cards[:idx], append([]model.CorpusCard{removed}, s.cards[idx:]...)...)
		return err
	}
	return nil
}

// MergeImport accepts candidates that have the minimal required shape and an
// id not already in the history, prepending them as a block in their input
// order. Rejected candidates are skipped silently; the accepted count is
// returned so the caller can report it.
func (s *Store) MergeImport(ctx context.Context, candidates []model.RawCard) (int, error) {
	var accepted []model.CorpusCard
	seen := make(map[string]bool)

	for i, raw := range candidates {
		if !raw.HasRequiredFields() {
			s.log.Debug("import: skipping candidate without term/meaning", "index", i)
			continue
		}
		card, err := raw.Card()
		if err != nil {
			s.log.Debug("import: skipping malformed candidate", "index", i, "error", err)
			continue
		}
		if card.ID == "" {
			card.ID = model.NewID()
		}
		if s.Contains(card.ID) || seen[card.ID] {
			s.log.Debug("import: skipping duplicate id", "id", card.ID)
			continue
		}
		seen[card.ID] = true
		accepted = append(accepted, card)
	}

	if len(accepted) == 0 {
		return 0, nil
	}

	prev := s.cards
	s.cards = append(append([]model.CorpusCard{}, accepted...), s.cards...)
	if err := s.save(ctx); err != nil {
		s.cards = prev
		return 0, err
	}
	return len(accepted), nil
}

// save rewrites the persisted mirror. Mutations call it before returning so
// a subsequent load always observes the change.
func (s *Store) save(ctx context.Context) error {
	cards := s.cards
	if cards == nil {
		cards = []model.CorpusCard{}
	}
	data, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := s.backend.WriteHistory(ctx, data); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}
