package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	got, err := s.ReadHistory(ctx)
	if err != nil {
		t.Fatalf("read empty: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil history before first write, got %q", got)
	}

	payload := []byte(`[{"id":"01","term":"賄賂"}]`)
	if err := s.WriteHistory(ctx, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err = s.ReadHistory(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("expected %q, got %q", payload, got)
	}
}

func TestHistoryOverwriteIsLastWriterWins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.WriteHistory(ctx, []byte(`[1]`))
	if err := s.WriteHistory(ctx, []byte(`[2]`)); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, _ := s.ReadHistory(ctx)
	if string(got) != `[2]` {
		t.Errorf("expected [2], got %q", got)
	}
}

func TestCredentialAbsenceMeansUnset(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c, err := s.ReadCredential(ctx)
	if err != nil {
		t.Fatalf("read unset: %v", err)
	}
	if c != "" {
		t.Errorf("expected empty credential, got %q", c)
	}

	if err := s.WriteCredential(ctx, "sk-test"); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, _ = s.ReadCredential(ctx)
	if c != "sk-test" {
		t.Errorf("expected sk-test, got %q", c)
	}
}

func TestCredentialEraseConvergesToAbsence(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.WriteCredential(ctx, "sk-test")
	if err := s.WriteCredential(ctx, ""); err != nil {
		t.Fatalf("erase: %v", err)
	}

	c, _ := s.ReadCredential(ctx)
	if c != "" {
		t.Errorf("expected erased credential to read as unset, got %q", c)
	}

	// Erasing an already-unset credential is fine too.
	if err := s.WriteCredential(ctx, ""); err != nil {
		t.Fatalf("erase unset: %v", err)
	}
}
