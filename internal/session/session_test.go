package session

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayatake/lexinote/internal/gen"
	"github.com/ayatake/lexinote/internal/history"
	"github.com/ayatake/lexinote/internal/model"
)

type memBackend struct {
	history    []byte
	credential string
}

func (m *memBackend) ReadHistory(ctx context.Context) ([]byte, error)  { return m.history, nil }
func (m *memBackend) WriteHistory(ctx context.Context, d []byte) error { m.history = d; return nil }
func (m *memBackend) ReadCredential(ctx context.Context) (string, error) {
	return m.credential, nil
}
func (m *memBackend) WriteCredential(ctx context.Context, c string) error {
	m.credential = c
	return nil
}

// stubGenerator mimics the real client's credential contract and optionally
// blocks until released, to exercise the in-flight guard.
type stubGenerator struct {
	block   chan struct{}
	started chan struct{}
	calls   int
}

func (g *stubGenerator) Generate(ctx context.Context, term, credential string) (model.CorpusEntry, error) {
	g.calls++
	if credential == "" {
		return model.CorpusEntry{}, &gen.CredentialError{Reason: "no credential configured"}
	}
	if g.started != nil {
		close(g.started)
		g.started = nil
	}
	if g.block != nil {
		<-g.block
	}
	return model.CorpusEntry{Term: term, Meaning: "meaning of " + term}, nil
}

func newTestSession(t *testing.T, g Generator) (*Session, *memBackend) {
	t.Helper()
	b := &memBackend{credential: "sk-test"}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hist, err := history.Load(context.Background(), b, log)
	require.NoError(t, err)
	return New(hist, b, g, log), b
}

func TestAnalyzePrependsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, &stubGenerator{})

	first, err := s.Analyze(ctx, "賄賂")
	require.NoError(t, err)
	assert.Equal(t, "賄賂", first.Term)
	assert.NotEmpty(t, first.ID)
	assert.NotZero(t, first.CreatedAt)

	second, err := s.Analyze(ctx, "情報")
	require.NoError(t, err)

	cards := s.Cards()
	require.Len(t, cards, 2)
	assert.Equal(t, second.ID, cards[0].ID)
	assert.Equal(t, "情報", cards[0].Term)
	assert.Equal(t, first.ID, cards[1].ID)
	assert.Equal(t, "賄賂", cards[1].Term)
}

func TestAnalyzeTrimsAndRejectsEmptyTerm(t *testing.T) {
	s, _ := newTestSession(t, &stubGenerator{})
	_, err := s.Analyze(context.Background(), "   ")
	assert.Error(t, err)
	assert.Empty(t, s.Cards())
}

func TestAnalyzeWithoutCredentialFails(t *testing.T) {
	ctx := context.Background()
	g := &stubGenerator{}
	s, b := newTestSession(t, g)
	b.credential = ""

	_, err := s.Analyze(ctx, "賄賂")
	var ce *gen.CredentialError
	require.ErrorAs(t, err, &ce)
	assert.Empty(t, s.Cards(), "failed analyze must not add a card")

	// Same failure after an explicit erase, regardless of term.
	require.NoError(t, s.SetCredential(ctx, "sk-test"))
	require.NoError(t, s.SetCredential(ctx, ""))
	_, err = s.Analyze(ctx, "情報")
	require.ErrorAs(t, err, &ce)
}

func TestAnalyzeAtMostOneInFlight(t *testing.T) {
	ctx := context.Background()
	g := &stubGenerator{block: make(chan struct{}), started: make(chan struct{})}
	s, _ := newTestSession(t, g)

	done := make(chan error, 1)
	go func() {
		_, err := s.Analyze(ctx, "賄賂")
		done <- err
	}()

	<-g.started
	_, err := s.Analyze(ctx, "情報")
	assert.ErrorIs(t, err, ErrBusy)

	close(g.block)
	require.NoError(t, <-done)

	// Once the outstanding request resolved, new requests go through.
	_, err = s.Analyze(ctx, "情報")
	require.NoError(t, err)
	assert.Len(t, s.Cards(), 2)
}

func TestDeleteIsUnconditional(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, &stubGenerator{})

	card, err := s.Analyze(ctx, "賄賂")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, card.ID))
	assert.Empty(t, s.Cards())

	// Deleting again is a no-op.
	require.NoError(t, s.Delete(ctx, card.ID))
}

func TestExportImportThroughFiles(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, &stubGenerator{})
	s.now = func() time.Time { return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) }

	_, err := s.Analyze(ctx, "賄賂")
	require.NoError(t, err)
	_, err = s.Analyze(ctx, "情報")
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := s.Export(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lexinote_2026-08-27.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Import into a fresh session reproduces the history.
	dst, _ := newTestSession(t, nil)
	n, err := dst.ImportFile(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want := s.Cards()
	got := dst.Cards()
	require.Len(t, got, 2)
	assert.Equal(t, want[0].ID, got[0].ID)
	assert.Equal(t, want[1].ID, got[1].ID)

	// Importing the same file again accepts nothing.
	n, err = dst.ImportFile(ctx, data)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportFileRejectsNonArray(t *testing.T) {
	s, _ := newTestSession(t, nil)
	_, err := s.ImportFile(context.Background(), []byte(`{"not":"an array"}`))
	assert.Error(t, err)
	assert.Empty(t, s.Cards())
}

func TestCredentialLifecycle(t *testing.T) {
	ctx := context.Background()
	s, b := newTestSession(t, nil)
	b.credential = ""

	set, err := s.CredentialSet(ctx)
	require.NoError(t, err)
	assert.False(t, set)

	require.NoError(t, s.SetCredential(ctx, "  sk-test  "))
	assert.Equal(t, "sk-test", b.credential, "credential is stored trimmed")

	set, err = s.CredentialSet(ctx)
	require.NoError(t, err)
	assert.True(t, set)

	require.NoError(t, s.SetCredential(ctx, ""))
	set, _ = s.CredentialSet(ctx)
	assert.False(t, set)
}
