// Package cli implements the lexinote CLI commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayatake/lexinote/internal/config"
	"github.com/ayatake/lexinote/internal/gen"
	"github.com/ayatake/lexinote/internal/gen/termctx"
	"github.com/ayatake/lexinote/internal/history"
	"github.com/ayatake/lexinote/internal/logging"
	"github.com/ayatake/lexinote/internal/session"
	"github.com/ayatake/lexinote/internal/storage"
)

var dbFlag string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "lexinote",
	Short: "LLM-backed corpus notebook for localizers",
	Long:  "Analyze terms with a generative-language service and keep the results as a local, portable corpus. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbFlag, "db", "d", "", "Database path (default: $LEXINOTE_DB or ~/.lexinote/lexinote.db)")
}

// app bundles the wired components for one command invocation.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	store *storage.SQLite
	sess  *session.Session
}

// openApp loads config, opens storage and builds the session. The generator
// (and its dictionary) is only constructed for commands that analyze.
func openApp(ctx context.Context, withGenerator bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}
	log := logging.New(cfg.Log)

	store, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}

	hist, err := history.Load(ctx, store, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	var g session.Generator
	if withGenerator {
		var termCtx gen.ContextBuilder
		if b, err := termctx.New(); err != nil {
			log.Warn("tokenizer unavailable, analyzing without local context", "error", err)
		} else {
			termCtx = b
		}
		g = gen.New(gen.Config{Model: cfg.Model, MaxTokens: cfg.MaxTokens}, termCtx)
	}

	return &app{
		cfg:   cfg,
		log:   log,
		store: store,
		sess:  session.New(hist, store, g, log),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
