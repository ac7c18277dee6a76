package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "analyze [term]",
		Short: "Analyze a term and add it to the history",
		Long:  "Send a term to the generation service and prepend the structured result to the corpus history. Requires a credential (see 'lexinote key').",
		Args:  cobra.ExactArgs(1),
		Run:   runAnalyze,
	}

	RootCmd.AddCommand(cmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context(), true)
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout)
	defer cancel()

	card, err := a.sess.Analyze(ctx, args[0])
	if err != nil {
		exitErr("analyze", err)
	}

	b, _ := json.MarshalIndent(card, "", "  ")
	fmt.Println(string(b))
}
