package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the history to a JSON file",
		Long:  "Write the full history as pretty-printed JSON to <dir>/lexinote_<YYYY-MM-DD>.json.",
		Run:   runExport,
	}

	cmd.Flags().StringP("out", "o", ".", "Directory to write the export file into")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	dir, _ := cmd.Flags().GetString("out")

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	path, err := a.sess.Export(cmd.Context(), dir)
	if err != nil {
		exitErr("export", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"path":%q,"cards":%d}`+"\n", path, len(a.sess.Cards()))
}
