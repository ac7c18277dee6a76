package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import cards from a JSON file",
		Long:  "Merge cards from an export file (or stdin with '-'). Only records with a term and meaning are accepted; ids already in the history are skipped.",
		Args:  cobra.ExactArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		exitErr("read import file", err)
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	imported, err := a.sess.ImportFile(cmd.Context(), data)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imported":%d}`+"\n", imported)
}
