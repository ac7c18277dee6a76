package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List corpus cards",
		Long:  "List the history, newest first.",
		Run:   runList,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max results (0 = all)")
	cmd.Flags().Bool("terms-only", false, "Only output id and term per line")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	termsOnly, _ := cmd.Flags().GetBool("terms-only")

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	cards := a.sess.Cards()
	if limit > 0 && limit < len(cards) {
		cards = cards[:limit]
	}

	if termsOnly {
		for _, c := range cards {
			fmt.Printf("%s\t%s\n", c.ID, c.Term)
		}
		return
	}

	b, _ := json.MarshalIndent(cards, "", "  ")
	fmt.Println(string(b))
}
