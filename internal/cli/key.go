package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the generation service credential",
	}

	setCmd := &cobra.Command{
		Use:   "set [credential]",
		Short: "Store the credential",
		Args:  cobra.ExactArgs(1),
		Run:   runKeySet,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Erase the stored credential",
		Run:   runKeyClear,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether a credential is stored",
		Long:  "Report whether a credential is stored. The credential itself is never printed.",
		Run:   runKeyStatus,
	}

	keyCmd.AddCommand(setCmd, clearCmd, statusCmd)
	RootCmd.AddCommand(keyCmd)
}

func runKeySet(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	if args[0] == "" {
		exitErr("key set", fmt.Errorf("credential must not be empty (use 'key clear' to erase)"))
	}
	if err := a.sess.SetCredential(cmd.Context(), args[0]); err != nil {
		exitErr("key set", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), `{"ok":true}`)
}

func runKeyClear(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	if err := a.sess.SetCredential(cmd.Context(), ""); err != nil {
		exitErr("key clear", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), `{"ok":true}`)
}

func runKeyStatus(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	set, err := a.sess.CredentialSet(cmd.Context())
	if err != nil {
		exitErr("key status", err)
	}
	envSet := os.Getenv("ANTHROPIC_API_KEY") != ""
	fmt.Fprintf(cmd.OutOrStdout(), `{"stored":%t,"env_anthropic_api_key":%t}`+"\n", set, envSet)
}
