package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		Run:   runClear,
	}

	cartCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	e, err := openEnv(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer e.Close()

	if err := e.cart.Clear(cmd.Context(), e.cfg.Tree); err != nil {
		exitErr("clear", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), `{"ok":true}`)
}
