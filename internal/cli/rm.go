package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/gedcart/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Remove a record, or every record of a kind, from the cart",
		Args:  cobra.MaximumNArgs(1),
		Run:   runRm,
	}

	cmd.Flags().StringP("kind", "k", "", "Remove every member of this kind (e.g. INDI, source)")

	cartCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	kindStr, _ := cmd.Flags().GetString("kind")
	if (kindStr == "") == (len(args) == 0) {
		exitErr("rm", fmt.Errorf("give either a record id or --kind"))
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer e.Close()

	if kindStr == "" {
		if err := e.cart.Remove(cmd.Context(), e.cfg.Tree, args[0]); err != nil {
			exitErr("rm", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", args[0])
		return
	}

	kind, ok := model.ParseKind(kindStr)
	if !ok {
		exitErr("rm", fmt.Errorf("unknown record kind %q", kindStr))
	}
	n, err := e.cart.RemoveKind(cmd.Context(), e.cfg.Tree, kind, e.classify)
	if err != nil {
		exitErr("rm", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"kind":%q,"removed":%d}`+"\n", kind.Name(), n)
}
