package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/gedcart/internal/closure"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generations <id>",
		Short: "Show how many generations of ancestors and descendants an individual has",
		Args:  cobra.ExactArgs(1),
		Run:   runGenerations,
	}

	RootCmd.AddCommand(cmd)
}

func runGenerations(cmd *cobra.Command, args []string) {
	e, err := openEnv(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer e.Close()

	eng := closure.New(e.graph, e.cart, closure.Options{
		Tree:         e.cfg.Tree,
		Tier:         e.role().Tier(),
		MaxRecursion: e.cfg.Limits.MaxRecursion,
		Logger:       e.logger,
	})
	up, err := eng.MaxAncestorGenerations(cmd.Context(), args[0])
	if err != nil {
		exitErr("ancestors", err)
	}
	down, err := eng.MaxDescendantGenerations(cmd.Context(), args[0])
	if err != nil {
		exitErr("descendants", err)
	}

	if formatFlag == "text" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: up to %d ancestor generations, %d descendant generations\n", args[0], up, down)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"id":%q,"ancestors":%d,"descendants":%d}`+"\n", args[0], up, down)
}
