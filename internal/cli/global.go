package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/gedcart/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "global",
		Short: "Add tree-wide structures to the cart",
		Long:  "Add every partner chain (all-partner-chains) or every record on a family circle (all-circles) to the cart.",
		Args:  cobra.NoArgs,
		Run:   runGlobal,
	}

	cmd.Flags().StringP("rule", "r", "", "all-partner-chains or all-circles (required)")
	cmd.MarkFlagRequired("rule")

	RootCmd.AddCommand(cmd)
}

func runGlobal(cmd *cobra.Command, args []string) {
	rule, _ := cmd.Flags().GetString("rule")
	req := model.Request{Rule: model.Rule(rule)}
	if !req.Rule.Global() {
		exitErr("global", fmt.Errorf("%q is not a tree-wide rule", rule))
	}
	applyRule(cmd, req)
}
