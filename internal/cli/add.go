package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/gedcart/internal/closure"
	"github.com/rcliao/gedcart/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a record and its relatives to the cart",
		Long: `Add a record to the cart using a closure rule.

Rules: record-only, children, ancestors, descendants, parent-families,
spouse-families, ancestor-families, partner-chains.`,
		Args: cobra.ExactArgs(1),
		Run:  runAdd,
	}

	cmd.Flags().StringP("rule", "r", string(model.RuleRecordOnly), "Closure rule")
	cmd.Flags().Int("depth", -1, "Generations to walk beyond the first (default: all)")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	rule, _ := cmd.Flags().GetString("rule")
	depth, _ := cmd.Flags().GetInt("depth")

	req := model.Request{Rule: model.Rule(rule), ID: args[0]}
	if depth >= 0 {
		req.Depth = &depth
	}
	if req.Rule.Global() {
		exitErr("add", fmt.Errorf("%s applies to the whole tree, use global", rule))
	}
	applyRule(cmd, req)
}

func applyRule(cmd *cobra.Command, req model.Request) {
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
	added, err := eng.Apply(cmd.Context(), req)
	if err != nil {
		exitErr(string(req.Rule), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"rule":%q,"id":%q,"added":%d}`+"\n", req.Rule, req.ID, added)
}
