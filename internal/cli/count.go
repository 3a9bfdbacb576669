package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/gedcart/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count cart members by kind",
		Args:  cobra.NoArgs,
		Run:   runCount,
	}

	cartCmd.AddCommand(cmd)
}

func runCount(cmd *cobra.Command, args []string) {
	e, err := openEnv(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer e.Close()

	counts, err := e.cart.CountByKind(cmd.Context(), e.cfg.Tree, e.classify)
	if err != nil {
		exitErr("count", err)
	}

	out := cmd.OutOrStdout()
	all := 0
	byName := make(map[string]int, len(counts)+1)
	for _, k := range model.Kinds {
		n := counts[k]
		if n == 0 {
			continue
		}
		all += n
		byName[k.Name()] = n
		if formatFlag == "text" {
			fmt.Fprintf(out, "%-12s %d\n", k.Name(), n)
		}
	}
	if formatFlag == "text" {
		fmt.Fprintf(out, "%-12s %d\n", "all", all)
		return
	}
	byName["all"] = all
	b, _ := json.MarshalIndent(byName, "", "  ")
	fmt.Fprintln(out, string(b))
}
