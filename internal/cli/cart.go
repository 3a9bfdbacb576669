package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/gedcart/internal/export"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect and empty the cart",
}

func init() {
	list := &cobra.Command{
		Use:   "list",
		Short: "List cart members by kind, then name",
		Args:  cobra.NoArgs,
		Run:   runCartList,
	}
	list.Flags().Bool("ids-only", false, "Only output record ids")

	cartCmd.AddCommand(list)
	RootCmd.AddCommand(cartCmd)
}

type cartEntry struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func runCartList(cmd *cobra.Command, args []string) {
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	e, err := openEnv(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer e.Close()

	ids, err := e.cart.Members(cmd.Context(), e.cfg.Tree)
	if err != nil {
		exitErr("cart", err)
	}
	entries, err := export.New(e.graph, export.Options{Tree: e.cfg.Tree}).Entries(cmd.Context(), ids)
	if err != nil {
		exitErr("cart", err)
	}

	out := cmd.OutOrStdout()
	if idsOnly {
		for _, en := range entries {
			fmt.Fprintln(out, en.ID)
		}
		return
	}
	if formatFlag == "text" {
		for _, en := range entries {
			fmt.Fprintf(out, "%-10s %-12s %s\n", en.ID, en.Kind.Name(), en.SortName)
		}
		return
	}

	list := make([]cartEntry, 0, len(entries))
	for _, en := range entries {
		list = append(list, cartEntry{ID: en.ID, Kind: en.Kind.Name(), Name: en.SortName})
	}
	b, _ := json.MarshalIndent(list, "", "  ")
	fmt.Fprintln(out, string(b))
}
