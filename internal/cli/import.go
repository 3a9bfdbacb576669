package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/gedcart/internal/gedcom"
	"github.com/rcliao/gedcart/internal/graph"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import <file.ged>",
		Short: "Import a GEDCOM file into the tree",
		Long:  "Import a GEDCOM file (or - for stdin) into the configured graph. Records already present are replaced.",
		Args:  cobra.ExactArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open gedcom", err)
		}
		defer f.Close()
		r = f
	}

	records, err := gedcom.Decode(r)
	if err != nil {
		exitErr("parse gedcom", err)
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer e.Close()

	var imported int
	if g, ok := e.graph.(*graph.Neo4jGraph); ok {
		imported, err = g.Import(cmd.Context(), records)
	} else {
		imported, err = e.store.Import(cmd.Context(), e.cfg.Tree, records)
	}
	if err != nil {
		exitErr("import", err)
	}
	e.logger.Info("gedcom imported", zap.Int("records", imported))

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"tree":%q,"imported":%d}`+"\n", e.cfg.Tree, imported)
}
