package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/gedcart/internal/export"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the cart as a GEDCOM archive",
		Long: `Export the cart as a GEDCOM document inside a zip or tar archive, with the
media files it references. References to records outside the cart are removed.

--privatize sets how much private data is kept: none, gedadmin, user or visitor.
Options the viewer's role does not allow are demoted. With --tam only individuals
and families are written, as a plain .ged file without media.`,
		Args: cobra.NoArgs,
		Run:  runExport,
	}

	cmd.Flags().StringP("output", "o", "", "Output file (required)")
	cmd.Flags().String("privatize", "", "Privacy level: none, gedadmin, user or visitor (default: strictest)")
	cmd.Flags().String("archive", "zip", "Archive format: zip or tar")
	cmd.Flags().Bool("tam", false, "Write individuals and families only, as a .ged file")
	cmd.MarkFlagRequired("output")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")
	privatize, _ := cmd.Flags().GetString("privatize")
	archive, _ := cmd.Flags().GetString("archive")
	tam, _ := cmd.Flags().GetBool("tam")

	e, err := openEnv(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer e.Close()

	ids, err := e.cart.Members(cmd.Context(), e.cfg.Tree)
	if err != nil {
		exitErr("cart", err)
	}
	if len(ids) == 0 {
		exitErr("export", fmt.Errorf("the cart for tree %q is empty", e.cfg.Tree))
	}

	opts := export.Options{
		Tree:        e.cfg.Tree,
		Tier:        export.ResolveTier(privatize, e.role()),
		MediaPrefix: e.cfg.Media.Prefix,
		Logger:      e.logger,
	}
	if info, err := os.Stat(e.cfg.Media.Dir); err == nil && info.IsDir() {
		opts.Media = os.DirFS(e.cfg.Media.Dir)
	}
	x := export.New(e.graph, opts)

	var res export.Result
	if tam {
		if !strings.EqualFold(filepath.Ext(output), ".ged") {
			output += ".ged"
		}
		f, err := os.Create(output)
		if err != nil {
			exitErr("create output", err)
		}
		res, err = x.TAM(cmd.Context(), f, filepath.Base(output), ids)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(output)
			exitErr("export", err)
		}
	} else {
		format, err := export.ParseFormat(archive)
		if err != nil {
			exitErr("export", err)
		}
		res, err = x.Download(cmd.Context(), output, format, ids)
		if err != nil {
			exitErr("export", err)
		}
	}

	b, _ := json.Marshal(map[string]any{
		"ok":          true,
		"output":      output,
		"tier":        opts.Tier.String(),
		"records":     res.Records,
		"media_files": res.MediaFiles,
	})
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
