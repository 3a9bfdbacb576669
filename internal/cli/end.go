package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the session and discard its cart",
		Long:  "End the current session. Its cart is discarded for every tree and the next command starts a new session.",
		Args:  cobra.NoArgs,
		Run:   runEnd,
	}

	cartCmd.AddCommand(cmd)
}

func runEnd(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ss, err := currentSession(s)
	if err != nil {
		exitErr("session", err)
	}
	if err := s.EndSession(cmd.Context(), ss); err != nil {
		exitErr("end session", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "{\"ended\":%q}\n", ss.ID())
}
