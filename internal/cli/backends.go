package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/revu-ai/revu/internal/backends"
	"github.com/revu-ai/revu/internal/config"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "Inspect AI backends",
}

var backendsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backends with their configuration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.New()
		if err := cfg.Initialize(); err != nil {
			return fail(err)
		}
		preferred, err := cfg.Backend()
		if err != nil {
			return fail(err)
		}

		reg := backends.NewRegistry(cfg)
		for _, b := range reg.All() {
			status := "not configured (set " + config.CredentialKey(b.Name()) + ")"
			if b.Configured() {
				status = "configured"
			}
			marker := " "
			if b.Name() == preferred {
				marker = "*"
			}
			model, err := cfg.Model(b.Name())
			if err != nil {
				return fail(err)
			}
			fmt.Fprintf(os.Stdout, "%s %-8s %-12s %s\n", marker, b.Name(), model, status)
		}
		return nil
	},
}

func init() {
	backendsCmd.AddCommand(backendsListCmd)
	// `revu backends` with no subcommand behaves as `revu backends list`.
	backendsCmd.RunE = backendsListCmd.RunE
}
