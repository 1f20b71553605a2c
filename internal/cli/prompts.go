package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/revu-ai/revu/internal/config"
	"github.com/revu-ai/revu/internal/prompt"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect review prompt templates",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompt template keys",
	Run: func(cmd *cobra.Command, args []string) {
		for _, key := range prompt.Keys() {
			fmt.Fprintln(os.Stdout, key)
		}
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print the resolved template for a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := buildServices()
		if err != nil {
			return fail(err)
		}
		defer svcs.close()

		text, err := svcs.prompts.Load(args[0])
		if err != nil {
			return fail(err)
		}
		fmt.Fprintln(os.Stdout, text)
		return nil
	},
}

var promptsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the prompt override directories in resolution order",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(os.Stdout, filepath.Join(".revu", "prompts"))
		if globalDir, err := config.New().Dir(config.ScopeGlobal); err == nil {
			fmt.Fprintln(os.Stdout, filepath.Join(globalDir, "prompts"))
		}
		return nil
	},
}

func init() {
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	promptsCmd.AddCommand(promptsPathCmd)
}
