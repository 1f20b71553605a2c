package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/revu-ai/revu/internal/config"
)

var flagGlobal bool

func configScope() config.Scope {
	if flagGlobal {
		return config.ScopeGlobal
	}
	return config.ScopeProject
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage revu settings",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a settings file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.New()
		scope := configScope()
		path, err := cfg.Path(scope)
		if err != nil {
			return fail(err)
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "Settings file already exists at %s\n", path)
			return nil
		}
		if err := config.WriteTemplate(path); err != nil {
			return fail(fmt.Errorf("writing settings file: %w", err))
		}
		fmt.Fprintf(os.Stdout, "Settings file created at %s\n", path)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one resolved setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.New()
		if err := cfg.Initialize(); err != nil {
			return fail(err)
		}
		v, err := cfg.Get(args[0], "")
		if err != nil {
			return fail(err)
		}
		fmt.Fprintln(os.Stdout, v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a setting in the project or global file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.New()
		if err := cfg.Set(configScope(), args[0], args[1]); err != nil {
			return fail(err)
		}
		fmt.Fprintf(os.Stdout, "Set %s = %s\n", args[0], args[1])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings after layering",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.New()
		if err := cfg.Initialize(); err != nil {
			return fail(err)
		}
		all, err := cfg.All()
		if err != nil {
			return fail(err)
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(os.Stdout, "%s=%s\n", k, all[k])
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path for a scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.New()
		path, err := cfg.Path(configScope())
		if err != nil {
			return fail(err)
		}
		fmt.Fprintln(os.Stdout, path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	configCmd.PersistentFlags().BoolVar(&flagGlobal, "global", false, "Operate on the global settings file")
}
