package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/revu-ai/revu/internal/cache"
	"github.com/revu-ai/revu/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the review response cache",
}

func openCache() (*cache.Cache, error) {
	cfg := config.New()
	if err := cfg.Initialize(); err != nil {
		return nil, err
	}
	ttl, err := cfg.CacheTTLSeconds()
	if err != nil {
		return nil, err
	}
	c, err := cache.Open(true, "", ttl)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return fail(err)
		}
		defer c.Close()

		stats, err := c.GetStats()
		if err != nil {
			return fail(fmt.Errorf("reading cache stats: %w", err))
		}
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fail(err)
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return fail(err)
		}
		defer c.Close()

		if err := c.Clear(); err != nil {
			return fail(fmt.Errorf("clearing cache: %w", err))
		}
		fmt.Fprintln(os.Stdout, "Cache cleared.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
