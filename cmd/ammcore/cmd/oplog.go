package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-ammcore/internal/storage/postgres"
	"github.com/lugondev/go-ammcore/pkg/types"
)

var oplogLimit int

var oplogCmd = &cobra.Command{
	Use:   "oplog",
	Short: "Query persisted operation logs",
}

var oplogListCmd = &cobra.Command{
	Use:   "list <pool-address>",
	Short: "List the newest operation logs for a pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Database.Enabled {
			return fmt.Errorf("operation log store is disabled in the configuration")
		}
		pool, err := types.PubkeyFromBase58(args[0])
		if err != nil {
			return fmt.Errorf("invalid pool address: %w", err)
		}

		ctx, cancel := contextWithTimeout(cmd)
		defer cancel()

		repo, err := postgres.NewRepository(ctx, &cfg.Database.Postgres)
		if err != nil {
			return err
		}
		defer repo.Close()

		entries, err := repo.ListEntriesByPool(ctx, pool, oplogLimit)
		if err != nil {
			return err
		}
		return printJSON(entries)
	},
}

func init() {
	oplogListCmd.Flags().IntVar(&oplogLimit, "limit", 50, "maximum entries to return")
	oplogCmd.AddCommand(oplogListCmd)
	rootCmd.AddCommand(oplogCmd)
}
