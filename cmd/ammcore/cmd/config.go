package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-ammcore/internal/config"
	"github.com/lugondev/go-ammcore/pkg/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate the configuration",
}

// configSummary is the printed result of a config check.
type configSummary struct {
	Network       string   `json:"network"`
	RPC           string   `json:"rpc"`
	ProgramID     string   `json:"program_id,omitempty"`
	AutoInitHooks []string `json:"auto_init_hooks,omitempty"`
	PoolPresets   []string `json:"pool_presets,omitempty"`
	Database      bool     `json:"database"`
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the engine configuration and pool presets",
	Long: `Parses the configured program identity and auto-init hook keys and
loads the pool parameter presets file, failing on the first invalid
entry. Run it after editing the configuration, before restarting
anything that consumes it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary := configSummary{
			Network:  cfg.Solana.Network,
			RPC:      cfg.Solana.GetRPCEndpoint(),
			Database: cfg.Database.Enabled,
		}

		if cfg.Engine.ProgramID != "" {
			id, err := types.PubkeyFromBase58(cfg.Engine.ProgramID)
			if err != nil {
				return fmt.Errorf("invalid program id: %w", err)
			}
			summary.ProgramID = id.String()
		}

		hooks, err := cfg.Engine.HookKeys()
		if err != nil {
			return err
		}
		for _, h := range hooks {
			summary.AutoInitHooks = append(summary.AutoInitHooks, h.String())
		}

		if cfg.Engine.PoolParams != "" {
			presets, err := config.LoadPoolPresets(cfg.Engine.PoolParams)
			if err != nil {
				return err
			}
			for name := range presets {
				summary.PoolPresets = append(summary.PoolPresets, name)
			}
			sort.Strings(summary.PoolPresets)
		}

		return printJSON(summary)
	},
}

func init() {
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}
