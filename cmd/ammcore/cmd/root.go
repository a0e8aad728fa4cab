package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lugondev/go-ammcore/internal/common"
	"github.com/lugondev/go-ammcore/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ammcore",
	Short: "ammcore CLI - constant-product pool inspection tool",
	Long: `ammcore is a CLI for inspecting constant-product pools.

It provides commands for:
- Pool state snapshots
- Offline swap quoting
- Operation log queries
- Configuration validation`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ammcore.yaml)")
	rootCmd.PersistentFlags().String("rpc", "", "Solana RPC endpoint")
	rootCmd.PersistentFlags().String("network", "devnet", "Solana network (mainnet, devnet, testnet)")

	if err := viper.BindPFlag("solana.rpc", rootCmd.PersistentFlags().Lookup("rpc")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding flag: %v\n", err)
	}
	if err := viper.BindPFlag("solana.network", rootCmd.PersistentFlags().Lookup("network")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding flag: %v\n", err)
	}
}

func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded
	common.SetupLogger(cfg.Log.Level, cfg.Log.Format)
}
