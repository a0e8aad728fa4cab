package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-ammcore/internal/engine"
	"github.com/lugondev/go-ammcore/internal/solana"
	"github.com/lugondev/go-ammcore/internal/state"
	"github.com/lugondev/go-ammcore/internal/token"
	"github.com/lugondev/go-ammcore/pkg/types"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Inspect pool state",
}

var poolInfoCmd = &cobra.Command{
	Use:   "info <pool-address>",
	Short: "Fetch a pool record and print its snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, coinNet, pcNet, err := fetchPool(cmd, args[0])
		if err != nil {
			return err
		}

		snapshot := &engine.PoolSnapshot{
			Status:       pool.GetStatus().String(),
			CoinDecimals: pool.CoinDecimals,
			PcDecimals:   pool.PcDecimals,
			LpDecimals:   pool.CoinDecimals,
			PoolCoin:     coinNet,
			PoolPc:       pcNet,
			LpSupply:     pool.LpAmount,
			PoolOpenTime: pool.StateData.PoolOpenTime,
		}
		return printJSON(snapshot)
	},
}

var (
	quoteAmountIn  uint64
	quoteAmountOut uint64
	quoteDirection string
)

var poolQuoteCmd = &cobra.Command{
	Use:   "quote <pool-address>",
	Short: "Price a swap against current reserves without executing it",
	Long: `Fetches the pool and its vaults and prices a swap offline.

Reserves are the direct vault balances net of earmarked profit; open
order-book placements are not included, so quotes on reconciling pools
understate available depth.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (quoteAmountIn == 0) == (quoteAmountOut == 0) {
			return fmt.Errorf("exactly one of --amount-in or --amount-out is required")
		}

		pool, coinNet, pcNet, err := fetchPool(cmd, args[0])
		if err != nil {
			return err
		}

		totalIn, totalOut := coinNet, pcNet
		if quoteDirection == "pc2coin" {
			totalIn, totalOut = pcNet, coinNet
		} else if quoteDirection != "coin2pc" {
			return fmt.Errorf("unknown direction %q (want coin2pc or pc2coin)", quoteDirection)
		}

		var quote *engine.SwapQuote
		if quoteAmountIn > 0 {
			quote, err = engine.QuoteBaseIn(&pool.Fees, quoteAmountIn, totalIn, totalOut)
		} else {
			quote, err = engine.QuoteBaseOut(&pool.Fees, quoteAmountOut, totalIn, totalOut)
		}
		if err != nil {
			return err
		}
		return printJSON(quote)
	},
}

// fetchPool loads the pool record and both vaults and returns the reserves
// net of earmarked profit.
func fetchPool(cmd *cobra.Command, address string) (*state.PoolInfo, uint64, uint64, error) {
	poolKey, err := types.PubkeyFromBase58(address)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("invalid pool address: %w", err)
	}

	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()

	client := solana.NewClient(cfg.Solana.GetRPCEndpoint())
	defer client.Close()

	data, err := client.GetAccountData(ctx, poolKey)
	if err != nil {
		return nil, 0, 0, err
	}
	pool, err := state.DecodePoolInfo(data)
	if err != nil {
		return nil, 0, 0, err
	}

	coinData, err := client.GetAccountData(ctx, pool.CoinVault)
	if err != nil {
		return nil, 0, 0, err
	}
	coinVault, err := token.DecodeAccount(coinData)
	if err != nil {
		return nil, 0, 0, err
	}
	pcData, err := client.GetAccountData(ctx, pool.PcVault)
	if err != nil {
		return nil, 0, 0, err
	}
	pcVault, err := token.DecodeAccount(pcData)
	if err != nil {
		return nil, 0, 0, err
	}

	if coinVault.Amount < pool.StateData.NeedTakePnlCoin ||
		pcVault.Amount < pool.StateData.NeedTakePnlPc {
		return nil, 0, 0, fmt.Errorf("vault balances below earmarked profit")
	}
	coinNet := coinVault.Amount - pool.StateData.NeedTakePnlCoin
	pcNet := pcVault.Amount - pool.StateData.NeedTakePnlPc
	return pool, coinNet, pcNet, nil
}

func contextWithTimeout(cmd *cobra.Command) (ctx context.Context, cancel context.CancelFunc) {
	timeout := time.Duration(cfg.Solana.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	poolQuoteCmd.Flags().Uint64Var(&quoteAmountIn, "amount-in", 0, "exact input amount")
	poolQuoteCmd.Flags().Uint64Var(&quoteAmountOut, "amount-out", 0, "exact output amount")
	poolQuoteCmd.Flags().StringVar(&quoteDirection, "direction", "coin2pc", "swap direction (coin2pc or pc2coin)")

	poolCmd.AddCommand(poolInfoCmd)
	poolCmd.AddCommand(poolQuoteCmd)
	rootCmd.AddCommand(poolCmd)
}
