package apodeixis

import (
	"context"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/apodeixis-project/apodeixis/pkg/config"
	"github.com/apodeixis-project/apodeixis/pkg/node"
	"github.com/apodeixis-project/apodeixis/pkg/system"
)

func init() {
	stakeCmd.AddCommand(stakeIncreaseCmd)
	stakeCmd.AddCommand(stakeDecreaseCmd)
}

var stakeCmd = &cobra.Command{
	Use:   "stake",
	Short: "Manage the validator's bonded stake",
}

var stakeIncreaseCmd = &cobra.Command{
	Use:   "increase [amount]",
	Short: "Bond additional APDX tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(ctx context.Context, n *node.Node) error {
			amount, err := parseTokenAmount(args[0])
			if err != nil {
				return err
			}
			return n.IncreaseStake(ctx, amount)
		})
	},
}

var stakeDecreaseCmd = &cobra.Command{
	Use:   "decrease [amount]",
	Short: "Unbond APDX tokens down to the network minimum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(ctx context.Context, n *node.Node) error {
			amount, err := parseTokenAmount(args[0])
			if err != nil {
				return err
			}
			return n.DecreaseStake(ctx, amount)
		})
	},
}

// withNode runs one node operation against the configured ledger and tears
// everything down afterwards.
func withNode(fn func(ctx context.Context, n *node.Node) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cm := system.NewCleanupManager()
	defer cm.Cleanup()

	ctx, cancel := system.WithSignalShutdown(context.Background())
	defer cancel()

	n, err := setupNode(ctx, cm, cfg, false)
	if err != nil {
		return err
	}
	return fn(ctx, n)
}

// parseTokenAmount reads a whole-token APDX amount into wei.
func parseTokenAmount(raw string) (*big.Int, error) {
	tokens, ok := new(big.Int).SetString(raw, 10)
	if !ok || tokens.Sign() <= 0 {
		return nil, fmt.Errorf("invalid token amount %q", raw)
	}
	return tokens.Mul(tokens, big.NewInt(1_000_000_000_000_000_000)), nil
}
