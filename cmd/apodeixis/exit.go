package apodeixis

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/apodeixis-project/apodeixis/pkg/node"
)

var exitCmd = &cobra.Command{
	Use:   "exit",
	Short: "Withdraw the full stake and leave the validator set",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(ctx context.Context, n *node.Node) error {
			return n.ExitNetwork(ctx)
		})
	},
}
