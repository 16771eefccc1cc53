package apodeixis

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/apodeixis-project/apodeixis/pkg/config"
	"github.com/apodeixis-project/apodeixis/pkg/system"
)

var greedyMode bool

func init() { // nolint:gochecknoinits // Using init in cobra command is idomatic
	serveCmd.PersistentFlags().BoolVar(
		&greedyMode, "greedy", false,
		`Proactively finalize revealed tasks once their grace window passes.`,
	)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the apodeixis validator node",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Cleanup manager ensures that resources are freed before exiting:
		cm := system.NewCleanupManager()
		defer cm.Cleanup()

		ctx, cancel := system.WithSignalShutdown(context.Background())
		defer cancel()

		n, err := setupNode(ctx, cm, cfg, greedyMode || cfg.Greedy)
		if err != nil {
			return err
		}

		// a captured signal cancels the context; stop the loop at the
		// next polling boundary rather than tearing the context down
		// under in-flight tasks
		go func() {
			<-ctx.Done()
			n.Stop()
		}()

		return n.Start(ctx)
	},
}
