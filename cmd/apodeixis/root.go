package apodeixis

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(stakeCmd)
	RootCmd.AddCommand(exitCmd)
}

var RootCmd = &cobra.Command{
	Use:   "apodeixis",
	Short: "Verification over proofs",
	Long:  `Run a validator node that fetches, verifies and settles proof tasks.`,
}

func Execute(version string) {
	RootCmd.Version = version

	setVersion()

	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setVersion() {
	template := fmt.Sprintf("Apodeixis Version: %s\n", RootCmd.Version)
	RootCmd.SetVersionTemplate(template)
}
