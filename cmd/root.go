package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dvrouter",
	Short: "Distance-vector router simulator",
	Long: `dvrouter runs a single node of a RIP-like distance-vector routing protocol.
Each node periodically advertises its summarized, poison-reversed routing table to its neighbours over HTTP,
and merges the advertisements it receives using Bellman-Ford relaxation.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "init",
		Title: "Configure a Router",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "dv",
		Title: "Router Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "node yaml config, flags override its values")
}
