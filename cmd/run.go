package cmd

import (
	"context"
	"log/slog"

	"github.com/encodeous/dvrouter/core"
	"github.com/encodeous/dvrouter/state"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a router",
	Long: `This will run a router node on the current host.
Neighbours are read from a csv file (-f) or the yaml config (-c), and the router listens for updates from them on the given port.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadNodeConfig(cmd)
		if err != nil {
			panic(err)
		}

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}

		err = core.Start(context.Background(), *cfg, level)
		if err != nil {
			panic(err)
		}
	},
	GroupID: "dv",
}

func init() {
	rootCmd.AddCommand(runCmd)

	addNodeFlags(runCmd)
	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().BoolVarP(&state.DBG_log_table, "ltable", "t", false, "Outputs the route table to the console when it changes")
	runCmd.Flags().BoolVarP(&state.DBG_log_advertisements, "ladv", "a", false, "Outputs every advertisement sent to the console")
}
