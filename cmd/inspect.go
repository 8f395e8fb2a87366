package cmd

import (
	"fmt"

	"github.com/encodeous/dvrouter/core"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Aliases: []string{"i"},
	Short:   "Inspects the current state of a running router",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println("Usage: dvrouter inspect <host:port>")
			return
		}
		result, err := core.InspectGet(args[0])
		if err != nil {
			fmt.Println("Error:", err.Error())
			return
		}
		fmt.Print(result.String())
	},
	GroupID: "dv",
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
