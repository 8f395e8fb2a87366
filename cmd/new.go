package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a node configuration",
	Long: `Writes a yaml node configuration built from the given flags.
Neighbours read with -f are stored inline, so the generated file can be run on its own with "dvrouter run -c".`,
	Run: func(cmd *cobra.Command, args []string) {
		nodeCfg, err := loadNodeConfig(cmd)
		if err != nil {
			fmt.Println("Invalid node configuration:", err.Error())
			os.Exit(-1)
		}
		nodeCfg.NeighboursFile = ""

		ncfg, err := yaml.Marshal(nodeCfg)
		if err != nil {
			panic(err)
		}

		outPath := cmd.Flag("output").Value.String()
		if _, err := os.Stat(outPath); err == nil {
			if ok, _ := cmd.Flags().GetBool("force"); !ok {
				fmt.Printf("%s already exists, use --force to overwrite it\n", outPath)
				os.Exit(-1)
			}
		}
		err = os.WriteFile(outPath, ncfg, 0600)
		if err != nil {
			panic(err)
		}
		fmt.Printf("Wrote node %s to %s\n", nodeCfg.Address(), outPath)
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(newCmd)
	addNodeFlags(newCmd)
	newCmd.Flags().StringP("output", "o", "node.yaml", "Output file path")
	newCmd.Flags().Bool("force", false, "Overwrite the output file if it exists")
}
