package cmd

import (
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validates the router configuration and prints the effective config",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadNodeConfig(cmd)
		if err != nil {
			panic(err)
		}

		cfgYaml, err := yaml.Marshal(cfg)
		if err != nil {
			panic(err)
		}

		println("Config is valid")
		println(string(cfgYaml))
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	addNodeFlags(verifyCmd)
}
