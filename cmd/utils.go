package cmd

import (
	"github.com/encodeous/dvrouter/state"
	"github.com/spf13/cobra"
)

var configPath = ""

func addNodeFlags(cmd *cobra.Command) {
	cmd.Flags().Uint16P("port", "p", uint16(state.DefaultPort), "port to run the router on")
	cmd.Flags().StringP("file", "f", "", "csv file listing neighbours (columns vizinho,custo or neighbor,cost)")
	cmd.Flags().String("network", "", "network administered by this router (ex: 10.0.1.0/24)")
	cmd.Flags().Int("interval", int(state.DefaultInterval.Seconds()), "advertisement interval in seconds")
	cmd.Flags().String("host", state.DefaultHost, "host neighbours reach this router by")
	cmd.Flags().String("listen", state.DefaultListenHost, "host the update endpoint binds to")
	cmd.Flags().Bool("summarize", true, "summarize advertised prefixes")
	cmd.Flags().String("log", "", "also write logs to this file")
}

// loadNodeConfig reads --config if given, then applies every flag set on the command line
func loadNodeConfig(cmd *cobra.Command) (*state.NodeCfg, error) {
	cfg := state.DefaultNodeCfg()
	if configPath != "" {
		fileCfg, err := state.LoadNodeConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = *fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("port") || configPath == "" {
		cfg.Port, _ = flags.GetUint16("port")
	}
	if flags.Changed("network") {
		cfg.Network, _ = flags.GetString("network")
	}
	if flags.Changed("interval") {
		cfg.IntervalSec, _ = flags.GetInt("interval")
	}
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("listen") {
		cfg.ListenHost, _ = flags.GetString("listen")
	}
	if flags.Changed("summarize") {
		cfg.Summarize, _ = flags.GetBool("summarize")
	}
	if flags.Changed("log") {
		cfg.LogPath, _ = flags.GetString("log")
	}
	if file, _ := flags.GetString("file"); file != "" {
		neighs, err := state.LoadNeighboursCSV(file)
		if err != nil {
			return nil, err
		}
		if err := cfg.Neighbours.Merge(neighs); err != nil {
			return nil, err
		}
	}

	if err := state.NodeConfigValidator(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
