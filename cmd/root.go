package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "fortune",
		Short:         "Daily almanac and horoscope service",
		Long:          "fortune serves the Chinese almanac (黄历) and daily constellation horoscopes from TianAPI, normalized and cached per day, over HTTP or straight to the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/fortune/config.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(opts),
		newAlmanacCmd(opts),
		newConstellationCmd(opts),
		newConfigCmd(opts),
	)

	return rootCmd
}
