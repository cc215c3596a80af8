package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kylebegovich/alice/internal/commander"
	"github.com/kylebegovich/alice/internal/config"
)

func main() {
	var configFile string

	cmd := &cobra.Command{
		Use:          "cli",
		Short:        "Interactively query trained command and ordinal models",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if err := config.ParseEnv(cfg); err != nil {
				return err
			}

			commander.NewCommander(cfg).Start()
			return nil
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "config/config.yaml", "Path to configuration file")

	if err := cmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
