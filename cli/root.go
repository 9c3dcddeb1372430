package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/pastelaria-api/config"
	"github.com/yeremiapane/pastelaria-api/utils"
)

// RootOptions holds global flags and the configuration they produce.
type RootOptions struct {
	EnvFile string
	Port    string

	Config *config.Config
}

// NewRootCommand creates the pastelaria command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pastelaria",
		Short: "Pastelaria API server and maintenance tasks",
		Long:  "REST API for a pastry and pizza shop: catalog, orders, response cache and offline sync.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if opts.EnvFile != "" {
				files = append(files, opts.EnvFile)
			}
			opts.Config = config.Load(files...)
			if opts.Port != "" {
				opts.Config.Port = opts.Port
			}
			utils.InitLogger(opts.Config.LogLevel, opts.Config.LogFormat)
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "env file to load (default .env)")
	cmd.PersistentFlags().StringVarP(&opts.Port, "port", "p", "", "HTTP port, overrides PORT")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
