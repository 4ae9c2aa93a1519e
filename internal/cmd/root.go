// Package cmd implements the CLI front-end: a cobra root command carrying
// the serve subcommand, with viper overlaying NOTEDAV_* environment
// variables onto unset flags (spec.md §6's CLI surface).
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "notedav",
		Short: "Serve a hierarchical note store over WebDAV",
	}
	root.AddCommand(newServeCmd())
	return root
}

func bindEnv(v *viper.Viper, flags ...string) {
	v.SetEnvPrefix("notedav")
	v.AutomaticEnv()
	for _, name := range flags {
		_ = v.BindEnv(name)
	}
}
