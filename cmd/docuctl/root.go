package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root docuctl command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "docuctl",
		Short:         "docuctl - resolve step permalinks offline",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logrus.SetOutput(os.Stderr)
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.WarnLevel)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every resolution stage")

	root.AddCommand(NewResolveCmd(fileOpener{}))
	root.AddCommand(NewPackIDCmd())
	root.AddCommand(NewUnpackIDCmd())
	root.AddCommand(NewTokenCmd())

	return root
}
