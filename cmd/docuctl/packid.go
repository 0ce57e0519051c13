package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/run-ci/docuserver/store"
)

// NewPackIDCmd creates the packid subcommand.
func NewPackIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "packid <page> <page-occurrence> <step-occurrence>",
		Short:        "Print the packed step id of page coordinates",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			occs := make([]int, 2)
			for i, raw := range args[1:] {
				n, err := strconv.Atoi(raw)
				if err != nil || n < 0 {
					return fmt.Errorf("occurrence %q must be a non-negative integer", raw)
				}
				occs[i] = n
			}

			fmt.Fprintln(cmd.OutOrStdout(), store.PackStepID(args[0], occs[0], occs[1]))
			return nil
		},
	}
}

// NewUnpackIDCmd creates the unpackid subcommand.
func NewUnpackIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "unpackid <packed-id>",
		Short:        "Print the page coordinates of a packed step id",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, pageocc, stepocc, err := store.UnpackStepID(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "page=%s pageOccurrence=%d stepInPageOccurrence=%d\n", page, pageocc, stepocc)
			return nil
		},
	}
}
