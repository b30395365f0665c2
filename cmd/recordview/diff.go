package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-recordview/pkg/changeset"
)

func newDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff BASE CURRENT",
		Short: "Print the top-level change set between two records",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := a.loadRecord(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			current, err := a.loadRecord(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), changeset.DirtyValues(base, current))
		},
	}
}
