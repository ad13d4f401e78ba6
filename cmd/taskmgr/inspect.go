package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UniQw/taskmgr"
)

func newInspectCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the record held in shared memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ch, closeFn, err := a.channel()
			if err != nil {
				return err
			}
			defer closeFn()

			rec, err := ch.Read(cmd.Context())
			if err != nil {
				return err
			}
			if !asJSON {
				printRecord(cmd.OutOrStdout(), rec)
				return nil
			}
			b, err := (&taskmgr.JSONEncoder{}).Encode(rec)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Destroy the shared memory segment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ch, closeFn, err := a.channel()
			if err != nil {
				return err
			}
			defer closeFn()
			if err := ch.Destroy(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Shared memory cleared.")
			return nil
		},
	}
}
