package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/UniQw/taskmgr"
)

func newSubmitCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "submit <kind> <a> <b>",
		Short: "Dispatch one task to a worker",
		Example: `  taskmgr submit 1 7 3
  taskmgr submit division 10 4`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := parseRecord(args)
			if err != nil {
				return err
			}
			d, closeFn, err := a.dispatcher()
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := d.Submit(cmd.Context(), rec)
			if err != nil {
				return err
			}
			if asJSON {
				b, err := (&taskmgr.JSONEncoder{Indent: true}).Encode(res)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			}
			return res.Err()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the dispatch result as JSON")
	return cmd
}

func parseRecord(args []string) (taskmgr.Record, error) {
	kind, err := taskmgr.ParseKind(args[0])
	if err != nil {
		return taskmgr.Record{}, err
	}
	var nums [2]int32
	for i, s := range args[1:] {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return taskmgr.Record{}, fmt.Errorf("invalid number %q: %w", s, err)
		}
		nums[i] = int32(n)
	}
	return taskmgr.Record{Kind: kind, A: nums[0], B: nums[1]}, nil
}
