package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/UniQw/taskmgr"
)

// newWorkerCmd is the entry point of spawned workers. It exits the process
// with the worker exit code.
func newWorkerCmd(a *app) *cobra.Command {
	var inv taskmgr.Invocation
	cmd := &cobra.Command{
		Use:    "worker",
		Short:  "Run one dispatched task",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv.Channel.Password = os.Getenv("REDIS_PASSWORD")
			code := runWorker(cmd, a, inv)
			_ = a.teardown(cmd.Context())
			os.Exit(code)
			return nil
		},
	}
	inv.BindFlags(cmd.Flags())
	return cmd
}

func runWorker(cmd *cobra.Command, a *app, inv taskmgr.Invocation) int {
	ch, err := taskmgr.OpenChannel(inv.Channel)
	if err != nil {
		a.log.Errorf("worker %s: %v", inv.ID, err)
		return taskmgr.ExitChannelFailure
	}
	defer ch.Close()
	return taskmgr.RunWorker(cmd.Context(), ch, taskmgr.WorkerConfig{
		ID:        inv.ID,
		Timeout:   inv.Timeout,
		TaskDelay: inv.TaskDelay,
		Logger:    a.log,
	})
}
