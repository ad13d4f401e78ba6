package taskmgr

import (
	"context"
	"fmt"
	"os"
	"testing"
)

const helperEnv = "TASKMGR_TEST_WORKER"

// TestMain doubles as the worker binary for ExecSpawner tests: when the helper
// variable is set the test binary runs one worker and exits with its code.
func TestMain(m *testing.M) {
	if os.Getenv(helperEnv) == "1" {
		os.Exit(helperWorker(os.Args[1:]))
	}
	os.Exit(m.Run())
}

func helperWorker(args []string) int {
	if len(args) > 0 && args[0] == "worker" {
		args = args[1:]
	}
	inv, err := ParseInvocation(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 3
	}
	inv.Channel.Password = os.Getenv("REDIS_PASSWORD")
	ch, err := OpenChannel(inv.Channel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitChannelFailure
	}
	defer ch.Close()
	return RunWorker(context.Background(), ch, WorkerConfig{
		ID:        inv.ID,
		Timeout:   inv.Timeout,
		TaskDelay: inv.TaskDelay,
		Logger:    NewFmtLogger(),
	})
}
