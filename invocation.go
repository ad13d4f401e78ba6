package taskmgr

import (
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// Invocation carries everything a worker needs for one dispatch. It travels
// to worker processes as command line flags.
type Invocation struct {
	ID        string
	Channel   ChannelSpec
	Timeout   time.Duration
	TaskDelay time.Duration
}

// BindFlags registers the invocation flags on fs, writing parsed values into inv.
func (inv *Invocation) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&inv.ID, "id", "", "dispatch id")
	fs.StringVar((*string)(&inv.Channel.Backend), "backend", string(BackendShm), "channel backend (shm, redis)")
	fs.StringVar(&inv.Channel.Path, "path", "", "shared segment path (shm)")
	fs.StringVar(&inv.Channel.Name, "name", "", "channel name (redis)")
	fs.StringVar(&inv.Channel.Addr, "addr", "", "redis address (redis)")
	fs.IntVar(&inv.Channel.DB, "db", 0, "redis database (redis)")
	fs.DurationVar(&inv.Timeout, "timeout", DefaultTimeout, "deadlock timeout")
	fs.DurationVar(&inv.TaskDelay, "task-delay", DefaultTaskDelay, "delay before the task body")
}

// Args renders the invocation as flags accepted by BindFlags. The Redis
// password is never rendered; pass it through the environment.
func (inv Invocation) Args() []string {
	args := []string{
		"--id=" + inv.ID,
		"--backend=" + string(inv.Channel.Backend),
		"--timeout=" + inv.Timeout.String(),
		"--task-delay=" + inv.TaskDelay.String(),
	}
	switch inv.Channel.Backend {
	case BackendRedis:
		args = append(args,
			"--name="+inv.Channel.Name,
			"--addr="+inv.Channel.Addr,
			"--db="+strconv.Itoa(inv.Channel.DB),
		)
	default:
		args = append(args, "--path="+inv.Channel.Path)
	}
	return args
}

// ParseInvocation parses flags produced by Args.
func ParseInvocation(args []string) (Invocation, error) {
	var inv Invocation
	fs := pflag.NewFlagSet("worker", pflag.ContinueOnError)
	inv.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Invocation{}, err
	}
	return inv, nil
}
