package taskmgr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Spawner starts a worker for one invocation.
type Spawner interface {
	Spawn(ctx context.Context, inv Invocation) (Process, error)
}

// Process is a started worker.
type Process interface {
	// Wait blocks until the worker terminates and returns its exit code. The
	// error is set only when the exit status could not be obtained.
	Wait() (int, error)
}

// SpawnerFunc adapts a function to Spawner.
type SpawnerFunc func(ctx context.Context, inv Invocation) (Process, error)

func (f SpawnerFunc) Spawn(ctx context.Context, inv Invocation) (Process, error) { return f(ctx, inv) }

// ExecSpawner runs each worker as a separate OS process. By default it
// re-executes the current binary with the "worker" subcommand.
type ExecSpawner struct {
	// Path is the executable; empty means os.Executable().
	Path string
	// Args precede the invocation flags; nil means []string{"worker"}.
	Args []string
	// Env is the child environment; nil inherits the parent's.
	Env []string
	// Stdout and Stderr default to the parent's.
	Stdout, Stderr io.Writer
}

func (s *ExecSpawner) Spawn(ctx context.Context, inv Invocation) (Process, error) {
	path := s.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSpawnFailed, err)
		}
		path = exe
	}
	args := s.Args
	if args == nil {
		args = []string{"worker"}
	}
	cmd := exec.CommandContext(ctx, path, append(append([]string{}, args...), inv.Args()...)...)
	cmd.Env = s.Env
	if inv.Channel.Password != "" {
		if cmd.Env == nil {
			cmd.Env = os.Environ()
		}
		cmd.Env = append(cmd.Env, "REDIS_PASSWORD="+inv.Channel.Password)
	}
	cmd.Stdout = writerOr(s.Stdout, os.Stdout)
	cmd.Stderr = writerOr(s.Stderr, os.Stderr)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawnFailed, err)
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	var ee *exec.ExitError
	if err != nil && !errors.As(err, &ee) {
		return -1, err
	}
	// -1 when killed by a signal
	return p.cmd.ProcessState.ExitCode(), nil
}

func writerOr(w, def io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return def
}

// InProcSpawner runs each worker on a goroutine of the calling process. The
// record still crosses through the channel, opened from the invocation spec.
type InProcSpawner struct {
	Logger      Logger
	Middlewares []Middleware
}

func (s *InProcSpawner) Spawn(ctx context.Context, inv Invocation) (Process, error) {
	ch, err := OpenChannel(inv.Channel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawnFailed, err)
	}
	p := &inprocProcess{done: make(chan int, 1)}
	go func() {
		defer ch.Close()
		p.done <- RunWorker(ctx, ch, WorkerConfig{
			ID:          inv.ID,
			Timeout:     inv.Timeout,
			TaskDelay:   inv.TaskDelay,
			Middlewares: s.Middlewares,
			Logger:      s.Logger,
		})
	}()
	return p, nil
}

type inprocProcess struct {
	done chan int
}

func (p *inprocProcess) Wait() (int, error) { return <-p.done, nil }
