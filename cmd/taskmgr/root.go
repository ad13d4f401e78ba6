package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/UniQw/taskmgr"
	"github.com/UniQw/taskmgr/internal/config"
	ikeys "github.com/UniQw/taskmgr/internal/keys"
	"github.com/UniQw/taskmgr/internal/logger"
	"github.com/UniQw/taskmgr/internal/tracing"
)

const version = "0.1.0"

// app is shared state of one command invocation.
type app struct {
	cfgFile string
	debug   bool
	trace   bool

	cfg      *config.Config
	zl       *zap.Logger
	log      *taskmgr.ZapLogger
	shutdown tracing.Shutdown

	// newSpawner is replaced in tests.
	newSpawner func() taskmgr.Spawner
}

func newRootCmd() *cobra.Command { return buildRoot(&app{}) }

func buildRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "taskmgr",
		Short:   "Interactive task manager",
		Long:    "taskmgr writes a task to a shared memory slot, spawns a worker process to run it and reports the result.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Name() != "worker")
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, closeFn, err := a.dispatcher()
			if err != nil {
				return err
			}
			defer closeFn()
			return runMenu(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), d)
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logs")
	root.PersistentFlags().BoolVar(&a.trace, "trace", false, "export spans to stderr")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newSubmitCmd(a),
		newInspectCmd(a),
		newClearCmd(a),
		newWorkerCmd(a),
	)
	return root
}

func (a *app) setup(withTracing bool) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Log.Level = "debug"
	}
	cfg.Resolve()
	a.cfg = cfg

	a.zl = logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
	a.log = taskmgr.NewZapLogger(a.zl)

	if withTracing && (a.trace || cfg.Trace.Enabled) {
		shutdown, err := tracing.Init("taskmgr", version, cfg.Trace.Output)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		a.shutdown = shutdown
	}
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.shutdown != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		if err := a.shutdown(ctx); err != nil {
			return err
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return nil
}

// channel builds the configured channel. The returned func releases it.
func (a *app) channel() (taskmgr.Channel, func(), error) {
	c := a.cfg.Channel
	switch taskmgr.Backend(c.Backend) {
	case taskmgr.BackendShm:
		ch := taskmgr.NewShmChannel(ikeys.SegmentPath(c.Dir, c.Name))
		return ch, func() {}, nil
	case taskmgr.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			DB:       c.Redis.DB,
			Password: c.Redis.Password,
		})
		return taskmgr.NewRedisChannel(rdb, c.Name), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", taskmgr.ErrUnknownBackend, c.Backend)
	}
}

func (a *app) spawner() taskmgr.Spawner {
	if a.newSpawner != nil {
		return a.newSpawner()
	}
	args := []string{"worker"}
	if a.cfgFile != "" {
		args = append(args, "--config="+a.cfgFile)
	}
	if a.debug {
		args = append(args, "--debug")
	}
	return &taskmgr.ExecSpawner{Args: args, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (a *app) dispatcher() (*taskmgr.Dispatcher, func(), error) {
	ch, closeFn, err := a.channel()
	if err != nil {
		return nil, nil, err
	}
	d := taskmgr.NewDispatcher(taskmgr.DispatcherConfig{
		Channel:   ch,
		Spawner:   a.spawner(),
		Timeout:   a.cfg.Timeout(),
		TaskDelay: a.cfg.TaskDelay(),
		Logger:    a.log,
	})
	return d, closeFn, nil
}
