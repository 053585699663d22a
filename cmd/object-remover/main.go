package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"object-remover/internal/algorithms"
	"object-remover/internal/app"
	"object-remover/internal/config"
	"object-remover/internal/logger"
	"object-remover/internal/shutdown"
)

// Exit codes.
const (
	exitOK         = 0
	exitFailed     = 1
	exitUsage      = 2
	exitPartial    = 3
	exitOutputFail = 4
)

type options struct {
	configPath string
	input      string
	output     string
	debug      bool
	timeout    time.Duration
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	opts := &options{}
	code := exitOK

	cmd := &cobra.Command{
		Use:           "object-remover",
		Short:         "Remove objects from images by exemplar-based inpainting",
		Version:       app.AppVersion,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			code = run(opts)
			return nil
		},
	}
	cmd.SetVersionTemplate(app.AppName + " {{.Version}}\n")

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "job file (YAML), or - to read it from stdin")
	flags.StringVarP(&opts.input, "input", "i", "", "override the job's input image")
	flags.StringVarP(&opts.output, "output", "o", "", "override the job's output image")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.DurationVar(&opts.timeout, "shutdown-timeout", shutdown.DefaultComponentTimeout, "how long to wait for each component on interrupt")
	_ = cmd.MarkFlagRequired("config")
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n%s", err, cmd.UsageString())
		return exitUsage
	}
	return code
}

func run(opts *options) int {
	configureRuntime()

	job, err := config.Load(opts.configPath, config.WithInput(opts.input), config.WithOutput(opts.output))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid job: %v\n", err)
		return exitUsage
	}

	level := job.LogLevel()
	if opts.debug {
		level = zerolog.DebugLevel
	}
	var log logger.Logger
	if job.Log.Human {
		log = logger.NewConsoleLogger(level)
	} else {
		log = logger.NewZerolog(os.Stderr, level)
	}

	shutdownManager := shutdown.NewManager(context.Background(), log)
	shutdownManager.SetComponentTimeout(opts.timeout)
	shutdownManager.Listen()
	defer shutdownManager.Stop()

	application, err := app.NewApplication(job, log)
	if err != nil {
		log.Error("Main", err, nil)
		return exitUsage
	}
	shutdownManager.Register(application.Lifecycle())
	defer application.Lifecycle().Shutdown()

	_, err = application.Run(shutdownManager.Context())
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, algorithms.ErrNonConvergence):
		log.Warning("Main", "hole only partially filled", map[string]interface{}{"output": job.Output})
		return exitPartial
	case errors.Is(err, app.ErrExportFailed):
		log.Error("Main", err, nil)
		return exitOutputFail
	default:
		log.Error("Main", err, nil)
		return exitFailed
	}
}

// configureRuntime raises the GC target for large image buffers.
func configureRuntime() {
	debug.SetGCPercent(200)
}
