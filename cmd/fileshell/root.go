package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/fileshell/pkg/fileshell"
	"github.com/arthur-debert/fileshell/pkg/fileshell/config"
	"github.com/arthur-debert/fileshell/pkg/fileshell/pipeline"
)

// rootOptions holds the persistent flags. Flags only override the loaded
// configuration when they are set explicitly.
type rootOptions struct {
	configFile  string
	username    string
	startDir    string
	logLevel    string
	codec       string
	concurrency int
	errorDetail bool
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "fileshell",
		Short: "An interactive file manager shell",
		Long: `fileshell is an interactive, line-oriented file manager. It keeps a virtual
current directory and offers commands to navigate, list, read, create, rename,
copy, move, delete, hash, compress and decompress files.

Type .exit or send end-of-input to leave.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return runShell(cmd, cfg, cmd.InOrStdin())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/fileshell/config.toml)")
	flags.StringVar(&opts.username, "username", "", "name shown in the welcome and farewell messages")
	flags.StringVar(&opts.startDir, "start-dir", "", "initial directory (default is the home directory)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.codec, "codec", pipeline.DefaultCodec, fmt.Sprintf("compression codec %v", pipeline.CodecNames()))
	flags.IntVar(&opts.concurrency, "concurrency", 1, "number of commands allowed to run at once")
	flags.BoolVar(&opts.errorDetail, "error-detail", false, "append the error kind to failure messages")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd(opts))

	return cmd
}

// load reads the configuration and applies explicitly set flags on top.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("username") {
		cfg.Username = o.username
	}
	if flags.Changed("start-dir") {
		cfg.StartDir = o.startDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("codec") {
		cfg.Codec = o.codec
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if flags.Changed("error-detail") {
		cfg.ErrorDetail = o.errorDetail
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runShell(cmd *cobra.Command, cfg *config.Config, in io.Reader) error {
	logger, err := fileshell.NewLoggerFromConfig(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !isTerminal(out) {
		cfg.Color = false
	}

	sh, err := fileshell.NewShell(cfg, fileshell.Options{
		In:     in,
		Out:    out,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	return sh.Run(cmd.Context())
}

// isTerminal reports whether w is the process stdout attached to a terminal.
// color.NoColor is set by the color package when stdout is not a TTY.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f == os.Stdout && !color.NoColor
}
