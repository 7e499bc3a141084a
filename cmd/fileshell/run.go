package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run [script-file]",
		Short: "Run commands from a file",
		Long: `Feed each line of a script file through the shell, exactly as if it had
been typed at the prompt. No prompt is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scriptFile := args[0]

			f, err := os.Open(scriptFile)
			if err != nil {
				return fmt.Errorf("failed to read script file %s: %w", scriptFile, err)
			}
			defer func() { _ = f.Close() }()

			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			cfg.Prompt = ""

			return runShell(cmd, cfg, f)
		},
	}
}
