// Package fileshell wires the interactive file manager together: it turns a
// Config into a ready-to-run shell over the local filesystem.
package fileshell

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/fileshell/pkg/fileshell/config"
	"github.com/arthur-debert/fileshell/pkg/fileshell/filesystem"
	"github.com/arthur-debert/fileshell/pkg/fileshell/operations"
	"github.com/arthur-debert/fileshell/pkg/fileshell/pipeline"
	"github.com/arthur-debert/fileshell/pkg/fileshell/session"
	"github.com/arthur-debert/fileshell/pkg/fileshell/shell"
)

// Options carries the process-level collaborators of a shell.
type Options struct {
	In     io.Reader
	Out    io.Writer
	Logger zerolog.Logger
	// FS defaults to the OS filesystem.
	FS filesystem.FileSystem
	// System defaults to the host.
	System operations.SystemInfo
	// NewID defaults to UUIDIDGenerator.
	NewID shell.IDGenerator
}

// NewShell builds a shell from cfg.
func NewShell(cfg *config.Config, opts Options) (*shell.Shell, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOSFileSystem()
	}

	start, err := StartDir(cfg.StartDir)
	if err != nil {
		return nil, err
	}
	info, err := fsys.Stat(start)
	if err != nil {
		return nil, fmt.Errorf("invalid start directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("invalid start directory: %s is not a directory", start)
	}

	codec, err := pipeline.CodecByName(cfg.Codec)
	if err != nil {
		return nil, err
	}

	system := opts.System
	if system == nil {
		system = operations.HostSystem{}
	}
	newID := opts.NewID
	if newID == nil {
		newID = UUIDIDGenerator
	}

	env := operations.Env{
		Session: session.New(start, cfg.Username),
		FS:      fsys,
		Logger:  opts.Logger,
		Codec:   codec,
		Locale:  cfg.LanguageTag(),
		System:  system,
	}

	opts.Logger.Debug().
		Str("start_dir", start).
		Str("codec", codec.Name()).
		Int("concurrency", cfg.Concurrency).
		Msg("starting shell")

	return shell.New(opts.In, opts.Out, env, operations.DefaultRegistry(), shell.Options{
		Prompt:      cfg.Prompt,
		Concurrency: cfg.Concurrency,
		ErrorDetail: cfg.ErrorDetail,
		Color:       cfg.Color,
		NewID:       newID,
		Logger:      opts.Logger,
	}), nil
}

// StartDir returns dir as an absolute path, or the user's home directory
// when dir is empty.
func StartDir(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		return home, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return session.Resolve(wd, dir), nil
}
