package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCmdSetup checks the command tree built by newRootCmd.
func TestRootCmdSetup(t *testing.T) {
	var _ *cobra.Command = rootCmd

	cmd := newRootCmd()
	assert.Equal(t, "fileshell", cmd.Use)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["version"], "version subcommand not found")
	assert.True(t, names["run"], "run subcommand not found")

	for _, flag := range []string{"config", "username", "start-dir", "log-level", "codec", "concurrency", "error-detail"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag --%s", flag)
	}
}

// execute runs the CLI with args and an isolated configuration directory.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "fileshell version dev (commit: none, built: unknown)\n", out)
}

func TestInteractiveSession(t *testing.T) {
	dir := tempDir(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	out, err := execute(t, "cd sub\nup\n.exit\n", "--username=Tess", "--start-dir", dir)
	require.NoError(t, err)

	want := "Welcome to the File Manager, Tess!\n" +
		"You are currently in " + dir + "\n" +
		"> You are currently in " + filepath.Join(dir, "sub") + "\n" +
		"> You are currently in " + dir + "\n" +
		"> Thank you for using File Manager, Tess, goodbye!\n"
	assert.Equal(t, want, out)
}

func TestRunScript(t *testing.T) {
	dir := tempDir(t)
	script := filepath.Join(t.TempDir(), "setup.fsh")
	require.NoError(t, os.WriteFile(script, []byte("add 'my notes.txt'\ncompress 'my notes.txt' notes.gz\nbogus\n"), 0644))

	out, err := execute(t, "", "run", script, "--start-dir", dir, "--codec", "gzip", "--error-detail")
	require.NoError(t, err)

	want := "Welcome to the File Manager, !\n" +
		"You are currently in " + dir + "\n" +
		"File my notes.txt created\n" +
		"File compressed successfully\n" +
		"Invalid input: invalid input\n" +
		"Thank you for using File Manager, , goodbye!\n"
	assert.Equal(t, want, out)

	data, err := os.ReadFile(filepath.Join(dir, "notes.gz"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f, 0x8b}, data[:2], "gzip magic expected")
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := tempDir(t)
	cfgFile := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`username = "from-file"`+"\n"+`prompt = "$ "`+"\n"), 0644))

	out, err := execute(t, "", "--config", cfgFile, "--start-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome to the File Manager, from-file!")
	assert.Contains(t, out, "$ Thank you")

	out, err = execute(t, "", "--config", cfgFile, "--start-dir", dir, "--username", "from-flag")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome to the File Manager, from-flag!")
}

func TestInvalidArguments(t *testing.T) {
	dir := tempDir(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown codec", []string{"--codec", "lz4", "--start-dir", dir}},
		{"zero concurrency", []string{"--concurrency", "0", "--start-dir", dir}},
		{"missing start dir", []string{"--start-dir", filepath.Join(dir, "nope")}},
		{"missing script", []string{"run", filepath.Join(dir, "nope.fsh")}},
		{"missing config", []string{"--config", filepath.Join(dir, "nope.toml")}},
		{"positional argument", []string{"extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}
