package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/google/subcommands"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	t.Setenv("LEDGER_STORE_ENGINE", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "store:\n  engine: memory\n  walPath: " + filepath.Join(dir, "wal.log") + "\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, cmd subcommands.Command, cfgPath string, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	assert.NoError(t, f.Parse(args))
	return cmd.Execute(context.Background(), f, cfgPath)
}

func TestMigrateMemoryIsNoop(t *testing.T) {
	var out bytes.Buffer
	status := execute(t, &migrateCmd{out: &out}, writeConfig(t))
	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "nothing to do")
}

func TestReseedCreatesDemoAccount(t *testing.T) {
	cfgPath := writeConfig(t)

	var out bytes.Buffer
	status := execute(t, &reseedCmd{out: &out}, cfgPath, "-owner=demo", "-create", "-days=5")
	assert.Equal(t, subcommands.ExitSuccess, status)
	first := out.String()
	assert.Contains(t, first, "inserted")

	// 第二次直接使用預設帳戶
	out.Reset()
	status = execute(t, &reseedCmd{out: &out}, cfgPath, "-owner=demo", "-days=5")
	assert.Equal(t, subcommands.ExitSuccess, status)
	accountOf := func(s string) string { return strings.Fields(s)[1] }
	assert.Equal(t, accountOf(first), accountOf(out.String()))
}

func TestReseedRequiresOwner(t *testing.T) {
	var out bytes.Buffer
	status := execute(t, &reseedCmd{out: &out}, writeConfig(t))
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestReseedWithoutDefaultFails(t *testing.T) {
	var out bytes.Buffer
	status := execute(t, &reseedCmd{out: &out}, writeConfig(t), "-owner=nobody")
	assert.Equal(t, subcommands.ExitFailure, status)
}
