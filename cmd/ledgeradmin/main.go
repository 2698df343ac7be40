package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var configPath = flag.String("config", "config/config.yaml", "Path to config.yaml.")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range commands {
		commander.Register(c, "maintenance")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background(), *configPath)))
}
