package main

import (
	"os"
	"runtime"

	"github.com/ppiankov/synapsespectre/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := cli.Execute(cli.BuildInfo{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
	})
	os.Exit(cli.ExitCode(err))
}
