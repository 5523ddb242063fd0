package main

import (
	"os"

	"tickethub-cli/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(cmd.Execute(cmd.Build{Version: version, Commit: commit}))
}
