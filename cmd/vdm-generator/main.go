package main

import "vdm-generator/internal/cli"

var (
	// Set at build time via -ldflags "-X main.version=...".
	version   = ""
	commit    = ""
	treeState = ""
	date      = ""
	builtBy   = ""
)

func main() {
	cli.Execute(cli.BuildInfo(version, commit, date, builtBy, treeState))
}
