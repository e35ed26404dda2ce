package main

import (
	"github.com/robotalks/minefield/pkg/cli/sh"
	"github.com/robotalks/minefield/pkg/host"

	_ "github.com/robotalks/minefield/pkg/cli/cmds/play"
)

//go-build: CGO_ENABLED=0

func init() {
	host.SetupFlags()
}

func main() {
	sh.Main()
}
