package main

import (
	"os"

	"econdash/internal/econctl"
)

// Version is injected by build scripts via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	os.Exit(econctl.Execute(Version, os.Args[1:]))
}
