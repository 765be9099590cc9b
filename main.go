package main

import (
	"errors"
	"fmt"
	"os"

	"qlens/cmd"
	"qlens/internal/config"
	"qlens/internal/qdrant"
)

func main() {
	// Pass version info to cmd package
	cmd.Version = Version
	cmd.GitCommit = GitCommit
	cmd.BuildTime = BuildTime

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps error kinds to distinct statuses so automated callers
// can tell configuration problems from connectivity ones.
func exitCode(err error) int {
	var cfgErr *config.Error
	var connErr *qdrant.ConnectError
	switch {
	case errors.As(err, &cfgErr):
		return 2
	case errors.As(err, &connErr):
		return 3
	default:
		return 1
	}
}
