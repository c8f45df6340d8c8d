package main

import (
	"fmt"
	"os"

	"github.com/adminflow/adminflow-api/cmd/adminflow/commands"
)

// Build-time variables injected via ldflags
var (
	version = "dev"
	commit  = "none"
)

// @title                       AdminFlow API
// @version                     1.0
// @description                 Membership administration: registrations, directory sync, annual updates and teams.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	commands.Version = version
	commands.Commit = commit

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
