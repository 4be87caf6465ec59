// SivaCoR replication client entrypoint.
package main

import (
	"os"

	"github.com/sivacor/sivacor-cli/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
