// Command exodash is the command-line interface of the radial-velocity
// dashboard.
package main

import (
	"os"

	"exodash/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
