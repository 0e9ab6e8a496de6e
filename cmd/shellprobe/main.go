// Command shellprobe checks a command-line shell implementation against a
// battery of scripted conformance scenarios.
package main

import (
	"os"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
