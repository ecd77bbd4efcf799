package main

import (
	"github.com/aicompanion/companion/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.Execute(cmd.Metadata{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
}
