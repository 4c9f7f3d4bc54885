package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tudu-app/tudu/internal/cli"
)

func main() {
	// Root flags (apply to every subcommand)
	groupPending := flag.Bool("group", false, "group output by pending/done")
	flag.Parse()

	code := cli.Run(flag.Args(), cli.Options{
		Group: *groupPending,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
