// Command divvi builds, decodes and reports Divvi referral attribution tags.
package main

import (
	"fmt"
	"os"

	"github.com/divvi-xyz/divvi-sdk/go/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
