// Package main is leafctl, the LeafNote maintenance tool.
//
// Usage:
//
//	leafctl --data ~/.leafnote users add alice
//	leafctl --store sqlite sessions prune
//	leafctl inspect --prefix note:
package main

import (
	"fmt"
	"os"

	"github.com/NiGhtKinG17/LeafNote/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
