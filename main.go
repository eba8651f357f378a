// Package main is the entry point for relay.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/relaydeploy/relay/cmd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\nPANIC: %v\n", r)
			fmt.Fprintf(os.Stderr, "\nStack trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
