// Command buildcheck runs build commands, sorts their output by severity
// and prints a pass/fail table.
package main

import "os"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
