// Command cliparse resolves options declared in a YAML or TOML schema file
// against command-line tokens and the process environment.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	root := newRootCmd(newApp(os.Stdout, os.Stderr, os.Environ))
	if err := root.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, "cliparse:", err)
		os.Exit(1)
	}
}
