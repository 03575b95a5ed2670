// cmd/strata/main.go
package main

import (
	stlog "log" // Use standard log for errors before the logger is ready
	"os"
)

func main() {
	root := newRootCmd(newApp())
	if err := root.Execute(); err != nil {
		stlog.SetFlags(0)
		stlog.Printf("strata: %v", err)
		os.Exit(1)
	}
	os.Exit(0)
}
