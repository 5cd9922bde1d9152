// cmd/main.go - Program entry
package main

import (
	"fmt"
	"os"
)

var (
	// set by the linker during build
	osName   string
	archName string
	version  = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
