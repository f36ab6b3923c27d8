// Command trialcheck loads trial records from JSON or YAML files, reports
// their state and can complete open trials and write them back out.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "trialcheck: %v\n", err)
		os.Exit(1)
	}
}
