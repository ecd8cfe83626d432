// Command inspectctl is the operator tool for the site inspection service:
// checklist validation, schema migrations, offline scoring and bootstrap
// accounts.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
