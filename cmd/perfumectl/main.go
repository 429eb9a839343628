// Command perfumectl administers a perfumery database: schema migration,
// account provisioning and stock sheet imports.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
