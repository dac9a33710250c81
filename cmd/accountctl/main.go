// Command accountctl administers the account store: it applies migrations
// and creates accounts from the terminal.
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
