// Command stories is the terminal stories client.
//
// Usage:
//
//	stories                  Open the carousel (same as "stories view")
//	stories validate [file]  Validate a raw feed and report dropped records
//	stories ledger show      List viewed and liked stories
//	stories ledger clear     Forget viewed and/or liked stories
//	stories events           JSONL event log viewer
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "stories:", err)
		}
		os.Exit(1)
	}
}
