// Inspect a database file's B+ tree structure.
// Usage: go run ./cmd/inspect <path-to-db>
package main

import (
	"fmt"
	"os"

	bplus "myjql/bplustree"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <db-file>\n", os.Args[0])
		os.Exit(1)
	}
	if err := bplus.Dump(os.Args[1], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
