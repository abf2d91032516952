// Package main provides the journal CLI: CSV checks, imports, statistics and the HTTP server.
//
// Usage:
//
//	journal check --file trades.csv --profile profile.yaml
//	journal stats --file trades.csv --profile profile.yaml --balance 10000 --format md
//	journal import --file trades.csv --account acc-1
//	journal stats --account acc-1 --snapshot
//	journal migrate
//	journal serve
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
