// Command wellnest inspects and maintains the local wellness data store.
package main

import (
	"log"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("error during command execution: %v", err)
	}
}
