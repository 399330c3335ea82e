// Package main implements the entry point for the StudyForge API server,
// which turns user study requests into generated study materials through
// a durable background worker backed by Gemini.
package main

import (
	"context"
	"log"
	"os"
)

// main is the entry point for the studyforge-api server. It loads the
// configuration, sets up logging, opens and migrates the database, wires
// the application dependencies, and runs the HTTP server until shutdown.
func main() {
	if err := run(context.Background()); err != nil {
		log.Printf("server exited with error: %v", err)
		os.Exit(1)
	}
}
