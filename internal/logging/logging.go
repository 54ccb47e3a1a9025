// Package logging routes diagnostics to a file so they never fight the TUI
// for the terminal.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Setup points the standard logger at path. Returns a close func; on error
// logging falls back to stderr.
func Setup(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return func() {}, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return func() {}, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	return func() { f.Close() }, nil
}

// Errorf logs an error with context if it is non-nil. Best-effort boundaries
// (store mirroring, notifications) report failures here and carry on.
func Errorf(context string, err error) {
	if err != nil {
		log.Printf("%s: %v", context, err)
	}
}
