// Package logging routes the standard logger to stderr and a log file
package logging

import (
	"io"
	"log"
	"os"
)

// Setup sends log output to stderr and appends it to path. An empty path
// logs to stderr only. The returned closer releases the log file.
func Setup(path string) (io.Closer, error) {
	log.SetFlags(log.LstdFlags)

	if path == "" {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil), err
	}

	log.SetOutput(io.MultiWriter(os.Stderr, file))
	return file, nil
}
