package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type WriteOptions struct {
	// Append adds content to an existing file instead of replacing it.
	Append bool
	// WarnOnOverwrite logs a warning when an existing regular file is replaced.
	WarnOnOverwrite bool
}

var outputLocks = struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}{locks: make(map[string]*sync.Mutex)}

func lockForPath(path string) func() {
	outputLocks.mu.Lock()
	m, ok := outputLocks.locks[path]
	if !ok {
		m = &sync.Mutex{}
		outputLocks.locks[path] = m
	}
	outputLocks.mu.Unlock()
	m.Lock()
	return func() { m.Unlock() }
}

// Write stores already-encoded content at path on fs. The path "-" writes to stdout.
func Write(fs afero.Fs, path string, content []byte, opts WriteOptions) error {
	if path == "-" {
		_, err := os.Stdout.Write(content)
		return err
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	unlock := lockForPath(path)
	defer unlock()
	log.Debug().Str("path", path).Bool("append", opts.Append).Int("size", len(content)).Msg("write start")

	if opts.Append {
		f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open output file %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		if _, err := f.Write(content); err != nil {
			return fmt.Errorf("failed to append to %s: %w", path, err)
		}
		return nil
	}

	if opts.WarnOnOverwrite {
		if fi, err := fs.Stat(path); err == nil && fi.Mode().IsRegular() {
			log.Warn().Str("path", path).Msg("overwriting existing file")
		}
	}
	if err := afero.WriteFile(fs, path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("bytes", len(content)).Msg("file written")
	return nil
}
